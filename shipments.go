package easyship

import (
	"context"

	"github.com/goliatone/go-easyship/core"
)

type ShipmentsService struct {
	resource
}

func (s *ShipmentsService) List(ctx context.Context, query Params) (core.TransportResponse, error) {
	return s.get(ctx, versioned("shipments"), query)
}

func (s *ShipmentsService) Create(ctx context.Context, payload Params) (core.TransportResponse, error) {
	return s.post(ctx, versioned("shipments"), payload)
}

func (s *ShipmentsService) Get(ctx context.Context, shipmentID string, query Params) (core.TransportResponse, error) {
	id, err := pathID("shipment", shipmentID)
	if err != nil {
		return core.TransportResponse{}, err
	}
	return s.get(ctx, versioned("shipments", id), query)
}

func (s *ShipmentsService) Update(ctx context.Context, shipmentID string, payload Params) (core.TransportResponse, error) {
	id, err := pathID("shipment", shipmentID)
	if err != nil {
		return core.TransportResponse{}, err
	}
	return s.patch(ctx, versioned("shipments", id), payload)
}

func (s *ShipmentsService) Delete(ctx context.Context, shipmentID string) (core.TransportResponse, error) {
	id, err := pathID("shipment", shipmentID)
	if err != nil {
		return core.TransportResponse{}, err
	}
	return s.delete(ctx, versioned("shipments", id))
}

func (s *ShipmentsService) Cancel(ctx context.Context, shipmentID string) (core.TransportResponse, error) {
	id, err := pathID("shipment", shipmentID)
	if err != nil {
		return core.TransportResponse{}, err
	}
	return s.post(ctx, versioned("shipments", id, "cancel"), nil)
}

// Trackings lists tracking details across shipments.
func (s *ShipmentsService) Trackings(ctx context.Context, query Params) (core.TransportResponse, error) {
	return s.get(ctx, versioned("shipments", "trackings"), query)
}

func (s *ShipmentsService) WarehouseStateUpdate(ctx context.Context, payload Params) (core.TransportResponse, error) {
	return s.post(ctx, versioned("shipments", "warehouse_state_updates"), payload)
}

func (s *ShipmentsService) TrackingUpdates(ctx context.Context, payload Params) (core.TransportResponse, error) {
	return s.post(ctx, versioned("shipments", "tracking_updates"), payload)
}
