package easyship

import (
	"context"

	"github.com/goliatone/go-easyship/core"
)

type CouriersService struct {
	resource
}

func (s *CouriersService) List(ctx context.Context, query Params) (core.TransportResponse, error) {
	return s.get(ctx, versioned("couriers"), query)
}

// ListSlots lists the pickup slots a courier offers.
func (s *CouriersService) ListSlots(ctx context.Context, courierID string, query Params) (core.TransportResponse, error) {
	id, err := pathID("courier", courierID)
	if err != nil {
		return core.TransportResponse{}, err
	}
	return s.get(ctx, versioned("couriers", id, "pickup_slots"), query)
}

type PickupsService struct {
	resource
}

func (s *PickupsService) Create(ctx context.Context, payload Params) (core.TransportResponse, error) {
	return s.post(ctx, versioned("pickups"), payload)
}

func (s *PickupsService) Cancel(ctx context.Context, pickupID string) (core.TransportResponse, error) {
	id, err := pathID("pickup", pickupID)
	if err != nil {
		return core.TransportResponse{}, err
	}
	return s.post(ctx, versioned("pickups", id, "cancel"), nil)
}
