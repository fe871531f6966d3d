package easyship

import (
	"context"

	"github.com/goliatone/go-easyship/core"
)

// AddressesService manages saved addresses. Update sends PATCH and Delete
// sends DELETE, matching the REST verbs of the 2023-01 API.
type AddressesService struct {
	resource
}

func (s *AddressesService) List(ctx context.Context, query Params) (core.TransportResponse, error) {
	return s.get(ctx, versioned("addresses"), query)
}

func (s *AddressesService) Create(ctx context.Context, payload Params) (core.TransportResponse, error) {
	return s.post(ctx, versioned("addresses"), payload)
}

func (s *AddressesService) Update(ctx context.Context, addressID string, payload Params) (core.TransportResponse, error) {
	id, err := pathID("address", addressID)
	if err != nil {
		return core.TransportResponse{}, err
	}
	return s.patch(ctx, versioned("addresses", id), payload)
}

func (s *AddressesService) Delete(ctx context.Context, addressID string) (core.TransportResponse, error) {
	id, err := pathID("address", addressID)
	if err != nil {
		return core.TransportResponse{}, err
	}
	return s.delete(ctx, versioned("addresses", id))
}
