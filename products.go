package easyship

import (
	"context"

	"github.com/goliatone/go-easyship/core"
)

type ProductsService struct {
	resource
}

func (s *ProductsService) List(ctx context.Context, query Params) (core.TransportResponse, error) {
	return s.get(ctx, versioned("products"), query)
}

func (s *ProductsService) Create(ctx context.Context, payload Params) (core.TransportResponse, error) {
	return s.post(ctx, versioned("products"), payload)
}

func (s *ProductsService) Update(ctx context.Context, productID string, payload Params) (core.TransportResponse, error) {
	id, err := pathID("product", productID)
	if err != nil {
		return core.TransportResponse{}, err
	}
	return s.patch(ctx, versioned("products", id), payload)
}

func (s *ProductsService) Delete(ctx context.Context, productID string) (core.TransportResponse, error) {
	id, err := pathID("product", productID)
	if err != nil {
		return core.TransportResponse{}, err
	}
	return s.delete(ctx, versioned("products", id))
}
