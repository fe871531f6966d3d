package easyship

import (
	"context"

	"github.com/goliatone/go-easyship/core"
)

type BoxesService struct {
	resource
}

func (s *BoxesService) List(ctx context.Context) (core.TransportResponse, error) {
	return s.get(ctx, versioned("boxes"), nil)
}

// CategoriesService reads the unversioned reference categories.
type CategoriesService struct {
	resource
}

func (s *CategoriesService) List(ctx context.Context) (core.TransportResponse, error) {
	return s.get(ctx, "/reference/v1/categories", nil)
}

type ItemCategoriesService struct {
	resource
}

func (s *ItemCategoriesService) List(ctx context.Context) (core.TransportResponse, error) {
	return s.get(ctx, versioned("item_categories"), nil)
}

type StoresService struct {
	resource
}

func (s *StoresService) List(ctx context.Context, query Params) (core.TransportResponse, error) {
	return s.get(ctx, versioned("stores"), query)
}
