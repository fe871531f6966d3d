package easyship

import (
	"context"

	"github.com/goliatone/go-easyship/core"
)

// LabelsService buys labels through the unversioned label API.
type LabelsService struct {
	resource
}

func (s *LabelsService) Buy(ctx context.Context, payload Params) (core.TransportResponse, error) {
	return s.post(ctx, "/label/v1/labels", payload)
}

type RatesService struct {
	resource
}

func (s *RatesService) Request(ctx context.Context, payload Params) (core.TransportResponse, error) {
	return s.post(ctx, versioned("rates"), payload)
}

type TrackingService struct {
	resource
}

func (s *TrackingService) Status(ctx context.Context, query Params) (core.TransportResponse, error) {
	return s.get(ctx, "/track/v1/status", query)
}

func (s *TrackingService) Checkpoints(ctx context.Context, query Params) (core.TransportResponse, error) {
	return s.get(ctx, "/track/v1/checkpoints", query)
}
