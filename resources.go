package easyship

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-easyship/core"
	goerrors "github.com/goliatone/go-errors"
)

type resource struct {
	client *Client
}

func versioned(segments ...string) string {
	return APIVersion + "/" + strings.Join(segments, "/")
}

func (r resource) send(ctx context.Context, method string, endpoint string, payload Params) (core.TransportResponse, error) {
	return r.client.Request(ctx, method, endpoint, payload)
}

func (r resource) get(ctx context.Context, endpoint string, query Params) (core.TransportResponse, error) {
	return r.send(ctx, http.MethodGet, endpoint, query)
}

func (r resource) post(ctx context.Context, endpoint string, payload Params) (core.TransportResponse, error) {
	return r.send(ctx, http.MethodPost, endpoint, payload)
}

func (r resource) patch(ctx context.Context, endpoint string, payload Params) (core.TransportResponse, error) {
	return r.send(ctx, http.MethodPatch, endpoint, payload)
}

func (r resource) delete(ctx context.Context, endpoint string) (core.TransportResponse, error) {
	return r.send(ctx, http.MethodDelete, endpoint, nil)
}

// pathID escapes an identifier for use as a single path segment.
func pathID(kind string, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", clientError("easyship: "+kind+" id is required",
			goerrors.CategoryBadInput, http.StatusBadRequest, map[string]any{"resource": kind})
	}
	return url.PathEscape(id), nil
}

func (c *Client) Addresses() *AddressesService { return &AddressesService{resource{c}} }

func (c *Client) Boxes() *BoxesService { return &BoxesService{resource{c}} }

func (c *Client) Categories() *CategoriesService { return &CategoriesService{resource{c}} }

func (c *Client) Couriers() *CouriersService { return &CouriersService{resource{c}} }

func (c *Client) ItemCategories() *ItemCategoriesService { return &ItemCategoriesService{resource{c}} }

func (c *Client) Labels() *LabelsService { return &LabelsService{resource{c}} }

func (c *Client) Pickups() *PickupsService { return &PickupsService{resource{c}} }

func (c *Client) Products() *ProductsService { return &ProductsService{resource{c}} }

func (c *Client) Rates() *RatesService { return &RatesService{resource{c}} }

func (c *Client) Shipments() *ShipmentsService { return &ShipmentsService{resource{c}} }

func (c *Client) Stores() *StoresService { return &StoresService{resource{c}} }

func (c *Client) Tracking() *TrackingService { return &TrackingService{resource{c}} }

// Track is an alias of Tracking; both expose the same tracking endpoints.
func (c *Client) Track() *TrackingService { return c.Tracking() }
