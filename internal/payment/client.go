package payment

import (
	"context"
	"fmt"

	"warimas-pos/internal/api"
)

const basePath = "/api/payment-methods"

// Client manages payment methods through the shared pipeline.
type Client struct {
	api *api.Client
}

func NewClient(a *api.Client) *Client {
	return &Client{api: a}
}

func (c *Client) List(ctx context.Context, q api.ListQuery) ([]Method, api.Paging, error) {
	var items []Method
	paging, err := c.api.List(ctx, basePath, q, &items)
	if err != nil {
		return nil, api.Paging{}, err
	}
	return items, paging, nil
}

// ListActive filters the full method list down to what a cashier may
// actually offer at checkout.
func (c *Client) ListActive(ctx context.Context) ([]Method, error) {
	items, _, err := c.List(ctx, api.ListQuery{Size: 100})
	if err != nil {
		return nil, err
	}

	active := items[:0]
	for _, m := range items {
		if m.Active {
			active = append(active, m)
		}
	}
	return active, nil
}

func (c *Client) Create(ctx context.Context, in CreateInput) (*Method, error) {
	var m Method
	if err := c.api.Post(ctx, basePath, in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Update(ctx context.Context, id int64, in CreateInput) (*Method, error) {
	var m Method
	if err := c.api.Put(ctx, fmt.Sprintf("%s/%d", basePath, id), in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.api.Delete(ctx, fmt.Sprintf("%s/%d", basePath, id), nil)
}
