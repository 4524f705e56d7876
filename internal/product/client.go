package product

import (
	"context"
	"fmt"

	"warimas-pos/internal/api"
)

const basePath = "/api/products"

// Client talks to the product endpoints through the shared pipeline.
type Client struct {
	api *api.Client
}

func NewClient(a *api.Client) *Client {
	return &Client{api: a}
}

func (c *Client) List(ctx context.Context, q api.ListQuery) ([]Product, api.Paging, error) {
	var items []Product
	paging, err := c.api.List(ctx, basePath, q, &items)
	if err != nil {
		return nil, api.Paging{}, err
	}
	return items, paging, nil
}

// ListAll pages through the catalog until the backend reports no more rows,
// for callers that need the full picture, like the cart reconciler.
func (c *Client) ListAll(ctx context.Context) ([]Product, error) {
	var all []Product
	q := api.ListQuery{Size: 100}

	for {
		items, paging, err := c.List(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if !paging.HasMore {
			return all, nil
		}
		q.Cursor = paging.Cursor
	}
}

func (c *Client) Get(ctx context.Context, id int64) (*Product, error) {
	var p Product
	if err := c.api.Get(ctx, fmt.Sprintf("%s/%d", basePath, id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Create(ctx context.Context, in CreateInput) (*Product, error) {
	var p Product
	if err := c.api.Post(ctx, basePath, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Update(ctx context.Context, id int64, in CreateInput) (*Product, error) {
	var p Product
	if err := c.api.Put(ctx, fmt.Sprintf("%s/%d", basePath, id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.api.Delete(ctx, fmt.Sprintf("%s/%d", basePath, id), nil)
}
