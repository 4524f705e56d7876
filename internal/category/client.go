package category

import (
	"context"
	"fmt"

	"warimas-pos/internal/api"
)

const basePath = "/api/categories"

// Client talks to the category endpoints through the shared pipeline.
type Client struct {
	api *api.Client
}

func NewClient(a *api.Client) *Client {
	return &Client{api: a}
}

func (c *Client) List(ctx context.Context, q api.ListQuery) ([]Category, api.Paging, error) {
	var items []Category
	paging, err := c.api.List(ctx, basePath, q, &items)
	if err != nil {
		return nil, api.Paging{}, err
	}
	return items, paging, nil
}

func (c *Client) Create(ctx context.Context, in CreateInput) (*Category, error) {
	var cat Category
	if err := c.api.Post(ctx, basePath, in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) Update(ctx context.Context, id int64, in CreateInput) (*Category, error) {
	var cat Category
	if err := c.api.Put(ctx, fmt.Sprintf("%s/%d", basePath, id), in, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.api.Delete(ctx, fmt.Sprintf("%s/%d", basePath, id), nil)
}
