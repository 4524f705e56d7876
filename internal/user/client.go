package user

import (
	"context"
	"fmt"

	"warimas-pos/internal/api"
)

const basePath = "/api/users"

// Client manages operator accounts through the shared pipeline. The
// authentication endpoints under the same prefix belong to the session
// manager, not to this client.
type Client struct {
	api *api.Client
}

func NewClient(a *api.Client) *Client {
	return &Client{api: a}
}

func (c *Client) List(ctx context.Context, q api.ListQuery) ([]User, api.Paging, error) {
	var items []User
	paging, err := c.api.List(ctx, basePath, q, &items)
	if err != nil {
		return nil, api.Paging{}, err
	}
	return items, paging, nil
}

func (c *Client) Create(ctx context.Context, in CreateInput) (*User, error) {
	var u User
	if err := c.api.Post(ctx, basePath, in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Update(ctx context.Context, id int64, in UpdateInput) (*User, error) {
	var u User
	if err := c.api.Put(ctx, fmt.Sprintf("%s/%d", basePath, id), in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.api.Delete(ctx, fmt.Sprintf("%s/%d", basePath, id), nil)
}
