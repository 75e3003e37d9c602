package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"emperror.dev/errors"
	"github.com/ethanbaker/flagdash/pkg/flags"
)

// List returns the flags matching the query
func (c *Client) List(ctx context.Context, query *ListFlagsQuery) (*ListFlagsResponse, error) {
	path := "/flags"
	if values := query.Values(); len(values) > 0 {
		path += "?" + values.Encode()
	}

	var out ListFlagsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// Get returns a flag by id
func (c *Client) Get(ctx context.Context, id string) (*flags.Flag, error) {
	path := fmt.Sprintf("/flags/%s", url.PathEscape(id))

	var out DataResponse[*flags.Flag]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// Create creates a new flag
func (c *Client) Create(ctx context.Context, req *CreateFlagRequest) (*flags.Flag, error) {
	var out DataResponse[*flags.Flag]
	if err := c.doJSON(ctx, http.MethodPost, "/flags", req, &out); err != nil {
		return nil, err
	}

	if out.Data == nil || out.Data.ID == "" {
		return nil, errors.New("no id returned from create")
	}

	return out.Data, nil
}

// Update applies a partial update to a flag
func (c *Client) Update(ctx context.Context, id string, req *UpdateFlagRequest) (*flags.Flag, error) {
	path := fmt.Sprintf("/flags/%s", url.PathEscape(id))

	var out DataResponse[*flags.Flag]
	if err := c.doJSON(ctx, http.MethodPatch, path, req, &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// Delete removes a flag
func (c *Client) Delete(ctx context.Context, id string) error {
	path := fmt.Sprintf("/flags/%s", url.PathEscape(id))

	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

// Toggle flips a flag's enabled state
func (c *Client) Toggle(ctx context.Context, id string) (*ToggleFlagResponse, error) {
	path := fmt.Sprintf("/flags/%s/toggle", url.PathEscape(id))

	var out ToggleFlagResponse
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
