package sdk

import (
	"net/url"
	"strconv"
	"time"

	"github.com/ethanbaker/flagdash/pkg/flags"
)

// ErrorCode identifies the kind of failure in an error envelope
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeDuplicateKey ErrorCode = "DUPLICATE_KEY"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

/** Responses */

// DataResponse is the success envelope wrapping a single payload
type DataResponse[T any] struct {
	Data T `json:"data"`

	code int
}

// NewDataResponse creates a success envelope sent with the given status code
func NewDataResponse[T any](code int, data T) DataResponse[T] {
	return DataResponse[T]{Data: data, code: code}
}

// AsGinResponse converts the response to a format suitable for gin
func (r DataResponse[T]) AsGinResponse() (int, any) {
	return r.code, r
}

// ListFlagsMeta summarises a list result
type ListFlagsMeta struct {
	Total        int                       `json:"total"`        // Number of flags returned
	Environments map[flags.Environment]int `json:"environments"` // Returned flags per environment
}

// ListFlagsResponse is returned by GET /flags
type ListFlagsResponse struct {
	Data []*flags.Flag `json:"data"`
	Meta ListFlagsMeta `json:"meta"`
}

// NewListFlagsResponse builds the list envelope, counting every environment
// even when it has no flags
func NewListFlagsResponse(data []*flags.Flag) ListFlagsResponse {
	if data == nil {
		data = []*flags.Flag{}
	}

	envs := make(map[flags.Environment]int, len(flags.Environments))
	for _, env := range flags.Environments {
		envs[env] = 0
	}
	for _, f := range data {
		if _, known := envs[f.Environment]; known {
			envs[f.Environment]++
		}
	}

	return ListFlagsResponse{
		Data: data,
		Meta: ListFlagsMeta{Total: len(data), Environments: envs},
	}
}

// ToggleFlagResponse is returned by POST /flags/:id/toggle
type ToggleFlagResponse struct {
	Data          *flags.Flag `json:"data"`
	PreviousState bool        `json:"previousState"`
}

// ErrorDetail points at a single invalid field
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorBody is the content of an error envelope
type ErrorBody struct {
	Code    ErrorCode     `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorResponse is the envelope of every failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`

	code int
}

// NewErrorResponse creates an error envelope sent with the given status code
func NewErrorResponse(code int, errCode ErrorCode, message string, details ...ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:    errCode,
			Message: message,
			Details: details,
		},
		code: code,
	}
}

// AsGinResponse converts the response to a format suitable for gin
func (r ErrorResponse) AsGinResponse() (int, any) {
	return r.code, r
}

/** Requests */

// CreateFlagMetadata is the optional metadata of a create request
type CreateFlagMetadata struct {
	Owner     *string    `json:"owner,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" binding:"omitempty,future"` // Must be in the future when set
}

// CreateFlagRequest is the body of POST /flags
type CreateFlagRequest struct {
	Key         string              `json:"key" binding:"required,min=3,max=50,kebabcase"`
	Name        string              `json:"name" binding:"required,min=1,max=100"`
	Description *string             `json:"description,omitempty" binding:"omitempty,max=500"`
	Enabled     bool                `json:"enabled"`
	Environment flags.Environment   `json:"environment" binding:"required,environment"`
	Metadata    *CreateFlagMetadata `json:"metadata,omitempty"`
}

// Params converts the request into store params
func (r *CreateFlagRequest) Params() *flags.CreateParams {
	params := &flags.CreateParams{
		Key:         r.Key,
		Name:        r.Name,
		Description: r.Description,
		Enabled:     r.Enabled,
		Environment: r.Environment,
	}

	if r.Metadata != nil {
		params.Metadata = &flags.MetadataPatch{
			Owner: r.Metadata.Owner,
			Tags:  r.Metadata.Tags,
		}
		if r.Metadata.ExpiresAt != nil {
			params.Metadata.ExpiresAt = flags.Some(*r.Metadata.ExpiresAt)
		}
	}

	return params
}

// UpdateFlagMetadata is the partial metadata of an update request. Absent
// fields keep their stored value.
type UpdateFlagMetadata struct {
	Owner     *string                   `json:"owner,omitempty"`
	Tags      []string                  `json:"tags,omitzero"`
	ExpiresAt flags.Nullable[time.Time] `json:"expiresAt,omitzero"`
}

// UpdateFlagRequest is the body of PATCH /flags/:id. A flag's key cannot be
// changed, so the request has no key field and a key in the payload is
// ignored.
type UpdateFlagRequest struct {
	Name        *string                `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Description flags.Nullable[string] `json:"description,omitzero" binding:"omitempty,max=500"`
	Enabled     *bool                  `json:"enabled,omitempty"`
	Environment *flags.Environment     `json:"environment,omitempty" binding:"omitempty,environment"`
	Metadata    *UpdateFlagMetadata    `json:"metadata,omitempty"`
}

// Params converts the request into store params
func (r *UpdateFlagRequest) Params() *flags.UpdateParams {
	params := &flags.UpdateParams{
		Name:        r.Name,
		Description: r.Description,
		Enabled:     r.Enabled,
		Environment: r.Environment,
	}

	if r.Metadata != nil {
		params.Metadata = &flags.MetadataPatch{
			Owner:     r.Metadata.Owner,
			Tags:      r.Metadata.Tags,
			ExpiresAt: r.Metadata.ExpiresAt,
		}
	}

	return params
}

// ListFlagsQuery holds the optional filters of GET /flags
type ListFlagsQuery struct {
	Environment flags.Environment
	Enabled     *bool
	Search      string
	Tags        []string
}

// Values encodes the query as URL parameters
func (q *ListFlagsQuery) Values() url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	if q.Environment != "" {
		values.Set("environment", string(q.Environment))
	}
	if q.Enabled != nil {
		values.Set("enabled", strconv.FormatBool(*q.Enabled))
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	for _, tag := range q.Tags {
		values.Add("tag", tag)
	}

	return values
}
