package flags

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// Environment is the deployment stage a flag belongs to
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Environments lists every valid environment in display order
var Environments = []Environment{Development, Staging, Production}

// Valid reports whether the environment is one of the known values
func (e Environment) Valid() bool {
	return slices.Contains(Environments, e)
}

var kebabCase = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// IsKebabCase reports whether s is lowercase alphanumeric words joined by
// single hyphens
func IsKebabCase(s string) bool {
	return kebabCase.MatchString(s)
}

const (
	DefaultOwner = "unassigned" // Owner assigned when a create request omits one
	SeedOwner    = "system"     // Owner of every seeded flag
)

// Metadata holds the ownership and lifecycle information of a flag
type Metadata struct {
	Owner     string     `json:"owner" yaml:"owner"`
	Tags      []string   `json:"tags" yaml:"tags"`
	ExpiresAt *time.Time `json:"expiresAt" yaml:"expiresAt"`
}

// Flag is a named boolean toggle scoped to one environment
type Flag struct {
	ID          string      `json:"id"`
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Enabled     bool        `json:"enabled"`
	Environment Environment `json:"environment"`
	Metadata    Metadata    `json:"metadata"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Clone returns a deep copy of the flag
func (f *Flag) Clone() *Flag {
	if f == nil {
		return nil
	}

	c := *f
	if f.Description != nil {
		d := *f.Description
		c.Description = &d
	}
	if f.Metadata.ExpiresAt != nil {
		e := *f.Metadata.ExpiresAt
		c.Metadata.ExpiresAt = &e
	}

	c.Metadata.Tags = make([]string, len(f.Metadata.Tags))
	copy(c.Metadata.Tags, f.Metadata.Tags)

	return &c
}

// HasAnyTag reports whether the flag carries at least one of the given tags
func (f *Flag) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if slices.Contains(f.Metadata.Tags, t) {
			return true
		}
	}
	return false
}

// Expired reports whether the flag has an expiry at or before now
func (f *Flag) Expired(now time.Time) bool {
	return f.Metadata.ExpiresAt != nil && !f.Metadata.ExpiresAt.After(now)
}

// Filter narrows a list of flags. Unset fields do not filter and all set
// fields must match.
type Filter struct {
	Environment *Environment
	Enabled     *bool
	Tags        []string // Matches when the flag has any of these tags
	Search      string   // Case-insensitive match on key, name or description
}

// Matches reports whether the flag satisfies every set field of the filter
func (q *Filter) Matches(f *Flag) bool {
	if q == nil {
		return true
	}

	if q.Environment != nil && f.Environment != *q.Environment {
		return false
	}
	if q.Enabled != nil && f.Enabled != *q.Enabled {
		return false
	}
	if len(q.Tags) > 0 && !f.HasAnyTag(q.Tags) {
		return false
	}

	if q.Search != "" {
		search := strings.ToLower(q.Search)
		if strings.Contains(strings.ToLower(f.Key), search) || strings.Contains(strings.ToLower(f.Name), search) {
			return true
		}
		return f.Description != nil && strings.Contains(strings.ToLower(*f.Description), search)
	}

	return true
}

// MetadataPatch carries metadata sub-fields to merge over an existing value.
// A nil Owner or Tags and an unset ExpiresAt keep the previous value.
type MetadataPatch struct {
	Owner     *string
	Tags      []string
	ExpiresAt Nullable[time.Time]
}

// apply merges the patch over the given metadata
func (p *MetadataPatch) apply(m Metadata) Metadata {
	if p == nil {
		return m
	}

	if p.Owner != nil {
		m.Owner = *p.Owner
	}
	if p.Tags != nil {
		m.Tags = slices.Clone(p.Tags)
	}
	if p.ExpiresAt.Set {
		m.ExpiresAt = p.ExpiresAt.Ptr()
	}

	return m
}

// CreateParams holds the fields of a new flag. Shape validation happens
// before the params reach a store.
type CreateParams struct {
	Key         string
	Name        string
	Description *string
	Enabled     bool
	Environment Environment
	Metadata    *MetadataPatch
}

// BuildMetadata returns the params' metadata merged over the defaults
func (p *CreateParams) BuildMetadata() Metadata {
	return p.Metadata.apply(Metadata{
		Owner: DefaultOwner,
		Tags:  []string{},
	})
}

// UpdateParams holds a partial update. The key of a flag is immutable and
// has no field here.
type UpdateParams struct {
	Name        *string
	Description Nullable[string]
	Enabled     *bool
	Environment *Environment
	Metadata    *MetadataPatch
}

// Apply returns a copy of the flag with the update merged in. Timestamps
// are left to the caller.
func (p *UpdateParams) Apply(f *Flag) *Flag {
	out := f.Clone()
	if p == nil {
		return out
	}

	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description.Set {
		out.Description = p.Description.Ptr()
	}
	if p.Enabled != nil {
		out.Enabled = *p.Enabled
	}
	if p.Environment != nil {
		out.Environment = *p.Environment
	}
	out.Metadata = p.Metadata.apply(out.Metadata)

	return out
}
