package flags

// StoreInterface defines the operations every flag store provides. Stores
// own the invariants of the model: ids are never reused, the
// (key, environment) pair is unique and keys never change.
type StoreInterface interface {
	// List returns the flags matching the filter in insertion order
	List(filter *Filter) []*Flag

	// Get returns the flag with the given id or ErrNotFound
	Get(id string) (*Flag, error)

	// Create adds a new flag or fails with ErrDuplicateKey
	Create(params *CreateParams) (*Flag, error)

	// Update merges a partial update into a flag. It fails with ErrNotFound
	// or, when the environment changes onto a taken pair, ErrDuplicateKey.
	Update(id string, params *UpdateParams) (*Flag, error)

	// Toggle flips the enabled state and returns the updated flag together
	// with the previous state
	Toggle(id string) (*Flag, bool, error)

	// Delete removes a flag and reports whether anything was removed
	Delete(id string) bool
}
