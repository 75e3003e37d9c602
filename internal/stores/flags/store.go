package flags

import (
	"os"
	"slices"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/ethanbaker/flagdash/pkg/flags"
	"github.com/google/uuid"
)

// Options configures a FileStore
type Options struct {
	Path  string           // Snapshot location, empty keeps the store in memory only
	Seeds []flags.Seed     // Initial flags used when no snapshot is found, defaults to flags.DefaultSeeds
	Now   func() time.Time // Clock, defaults to time.Now
	NewID func() string    // Id generator for created flags, defaults to random UUIDs
	Log   log.Interface    // Logger, defaults to the global apex logger
}

// FileStore keeps flags in memory and rewrites a JSON snapshot after every
// mutation. The in-memory state is authoritative, snapshot failures are
// logged and ignored.
type FileStore struct {
	flags map[string]*flags.Flag
	order []string
	mutex sync.RWMutex

	path  string
	now   func() time.Time
	newID func() string
	log   log.Interface
}

var _ flags.StoreInterface = (*FileStore)(nil)

// NewFileStore creates a store from the snapshot at opts.Path, seeding and
// persisting a fresh set of flags when the snapshot is missing, unreadable
// or empty
func NewFileStore(opts Options) *FileStore {
	s := &FileStore{
		flags: make(map[string]*flags.Flag),
		path:  opts.Path,
		now:   opts.Now,
		newID: opts.NewID,
		log:   opts.Log,
	}

	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.NewString() }
	}
	if s.log == nil {
		s.log = log.Log
	}
	s.log = s.log.WithField("store", "flags")

	if s.load() {
		return s
	}

	seeds := opts.Seeds
	if len(seeds) == 0 {
		seeds = flags.DefaultSeeds
	}
	s.seed(seeds)
	s.persist()

	return s
}

// NewInMemoryStore creates a seeded store that never touches disk
func NewInMemoryStore() *FileStore {
	return NewFileStore(Options{})
}

/** ---- PERSISTENCE ---- */

// load replaces the state with the snapshot contents and reports a hit
func (s *FileStore) load() bool {
	if s.path == "" {
		return false
	}

	records, err := readSnapshot(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.WithField("path", s.path).Info("no snapshot found, seeding flags")
		} else {
			s.log.WithError(err).WithField("path", s.path).Warn("failed to load snapshot, seeding flags")
		}
		return false
	}

	for _, f := range records {
		if f == nil || f.ID == "" {
			continue
		}
		if f.Metadata.Tags == nil {
			f.Metadata.Tags = []string{}
		}
		if _, exists := s.flags[f.ID]; !exists {
			s.order = append(s.order, f.ID)
		}
		s.flags[f.ID] = f
	}

	if len(s.flags) == 0 {
		s.log.WithField("path", s.path).Info("snapshot is empty, seeding flags")
		return false
	}

	s.log.WithField("path", s.path).WithField("count", len(s.flags)).Info("loaded flags from snapshot")
	return true
}

// seed fills the store with the given seeds
func (s *FileStore) seed(seeds []flags.Seed) {
	now := s.timestamp()
	for _, seed := range seeds {
		s.insert(seed.Flag(now))
	}
	s.log.WithField("count", len(s.flags)).Info("seeded flags")
}

// persist rewrites the snapshot. Callers hold the write lock.
func (s *FileStore) persist() {
	if s.path == "" {
		return
	}

	if err := writeSnapshot(s.path, s.values()); err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("failed to write snapshot")
	}
}

/** ---- STORE METHODS ---- */

// List returns copies of the flags matching the filter in insertion order
func (s *FileStore) List(filter *flags.Filter) []*flags.Flag {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]*flags.Flag, 0, len(s.order))
	for _, id := range s.order {
		if f := s.flags[id]; filter.Matches(f) {
			result = append(result, f.Clone())
		}
	}

	return result
}

// Get returns a copy of the flag with the given id
func (s *FileStore) Get(id string) (*flags.Flag, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	f, exists := s.flags[id]
	if !exists {
		return nil, flags.NotFoundError(id)
	}

	return f.Clone(), nil
}

// Create adds a new flag with a fresh id and timestamps
func (s *FileStore) Create(params *flags.CreateParams) (*flags.Flag, error) {
	if params == nil {
		return nil, errors.New("create params cannot be nil")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.findPair(params.Key, params.Environment, "") != nil {
		return nil, &flags.DuplicateKeyError{Key: params.Key, Environment: params.Environment}
	}

	now := s.timestamp()
	var description *string
	if params.Description != nil {
		d := *params.Description
		description = &d
	}

	f := &flags.Flag{
		ID:          s.newID(),
		Key:         params.Key,
		Name:        params.Name,
		Description: description,
		Enabled:     params.Enabled,
		Environment: params.Environment,
		Metadata:    params.BuildMetadata(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.insert(f)
	s.persist()

	s.log.WithField("id", f.ID).WithField("key", f.Key).WithField("environment", f.Environment).Debug("flag created")
	return f.Clone(), nil
}

// Update merges a partial update into the flag with the given id
func (s *FileStore) Update(id string, params *flags.UpdateParams) (*flags.Flag, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	f, err := s.update(id, params)
	if err != nil {
		return nil, err
	}

	return f.Clone(), nil
}

// Toggle flips the enabled state of a flag under a single lock hold
func (s *FileStore) Toggle(id string) (*flags.Flag, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	current, exists := s.flags[id]
	if !exists {
		return nil, false, flags.NotFoundError(id)
	}

	previous := current.Enabled
	enabled := !previous

	f, err := s.update(id, &flags.UpdateParams{Enabled: &enabled})
	if err != nil {
		return nil, false, err
	}

	return f.Clone(), previous, nil
}

// Delete removes the flag with the given id and reports whether it existed
func (s *FileStore) Delete(id string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.flags[id]; !exists {
		return false
	}

	delete(s.flags, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	s.persist()

	s.log.WithField("id", id).Debug("flag deleted")
	return true
}

/** ---- HELPERS ---- */

// update applies params to a flag. Callers hold the write lock.
func (s *FileStore) update(id string, params *flags.UpdateParams) (*flags.Flag, error) {
	current, exists := s.flags[id]
	if !exists {
		return nil, flags.NotFoundError(id)
	}

	if params != nil && params.Environment != nil && *params.Environment != current.Environment {
		if s.findPair(current.Key, *params.Environment, id) != nil {
			return nil, &flags.DuplicateKeyError{Key: current.Key, Environment: *params.Environment}
		}
	}

	updated := params.Apply(current)
	updated.ID = current.ID
	updated.Key = current.Key
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.timestamp()
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		updated.UpdatedAt = updated.CreatedAt
	}

	s.flags[id] = updated
	s.persist()

	s.log.WithField("id", id).Debug("flag updated")
	return updated, nil
}

// findPair returns the flag holding the (key, environment) pair, skipping
// the flag with id exclude
func (s *FileStore) findPair(key string, env flags.Environment, exclude string) *flags.Flag {
	for _, f := range s.flags {
		if f.ID != exclude && f.Key == key && f.Environment == env {
			return f
		}
	}
	return nil
}

// insert adds a flag to the index, keeping insertion order
func (s *FileStore) insert(f *flags.Flag) {
	if _, exists := s.flags[f.ID]; !exists {
		s.order = append(s.order, f.ID)
	}
	s.flags[f.ID] = f
}

// values returns the stored flags in insertion order
func (s *FileStore) values() []*flags.Flag {
	out := make([]*flags.Flag, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.flags[id])
	}
	return out
}

// timestamp returns the current time in UTC at millisecond precision
func (s *FileStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
