package flags_module

import (
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	flag_store "github.com/ethanbaker/flagdash/internal/stores/flags"
	"github.com/ethanbaker/flagdash/pkg/flags"
	"github.com/ethanbaker/flagdash/pkg/sdk"
	"github.com/ethanbaker/flagdash/pkg/utils"
	"github.com/robfig/cron/v3"
)

const (
	DefaultDataFile       = ".data/flags.json"
	DefaultExpirySchedule = "@every 1h"
)

// FlagService owns the flag store for the lifetime of the API and runs the
// expiry watcher
type FlagService struct {
	store flags.StoreInterface
	cron  *cron.Cron
	now   func() time.Time
	log   log.Interface
}

/** ---- INIT ---- */

// NewFlagService creates a service over an existing store
func NewFlagService(store flags.StoreInterface) *FlagService {
	return &FlagService{
		store: store,
		now:   time.Now,
		log:   log.WithField("module", "flags"),
	}
}

// Init builds the store described by the configuration and starts the
// expiry watcher
func Init(cfg *utils.Config) (*FlagService, error) {
	logger := log.WithField("module", "flags")

	opts := flag_store.Options{Log: logger}
	if cfg.GetBoolWithDefault("FLAGS_PERSIST", true) {
		opts.Path = cfg.GetWithDefault("FLAGS_DATA_FILE", DefaultDataFile)
	} else {
		logger.Warn("FLAGS_PERSIST is disabled, using in-memory store (data will not persist across restarts)")
	}

	if seedPath := cfg.Get("FLAGS_SEED_FILE"); seedPath != "" {
		seeds, err := flags.LoadSeedFile(seedPath)
		if err != nil {
			logger.WithError(err).WithField("path", seedPath).Warn("failed to load seed file, using built-in seeds")
		} else {
			opts.Seeds = seeds
		}
	}

	service := NewFlagService(flag_store.NewFileStore(opts))

	// An explicitly empty schedule disables the watcher
	schedule := DefaultExpirySchedule
	if cfg.Has("FLAGS_EXPIRY_SCHEDULE") {
		schedule = cfg.Get("FLAGS_EXPIRY_SCHEDULE")
	}
	if err := service.StartExpiryWatcher(schedule); err != nil {
		return nil, err
	}

	return service, nil
}

// StartExpiryWatcher reports expired flags on the given cron schedule. An
// empty schedule disables the watcher.
func (s *FlagService) StartExpiryWatcher(schedule string) error {
	if schedule == "" {
		s.log.Info("expiry watcher disabled")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { s.ExpiredFlags() }); err != nil {
		return errors.Wrapf(err, "invalid expiry schedule '%s'", schedule)
	}
	c.Start()

	s.cron = c
	s.log.WithField("schedule", schedule).Info("expiry watcher started")
	return nil
}

/** ---- SERVICE METHODS ---- */

// Stop gracefully stops the expiry watcher
func (s *FlagService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// List returns the flags matching the filter with per environment counts
func (s *FlagService) List(filter *flags.Filter) sdk.ListFlagsResponse {
	return sdk.NewListFlagsResponse(s.store.List(filter))
}

// Get returns a flag by id
func (s *FlagService) Get(id string) (*flags.Flag, error) {
	return s.store.Get(id)
}

// Create creates a flag from a validated request
func (s *FlagService) Create(req *sdk.CreateFlagRequest) (*flags.Flag, error) {
	f, err := s.store.Create(req.Params())
	if err != nil {
		return nil, err
	}

	s.log.WithField("id", f.ID).WithField("key", f.Key).WithField("environment", f.Environment).Info("flag created")
	return f, nil
}

// Update applies a validated partial update
func (s *FlagService) Update(id string, req *sdk.UpdateFlagRequest) (*flags.Flag, error) {
	f, err := s.store.Update(id, req.Params())
	if err != nil {
		return nil, err
	}

	s.log.WithField("id", f.ID).Info("flag updated")
	return f, nil
}

// Toggle flips a flag and returns the previous state alongside it
func (s *FlagService) Toggle(id string) (*sdk.ToggleFlagResponse, error) {
	f, previous, err := s.store.Toggle(id)
	if err != nil {
		return nil, err
	}

	s.log.WithField("id", f.ID).WithField("enabled", f.Enabled).Info("flag toggled")
	return &sdk.ToggleFlagResponse{Data: f, PreviousState: previous}, nil
}

// Delete removes a flag, failing with flags.ErrNotFound when nothing was removed
func (s *FlagService) Delete(id string) error {
	if !s.store.Delete(id) {
		return flags.NotFoundError(id)
	}

	s.log.WithField("id", id).Info("flag deleted")
	return nil
}

// ExpiredFlags logs and returns every enabled flag whose expiry has passed
func (s *FlagService) ExpiredFlags() []*flags.Flag {
	enabled := true
	now := s.now()

	var expired []*flags.Flag
	for _, f := range s.store.List(&flags.Filter{Enabled: &enabled}) {
		if f.Expired(now) {
			expired = append(expired, f)
			s.log.WithField("id", f.ID).
				WithField("key", f.Key).
				WithField("environment", f.Environment).
				WithField("expires_at", f.Metadata.ExpiresAt.Format(time.RFC3339)).
				Warn("flag has expired but is still enabled")
		}
	}

	return expired
}
