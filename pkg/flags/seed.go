package flags

import (
	"os"
	"slices"
	"time"

	"emperror.dev/errors"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// seedNamespace keeps seeded ids stable across restarts without a snapshot
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("flagdash-seed-namespace"))

// Seed is an entry of the initial flag set
type Seed struct {
	Key         string      `yaml:"key"`
	Name        string      `yaml:"name"`
	Environment Environment `yaml:"environment"`
	Enabled     bool        `yaml:"enabled"`
	Tags        []string    `yaml:"tags"`
	Description string      `yaml:"description"`
}

// DefaultSeeds is loaded into an empty store
var DefaultSeeds = []Seed{
	{Key: "dark-mode", Name: "Dark Mode", Environment: Production, Enabled: true, Tags: []string{"ui", "theme"}, Description: "Enable dark mode theme across the application"},
	{Key: "dark-mode", Name: "Dark Mode (Staging)", Environment: Staging, Enabled: true, Tags: []string{"ui", "theme"}},
	{Key: "new-checkout-flow", Name: "New Checkout Flow", Environment: Staging, Enabled: true, Tags: []string{"payments", "experiment"}},
	{Key: "new-checkout-flow", Name: "New Checkout Flow", Environment: Development, Enabled: true, Tags: []string{"payments", "experiment"}},
	{Key: "ai-recommendations", Name: "AI Recommendations", Environment: Development, Enabled: true, Tags: []string{"ml", "experiment"}},
	{Key: "beta-dashboard", Name: "Beta Dashboard", Environment: Staging, Enabled: false, Tags: []string{"ui", "beta"}},
	{Key: "maintenance-mode", Name: "Maintenance Mode", Environment: Production, Enabled: false, Tags: []string{"ops", "critical"}},
	{Key: "feature-analytics", Name: "Feature Analytics", Environment: Production, Enabled: true, Tags: []string{"analytics"}},
	{Key: "social-login", Name: "Social Login", Environment: Development, Enabled: true, Tags: []string{"auth"}},
	{Key: "export-csv", Name: "CSV Export", Environment: Production, Enabled: true, Tags: []string{"data", "utility"}},
	{Key: "bulk-operations", Name: "Bulk Operations", Environment: Staging, Enabled: true, Tags: []string{"admin", "utility"}},
	{Key: "notification-center", Name: "Notification Center", Environment: Development, Enabled: false, Tags: []string{"ui", "notifications"}},
}

// SeedID derives the id of a seeded flag from its key and environment
func SeedID(key string, env Environment) string {
	return uuid.NewSHA1(seedNamespace, []byte(key+":"+string(env))).String()
}

// Flag builds the flag record for the seed
func (s Seed) Flag(now time.Time) *Flag {
	var description *string
	if s.Description != "" {
		d := s.Description
		description = &d
	}

	tags := slices.Clone(s.Tags)
	if tags == nil {
		tags = []string{}
	}

	return &Flag{
		ID:          SeedID(s.Key, s.Environment),
		Key:         s.Key,
		Name:        s.Name,
		Description: description,
		Enabled:     s.Enabled,
		Environment: s.Environment,
		Metadata: Metadata{
			Owner: SeedOwner,
			Tags:  tags,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LoadSeedFile reads a YAML seed list of the form `seeds: [...]`. Entries
// must have a kebab-case key, a name and a known environment, and no two entries may
// share a (key, environment) pair.
func LoadSeedFile(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read seed file")
	}

	var file struct {
		Seeds []Seed `yaml:"seeds"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to parse seed file")
	}

	if len(file.Seeds) == 0 {
		return nil, errors.Errorf("no seeds found in %s", path)
	}

	seen := make(map[string]bool, len(file.Seeds))
	for i, s := range file.Seeds {
		if s.Key == "" || s.Name == "" {
			return nil, errors.Errorf("seed %d is missing a key or name", i)
		}
		if !IsKebabCase(s.Key) {
			return nil, errors.Errorf("seed key '%s' is not kebab-case", s.Key)
		}
		if !s.Environment.Valid() {
			return nil, errors.Errorf("seed '%s' has unknown environment '%s'", s.Key, s.Environment)
		}

		pair := s.Key + ":" + string(s.Environment)
		if seen[pair] {
			return nil, &DuplicateKeyError{Key: s.Key, Environment: s.Environment}
		}
		seen[pair] = true
	}

	return file.Seeds, nil
}
