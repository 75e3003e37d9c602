package flags

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultSeeds(t *testing.T) {
	pairs := map[string]bool{}
	for _, s := range DefaultSeeds {
		assert.True(t, IsKebabCase(s.Key), s.Key)
		assert.True(t, s.Environment.Valid(), s.Key)

		pair := s.Key + ":" + string(s.Environment)
		assert.False(t, pairs[pair], "duplicate seed %s", pair)
		pairs[pair] = true
	}
}

func TestSeedID(t *testing.T) {
	id := SeedID("dark-mode", Production)
	assert.Equal(t, id, SeedID("dark-mode", Production))
	assert.NotEqual(t, id, SeedID("dark-mode", Staging))

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestSeedFlag(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	f := DefaultSeeds[0].Flag(now)
	assert.Equal(t, SeedID("dark-mode", Production), f.ID)
	assert.Equal(t, SeedOwner, f.Metadata.Owner)
	require.NotNil(t, f.Description)
	assert.Equal(t, now, f.CreatedAt)
	assert.Equal(t, now, f.UpdatedAt)
	assert.Nil(t, f.Metadata.ExpiresAt)

	bare := Seed{Key: "bare", Name: "Bare", Environment: Development}.Flag(now)
	assert.Nil(t, bare.Description)
	assert.Equal(t, []string{}, bare.Metadata.Tags)
}

func TestLoadSeedFile(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		path := writeSeedFile(t, `
seeds:
  - key: search-v2
    name: Search v2
    environment: staging
    enabled: true
    tags: [search]
    description: New search backend
  - key: search-v2
    name: Search v2
    environment: production
`)
		seeds, err := LoadSeedFile(path)
		require.NoError(t, err)
		require.Len(t, seeds, 2)
		assert.Equal(t, Seed{
			Key:         "search-v2",
			Name:        "Search v2",
			Environment: Staging,
			Enabled:     true,
			Tags:        []string{"search"},
			Description: "New search backend",
		}, seeds[0])
		assert.False(t, seeds[1].Enabled)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("duplicate pair", func(t *testing.T) {
		path := writeSeedFile(t, `
seeds:
  - {key: a-flag, name: A, environment: staging}
  - {key: a-flag, name: A again, environment: staging}
`)
		_, err := LoadSeedFile(path)
		assert.ErrorIs(t, err, ErrDuplicateKey)

		var dup *DuplicateKeyError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "a-flag", dup.Key)
	})

	invalid := map[string]string{
		"not yaml":            "seeds: [",
		"empty":               "seeds: []",
		"missing name":        "seeds:\n  - {key: a-flag, environment: staging}",
		"bad key":             "seeds:\n  - {key: A_Flag, name: A, environment: staging}",
		"unknown environment": "seeds:\n  - {key: a-flag, name: A, environment: qa}",
	}
	for name, contents := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSeedFile(writeSeedFile(t, contents))
			assert.Error(t, err)
		})
	}
}
