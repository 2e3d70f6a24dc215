package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"shareit/internal/api"
	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
users:
  - name: ann
    email: ann@example.com
    items:
      - name: Drill
        description: cordless drill
        available: true
      - name: Ladder
        description: three meters
        available: false
  - name: bob
    email: bob@example.com
    requests:
      - description: need a tent
`

func newSeedDeps(t *testing.T) api.Dependencies {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	bus := events.NewEventBus()
	return api.Dependencies{
		Users:    service.NewUserService(db, &logger),
		Items:    service.NewItemService(db, bus, &logger),
		Bookings: service.NewBookingService(db, bus, &logger),
		Requests: service.NewRequestService(db, &logger),
	}
}

func TestApplySeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	deps := newSeedDeps(t)
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	require.NoError(t, applySeed(ctx, path, deps, &logger))

	users, err := deps.Users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	items, err := deps.Items.ListOwnerItems(ctx, users[0].ID, 0, 20)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	requests, err := deps.Requests.GetOwnRequests(ctx, users[1].ID)
	require.NoError(t, err)
	assert.Len(t, requests, 1)

	// second run is a no-op
	require.NoError(t, applySeed(ctx, path, deps, &logger))
	users, err = deps.Users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestLoadSeedErrors(t *testing.T) {
	_, err := loadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: [broken"), 0o644))
	_, err = loadSeed(path)
	assert.Error(t, err)
}
