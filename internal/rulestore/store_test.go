package rulestore

import (
	"context"
	"testing"

	"github.com/sentrywaf/waf/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Rule{}))
	return New(db)
}

func TestSeedIfEmpty_InsertsDefaultRules(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedIfEmpty(ctx))

	rules, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, len(defaultRules))
	for _, r := range rules {
		require.NotEmpty(t, r.ID)
		require.True(t, r.Enabled)
	}
}

func TestSeedIfEmpty_IsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedIfEmpty(ctx))
	require.NoError(t, store.SeedIfEmpty(ctx))

	rules, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, len(defaultRules))
}

func TestSeedIfEmpty_SkipsWhenRulesExist(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	custom := models.Rule{Name: "custom", Type: "Custom", Pattern: "x", Score: 1, Action: models.ActionLog, Enabled: true}
	require.NoError(t, store.db.WithContext(ctx).Create(&custom).Error)

	require.NoError(t, store.SeedIfEmpty(ctx))

	rules, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
}

func TestListEnabled_ExcludesDisabled(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SeedIfEmpty(ctx))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	toggled, err := store.Toggle(ctx, all[0].ID)
	require.NoError(t, err)
	require.False(t, toggled.Enabled)

	enabled, err := store.ListEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, len(all)-1)
	for _, r := range enabled {
		require.NotEqual(t, all[0].ID, r.ID)
	}
}

func TestToggle_FlipsEnabledState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SeedIfEmpty(ctx))

	all, err := store.List(ctx)
	require.NoError(t, err)
	id := all[0].ID
	require.True(t, all[0].Enabled)

	toggled, err := store.Toggle(ctx, id)
	require.NoError(t, err)
	require.False(t, toggled.Enabled)

	toggledAgain, err := store.Toggle(ctx, id)
	require.NoError(t, err)
	require.True(t, toggledAgain.Enabled)
}

func TestToggle_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Toggle(ctx, "does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
}
