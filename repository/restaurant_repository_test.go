package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/menux-backend/repository"
	"github.com/yeremiapane/menux-backend/testutil"
	"github.com/yeremiapane/menux-backend/utils"
)

func TestFindActiveBySlug(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "alpha")
	closed := testutil.Seed(t, db, "closed")
	testutil.Deactivate(t, db, &closed.Restaurant)
	repo := repository.NewRestaurantRepository(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		slug    string
		wantErr bool
	}{
		{"exact", "alpha", false},
		{"case insensitive", "ALPHA", false},
		{"padded", "  alpha ", false},
		{"unknown", "nope", true},
		{"blank", "   ", true},
		{"inactive", "closed", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := repo.FindActiveBySlug(ctx, tt.slug)
			if tt.wantErr {
				assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, f.Restaurant.ID, r.ID)
			assert.True(t, r.OnlineOrderingAllowed())
		})
	}
}

func TestFindUserByAuthID(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "alpha")
	repo := repository.NewRestaurantRepository(db)

	u, err := repo.FindUserByAuthID(context.Background(), f.Owner.AuthUserID)
	require.NoError(t, err)
	assert.Equal(t, f.Restaurant.ID, u.Restaurant.ID)

	_, err = repo.FindUserByAuthID(context.Background(), uuid.New())
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestSourceAndMenuRepositories(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.Seed(t, db, "alpha")
	other := testutil.Seed(t, db, "beta")
	ctx := context.Background()

	sources := repository.NewSourceRepository(db)
	_, err := sources.FindTable(ctx, f.Restaurant.ID, f.Table.ID)
	require.NoError(t, err)
	_, err = sources.FindTable(ctx, f.Restaurant.ID, other.Table.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	_, err = sources.FindRoom(ctx, other.Restaurant.ID, f.Room.ID)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	menu := repository.NewMenuRepository(db)
	items, err := menu.ItemsByIDs(ctx, f.Restaurant.ID, []uuid.UUID{f.Burger.ID, other.Burger.ID})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Contains(t, items, f.Burger.ID)

	variants, err := menu.VariantsByIDs(ctx, []uuid.UUID{f.Large.ID})
	require.NoError(t, err)
	v := variants[f.Large.ID]
	assert.Equal(t, "20", v.Delta().String())
}
