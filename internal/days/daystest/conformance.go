// Package daystest holds behaviour checks shared by every days.Store
// implementation.
package daystest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"daylog/internal/core"
	"daylog/internal/days"
)

// Run exercises store against the port contract. newStore must return an
// empty store.
func Run(t *testing.T, newStore func(t *testing.T) days.Store) {
	t.Helper()

	t.Run("list empty day", func(t *testing.T) {
		s := newStore(t)
		got, err := s.List(context.Background(), "u1", "2025-01-01")
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("add keeps creation order", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		for _, in := range []core.NewActivity{
			{Title: "Read", Category: "Study", Minutes: 30},
			{Title: "Gym", Category: "Health", Minutes: 45},
			{Title: "Write", Category: "Study", Minutes: 20},
		} {
			a, err := s.Add(ctx, "u1", "2025-01-01", in)
			require.NoError(t, err)
			require.NotEmpty(t, a.ID)
			require.Equal(t, in.Title, a.Title)
			require.Equal(t, in.Minutes, a.Minutes)
		}

		got, err := s.List(ctx, "u1", "2025-01-01")
		require.NoError(t, err)
		require.Len(t, got, 3)
		require.Equal(t, "Read", got[0].Title)
		require.Equal(t, "Gym", got[1].Title)
		require.Equal(t, "Write", got[2].Title)
		require.True(t, got[0].CreatedAt.Before(got[1].CreatedAt) || got[0].CreatedAt.Equal(got[1].CreatedAt))
	})

	t.Run("partitions are isolated", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.Add(ctx, "u1", "2025-01-01", core.NewActivity{Title: "Run", Category: "Health", Minutes: 30})
		require.NoError(t, err)

		other, err := s.List(ctx, "u2", "2025-01-01")
		require.NoError(t, err)
		require.Empty(t, other)

		nextDay, err := s.List(ctx, "u1", "2025-01-02")
		require.NoError(t, err)
		require.Empty(t, nextDay)
	})

	t.Run("delete then relist", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a, err := s.Add(ctx, "u1", "2025-01-01", core.NewActivity{Title: "Run", Category: "Health", Minutes: 30})
		require.NoError(t, err)
		b, err := s.Add(ctx, "u1", "2025-01-01", core.NewActivity{Title: "Nap", Category: "Sleep", Minutes: 20})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "u1", "2025-01-01", a.ID))
		got, err := s.List(ctx, "u1", "2025-01-01")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, b.ID, got[0].ID)
	})

	t.Run("delete missing id is not found", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		a, err := s.Add(ctx, "u1", "2025-01-01", core.NewActivity{Title: "Run", Category: "Health", Minutes: 30})
		require.NoError(t, err)

		err = s.Delete(ctx, "u1", "2025-01-01", "missing")
		require.ErrorIs(t, err, days.ErrNotFound)

		// Same id, other user's partition.
		err = s.Delete(ctx, "u2", "2025-01-01", a.ID)
		require.ErrorIs(t, err, days.ErrNotFound)
	})

	t.Run("anonymous writes are denied", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Add(context.Background(), "", "2025-01-01", core.NewActivity{Title: "Run", Category: "Health", Minutes: 30})
		require.ErrorIs(t, err, days.ErrPermissionDenied)
	})

	t.Run("empty category is defaulted", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		_, err := s.Add(ctx, "u1", "2025-01-01", core.NewActivity{Title: "Misc", Minutes: 5})
		require.NoError(t, err)
		got, err := s.List(ctx, "u1", "2025-01-01")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, core.DefaultCategory, got[0].Category)
	})
}
