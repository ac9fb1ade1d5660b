package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamsafe/alertkit/pkg/directory"
)

func TestMemoryDirectory(t *testing.T) {
	t.Parallel()

	dir := directory.NewMemoryDirectory()
	ctx := context.Background()

	dir.Upsert(directory.Profile{
		ID:       "tourist-1",
		Phone:    "+66812345678",
		Email:    "anna@example.com",
		Language: "de",
	})

	got, err := dir.Profile(ctx, "tourist-1")
	require.NoError(t, err)
	assert.Equal(t, "+66812345678", got.Phone)

	t.Run("returned profile is a copy", func(t *testing.T) {
		got.Phone = "changed"
		again, err := dir.Profile(ctx, "tourist-1")
		require.NoError(t, err)
		assert.Equal(t, "+66812345678", again.Phone)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		dir.Upsert(directory.Profile{ID: "tourist-1", Email: "new@example.com"})
		got, err := dir.Profile(ctx, "tourist-1")
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", got.Email)
		assert.Empty(t, got.Phone)
	})

	t.Run("unknown ID", func(t *testing.T) {
		_, err := dir.Profile(ctx, "ghost")
		assert.ErrorIs(t, err, directory.ErrProfileNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		dir.Delete("tourist-1")
		_, err := dir.Profile(ctx, "tourist-1")
		assert.ErrorIs(t, err, directory.ErrProfileNotFound)
	})
}

func TestMemoryDirectory_All(t *testing.T) {
	t.Parallel()

	dir := directory.NewMemoryDirectory()
	dir.Upsert(directory.Profile{ID: "a"})
	dir.Upsert(directory.Profile{ID: "b"})

	all, err := dir.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMatchLanguage(t *testing.T) {
	t.Parallel()

	supported := []string{"en", "th", "zh-Hans", "ja"}

	tests := []struct {
		name      string
		preferred string
		want      string
	}{
		{"exact match", "th", "th"},
		{"regional variant falls back to base", "en-GB", "en"},
		{"script match", "zh-CN", "zh-Hans"},
		{"no match falls back to first", "sw", "en"},
		{"empty preference", "", "en"},
		{"malformed tag", "???", "en"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, directory.MatchLanguage(supported, tt.preferred))
		})
	}
}

func TestMatchLanguage_Degenerate(t *testing.T) {
	t.Parallel()

	assert.Empty(t, directory.MatchLanguage(nil, "en"))
	assert.Equal(t, "bogus", directory.MatchLanguage([]string{"bogus"}, "en"))
}
