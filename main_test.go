package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coreybb/fabula/config"
	"github.com/coreybb/fabula/models"
)

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = newLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger("chatty", false)
	assert.Error(t, err)
}

func TestOpenBackend(t *testing.T) {
	logger = zap.NewNop()
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		b, err := openBackend(ctx, config.DatabaseConfig{Driver: config.DriverMemory}, true)
		require.NoError(t, err)
		defer b.closeFn()
		assert.NoError(t, b.pinger.PingContext(ctx))
	})

	t.Run("sqlite with migration", func(t *testing.T) {
		b, err := openBackend(ctx, config.DatabaseConfig{
			Driver:           config.DriverSQLite,
			ConnectionString: filepath.Join(t.TempDir(), "serve.db"),
		}, true)
		require.NoError(t, err)
		defer b.closeFn()

		story := &models.Story{
			Title: "Wired", Author: "Ada", Category: "Health", Tags: []string{},
			Status: models.StoryStatusDraft, Synopsis: "S", StoryCover: "https://x.com/a.png",
		}
		require.NoError(t, b.stories.CreateStory(ctx, story, nil))
		list, err := b.chapters.GetChaptersByStoryID(ctx, story.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
