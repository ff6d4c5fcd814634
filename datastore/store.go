package datastore

import (
	"context"

	"github.com/coreybb/fabula/models"
)

// StoryStore persists stories. Implementations set IDs and timestamps.
type StoryStore interface {
	GetStories(ctx context.Context, filter StoryFilter) ([]models.Story, error)
	GetStoryByID(ctx context.Context, storyID int64) (*models.Story, error)
	// CreateStory inserts story and, atomically with it, any chapters submitted alongside.
	// IDs, StoryID and timestamps are written back into story and chapters.
	CreateStory(ctx context.Context, story *models.Story, chapters []models.Chapter) error
	UpdateStory(ctx context.Context, story *models.Story) error
	// DeleteStory removes the story's chapters and then the story, as one unit.
	DeleteStory(ctx context.Context, storyID int64) error
}

// ChapterStore persists chapters. Lookups are scoped by story: a chapter of another
// story is reported as ErrNotFound.
type ChapterStore interface {
	GetChaptersByStoryID(ctx context.Context, storyID int64) ([]models.Chapter, error)
	GetChapterByID(ctx context.Context, storyID, chapterID int64) (*models.Chapter, error)
	CreateChapter(ctx context.Context, chapter *models.Chapter) error
	UpdateChapter(ctx context.Context, chapter *models.Chapter) error
	DeleteChapter(ctx context.Context, storyID, chapterID int64) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var (
	_ StoryStore   = (*StoryRepository)(nil)
	_ ChapterStore = (*ChapterRepository)(nil)
	_ StoryStore   = (*MemoryStore)(nil)
	_ ChapterStore = (*MemoryStore)(nil)
	_ Pinger       = (*DB)(nil)
	_ Pinger       = (*MemoryStore)(nil)
)
