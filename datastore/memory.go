package datastore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coreybb/fabula/models"
)

// MemoryStore is an in-process StoryStore and ChapterStore. It is used by the handler
// tests and by `DB_DRIVER=memory` for demos; nothing survives a restart.
type MemoryStore struct {
	mu            sync.Mutex
	nextStoryID   int64
	nextChapterID int64
	stories       map[int64]*models.Story
	chapters      map[int64]*models.Chapter
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextStoryID:   1,
		nextChapterID: 1,
		stories:       make(map[int64]*models.Story),
		chapters:      make(map[int64]*models.Chapter),
	}
}

func copyStory(s *models.Story) models.Story {
	out := *s
	out.Tags = append([]string{}, s.Tags...)
	return out
}

// PingContext always succeeds.
func (m *MemoryStore) PingContext(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) GetStories(ctx context.Context, filter StoryFilter) ([]models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stories := []models.Story{}
	for _, s := range m.stories {
		if filter.Matches(s) {
			stories = append(stories, copyStory(s))
		}
	}
	sort.Slice(stories, func(i, j int) bool {
		if !stories[i].CreatedAt.Equal(stories[j].CreatedAt) {
			return stories[i].CreatedAt.After(stories[j].CreatedAt)
		}
		return stories[i].ID > stories[j].ID
	})
	return stories, nil
}

func (m *MemoryStore) GetStoryByID(ctx context.Context, storyID int64) (*models.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.stories[storyID]
	if !ok {
		return nil, fmt.Errorf("memorystore: story %d: %w", storyID, ErrNotFound)
	}
	out := copyStory(s)
	return &out, nil
}

func (m *MemoryStore) CreateStory(ctx context.Context, story *models.Story, chapters []models.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := now()
	story.ID = m.nextStoryID
	m.nextStoryID++
	story.CreatedAt = ts
	story.UpdatedAt = ts
	if story.Tags == nil {
		story.Tags = []string{}
	}
	stored := copyStory(story)
	m.stories[story.ID] = &stored

	for i := range chapters {
		chapters[i].StoryID = story.ID
		m.insertChapterLocked(&chapters[i], ts)
	}
	return nil
}

func (m *MemoryStore) UpdateStory(ctx context.Context, story *models.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.stories[story.ID]
	if !ok {
		return fmt.Errorf("memorystore: story %d not found for update: %w", story.ID, ErrNotFound)
	}
	story.CreatedAt = existing.CreatedAt
	story.UpdatedAt = now()
	if story.Tags == nil {
		story.Tags = []string{}
	}
	stored := copyStory(story)
	m.stories[story.ID] = &stored
	return nil
}

func (m *MemoryStore) DeleteStory(ctx context.Context, storyID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Both steps happen under one lock, so the cascade is all-or-nothing here too.
	if _, ok := m.stories[storyID]; !ok {
		return fmt.Errorf("memorystore: story %d not found for delete: %w", storyID, ErrNotFound)
	}
	for id, c := range m.chapters {
		if c.StoryID == storyID {
			delete(m.chapters, id)
		}
	}
	delete(m.stories, storyID)
	return nil
}

func (m *MemoryStore) insertChapterLocked(c *models.Chapter, ts time.Time) {
	c.ID = m.nextChapterID
	m.nextChapterID++
	c.CreatedAt = ts
	c.UpdatedAt = ts
	stored := *c
	m.chapters[c.ID] = &stored
}

func (m *MemoryStore) GetChaptersByStoryID(ctx context.Context, storyID int64) ([]models.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chapters := []models.Chapter{}
	for _, c := range m.chapters {
		if c.StoryID == storyID {
			chapters = append(chapters, *c)
		}
	}
	sort.Slice(chapters, func(i, j int) bool { return chapters[i].ID < chapters[j].ID })
	return chapters, nil
}

func (m *MemoryStore) GetChapterByID(ctx context.Context, storyID, chapterID int64) (*models.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chapters[chapterID]
	if !ok || c.StoryID != storyID {
		return nil, fmt.Errorf("memorystore: chapter %d of story %d: %w", chapterID, storyID, ErrNotFound)
	}
	out := *c
	return &out, nil
}

func (m *MemoryStore) CreateChapter(ctx context.Context, chapter *models.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.stories[chapter.StoryID]; !ok {
		return fmt.Errorf("memorystore: story %d: %w", chapter.StoryID, ErrInvalidReference)
	}
	m.insertChapterLocked(chapter, now())
	return nil
}

func (m *MemoryStore) UpdateChapter(ctx context.Context, chapter *models.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.chapters[chapter.ID]
	if !ok || existing.StoryID != chapter.StoryID {
		return fmt.Errorf("memorystore: chapter %d of story %d not found for update: %w", chapter.ID, chapter.StoryID, ErrNotFound)
	}
	existing.Title = chapter.Title
	existing.Content = chapter.Content
	existing.UpdatedAt = now()
	*chapter = *existing
	return nil
}

func (m *MemoryStore) DeleteChapter(ctx context.Context, storyID, chapterID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chapters[chapterID]
	if !ok || c.StoryID != storyID {
		return fmt.Errorf("memorystore: chapter %d of story %d not found for delete: %w", chapterID, storyID, ErrNotFound)
	}
	delete(m.chapters, chapterID)
	return nil
}
