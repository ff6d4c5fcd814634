package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/coreybb/fabula/models"
)

// ChapterRepository handles database operations for chapters.
type ChapterRepository struct {
	db *DB
}

// NewChapterRepository creates a new ChapterRepository.
func NewChapterRepository(db *DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

const chapterColumns = `id, story_id, title, content, created_at, updated_at`

func scanChapter(row rowScanner) (*models.Chapter, error) {
	var c models.Chapter
	if err := row.Scan(&c.ID, &c.StoryID, &c.Title, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

// insertChapter is shared by chapter creation and story-with-chapters creation.
func insertChapter(ctx context.Context, q queryer, c *models.Chapter, ts time.Time) error {
	query := `
		INSERT INTO chapters (story_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	if err := q.QueryRowContext(ctx, query, c.StoryID, c.Title, c.Content, ts, ts).Scan(&id); err != nil {
		return classify(fmt.Sprintf("failed to insert chapter for story %d", c.StoryID), err)
	}
	c.ID = id
	c.CreatedAt = ts
	c.UpdatedAt = ts
	return nil
}

// GetChaptersByStoryID returns the story's chapters in insertion order.
func (r *ChapterRepository) GetChaptersByStoryID(ctx context.Context, storyID int64) ([]models.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapters WHERE story_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, storyID)
	if err != nil {
		return nil, classify(fmt.Sprintf("failed to query chapters for story %d", storyID), err)
	}
	defer rows.Close()

	chapters := []models.Chapter{}
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, classify(fmt.Sprintf("failed to scan chapter row for story %d", storyID), err)
		}
		chapters = append(chapters, *c)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(fmt.Sprintf("error iterating chapter rows for story %d", storyID), err)
	}

	return chapters, nil
}

// GetChapterByID retrieves a chapter by ID, provided it belongs to storyID.
func (r *ChapterRepository) GetChapterByID(ctx context.Context, storyID, chapterID int64) (*models.Chapter, error) {
	query := `SELECT ` + chapterColumns + ` FROM chapters WHERE id = $1 AND story_id = $2`
	c, err := scanChapter(r.db.QueryRowContext(ctx, query, chapterID, storyID))
	if err != nil {
		return nil, classify(fmt.Sprintf("failed to get chapter %d of story %d", chapterID, storyID), err)
	}
	return c, nil
}

// CreateChapter inserts a chapter. A missing parent story yields ErrInvalidReference.
func (r *ChapterRepository) CreateChapter(ctx context.Context, chapter *models.Chapter) error {
	return insertChapter(ctx, r.db, chapter, now())
}

// UpdateChapter overwrites the chapter's title and content.
func (r *ChapterRepository) UpdateChapter(ctx context.Context, chapter *models.Chapter) error {
	ts := now()
	query := `
		UPDATE chapters
		SET title = $1,
		    content = $2,
		    updated_at = $3
		WHERE id = $4 AND story_id = $5
	`
	result, err := r.db.ExecContext(ctx, query, chapter.Title, chapter.Content, ts, chapter.ID, chapter.StoryID)
	if err != nil {
		return classify(fmt.Sprintf("failed to update chapter %d", chapter.ID), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify(fmt.Sprintf("failed to get rows affected for chapter update %d", chapter.ID), err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("chapter %d of story %d not found for update: %w", chapter.ID, chapter.StoryID, ErrNotFound)
	}

	chapter.UpdatedAt = ts
	return nil
}

// DeleteChapter deletes a chapter of storyID.
func (r *ChapterRepository) DeleteChapter(ctx context.Context, storyID, chapterID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chapters WHERE id = $1 AND story_id = $2`, chapterID, storyID)
	if err != nil {
		return classify(fmt.Sprintf("failed to delete chapter %d", chapterID), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify(fmt.Sprintf("failed to get rows affected for chapter delete %d", chapterID), err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("chapter %d of story %d not found for delete: %w", chapterID, storyID, ErrNotFound)
	}
	return nil
}
