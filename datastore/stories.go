package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/coreybb/fabula/models"
)

// StoryRepository handles database operations for stories.
type StoryRepository struct {
	db *DB
}

// NewStoryRepository creates a new StoryRepository.
func NewStoryRepository(db *DB) *StoryRepository {
	return &StoryRepository{db: db}
}

const storyColumns = `id, title, author, category, tags, status, synopsis, story_cover, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *StoryRepository) scanStory(row rowScanner) (*models.Story, error) {
	var s models.Story
	var status string
	err := row.Scan(
		&s.ID, &s.Title, &s.Author, &s.Category, r.db.dialect.tagsDest(&s.Tags),
		&status, &s.Synopsis, &s.StoryCover, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Status = models.StoryStatus(status)
	if s.Tags == nil {
		s.Tags = []string{}
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

// GetStories returns the stories matching filter, newest first.
func (r *StoryRepository) GetStories(ctx context.Context, filter StoryFilter) ([]models.Story, error) {
	where, args := filter.whereClause(r.db.dialect)
	query := `SELECT ` + storyColumns + ` FROM stories` + where + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("failed to query stories", err)
	}
	defer rows.Close()

	stories := []models.Story{}
	for rows.Next() {
		s, err := r.scanStory(rows)
		if err != nil {
			return nil, classify("failed to scan story row", err)
		}
		stories = append(stories, *s)
	}

	if err = rows.Err(); err != nil {
		return nil, classify("error iterating story rows", err)
	}

	return stories, nil
}

// GetStoryByID retrieves a story by its ID.
func (r *StoryRepository) GetStoryByID(ctx context.Context, storyID int64) (*models.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`
	s, err := r.scanStory(r.db.QueryRowContext(ctx, query, storyID))
	if err != nil {
		return nil, classify(fmt.Sprintf("failed to get story %d", storyID), err)
	}
	return s, nil
}

// CreateStory inserts story and any chapters submitted with it in one transaction.
func (r *StoryRepository) CreateStory(ctx context.Context, story *models.Story, chapters []models.Chapter) error {
	tags, err := r.db.dialect.tagsArg(story.Tags)
	if err != nil {
		return &PersistenceError{Op: "create story", Err: err}
	}

	ts := now()
	return r.db.withTx(ctx, "create story", func(tx *sql.Tx) error {
		query := `
			INSERT INTO stories (
				title, author, category, tags, status,
				synopsis, story_cover, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`
		var id int64
		err := tx.QueryRowContext(ctx, query,
			story.Title, story.Author, story.Category, tags, string(story.Status),
			story.Synopsis, story.StoryCover, ts, ts,
		).Scan(&id)
		if err != nil {
			return classify("failed to insert story", err)
		}

		for i := range chapters {
			chapters[i].StoryID = id
			if err := insertChapter(ctx, tx, &chapters[i], ts); err != nil {
				return err
			}
		}

		story.ID = id
		story.CreatedAt = ts
		story.UpdatedAt = ts
		if story.Tags == nil {
			story.Tags = []string{}
		}
		return nil
	})
}

// UpdateStory overwrites every user-supplied field of the story and refreshes updated_at.
func (r *StoryRepository) UpdateStory(ctx context.Context, story *models.Story) error {
	tags, err := r.db.dialect.tagsArg(story.Tags)
	if err != nil {
		return &PersistenceError{Op: "update story", Err: err}
	}

	ts := now()
	query := `
		UPDATE stories
		SET title = $1,
		    author = $2,
		    category = $3,
		    tags = $4,
		    status = $5,
		    synopsis = $6,
		    story_cover = $7,
		    updated_at = $8
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		story.Title, story.Author, story.Category, tags, string(story.Status),
		story.Synopsis, story.StoryCover, ts, story.ID,
	)
	if err != nil {
		return classify(fmt.Sprintf("failed to update story %d", story.ID), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify(fmt.Sprintf("failed to get rows affected for story update %d", story.ID), err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("story %d not found for update: %w", story.ID, ErrNotFound)
	}

	story.UpdatedAt = ts
	return nil
}

// DeleteStory deletes the story's chapters and then the story inside one transaction.
// If the chapters cannot be deleted the story is left untouched.
func (r *StoryRepository) DeleteStory(ctx context.Context, storyID int64) error {
	return r.db.withTx(ctx, "delete story", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE story_id = $1`, storyID); err != nil {
			return classify(fmt.Sprintf("failed to delete chapters of story %d", storyID), err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, storyID)
		if err != nil {
			return classify(fmt.Sprintf("failed to delete story %d", storyID), err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return classify(fmt.Sprintf("failed to get rows affected for story delete %d", storyID), err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("story %d not found for delete: %w", storyID, ErrNotFound)
		}
		return nil
	})
}
