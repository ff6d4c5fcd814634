package validation

import (
	"github.com/coreybb/fabula/models"
)

// StoryPayload is the body accepted by story create and update.
// Tags must be present (an empty array is fine); a missing tags key is a violation.
type StoryPayload struct {
	Title      string           `json:"title" validate:"notblank"`
	Author     string           `json:"author" validate:"notblank"`
	Category   string           `json:"category" validate:"notblank"`
	Tags       []string         `json:"tags" validate:"required,dive,notblank"`
	Status     string           `json:"status" validate:"required,story_status"`
	Synopsis   string           `json:"synopsis" validate:"notblank"`
	StoryCover string           `json:"storyCover" validate:"required,url"`
	Chapters   []ChapterPayload `json:"chapters,omitempty"`
}

// ChapterPayload is the body accepted by chapter create and update.
type ChapterPayload struct {
	Title   string `json:"title" validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
}

type chapterBatch struct {
	Chapters []ChapterPayload `json:"chapters" validate:"dive"`
}

// ValidateStory validates a story payload, including any chapters submitted alongside
// it. Values are checked as submitted and never rewritten.
func ValidateStory(p *StoryPayload) Errors {
	errs := check(p)
	if len(p.Chapters) > 0 {
		errs = append(errs, ValidateChapters(p.Chapters)...)
	}
	return errs
}

// ValidateChapter validates a single chapter payload.
func ValidateChapter(p *ChapterPayload) Errors {
	return check(p)
}

// ValidateChapters validates a batch of chapters. Violations are reported with their
// index, e.g. "chapters[1].content".
func ValidateChapters(ps []ChapterPayload) Errors {
	return check(&chapterBatch{Chapters: ps})
}

// Story builds the model for a validated payload. ID and timestamps are left to the datastore.
func (p StoryPayload) Story() models.Story {
	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)
	return models.Story{
		Title:      p.Title,
		Author:     p.Author,
		Category:   p.Category,
		Tags:       tags,
		Status:     models.StoryStatus(p.Status),
		Synopsis:   p.Synopsis,
		StoryCover: p.StoryCover,
	}
}

// Chapter builds the model for a validated payload bound to storyID.
func (p ChapterPayload) Chapter(storyID int64) models.Chapter {
	return models.Chapter{
		StoryID: storyID,
		Title:   p.Title,
		Content: p.Content,
	}
}

// ChapterModels converts the chapters submitted with a story. StoryID is filled in by
// the datastore once the story exists.
func (p StoryPayload) ChapterModels() []models.Chapter {
	if len(p.Chapters) == 0 {
		return nil
	}
	chapters := make([]models.Chapter, 0, len(p.Chapters))
	for _, c := range p.Chapters {
		chapters = append(chapters, c.Chapter(0))
	}
	return chapters
}
