package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/fabula/models"
)

func validStoryPayload() StoryPayload {
	return StoryPayload{
		Title:      "The Long Road",
		Author:     "Ada Writer",
		Category:   "Technology",
		Tags:       []string{"travel", "essays"},
		Status:     "DRAFT",
		Synopsis:   "A story about a very long road and the people on it.",
		StoryCover: "https://x.com/a.png",
	}
}

func TestValidateStory(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		p := validStoryPayload()
		errs := ValidateStory(&p)
		assert.Empty(t, errs)
		assert.NoError(t, errs.Err())
	})

	t.Run("empty tags array is allowed", func(t *testing.T) {
		p := validStoryPayload()
		p.Tags = []string{}
		assert.Empty(t, ValidateStory(&p))
	})

	t.Run("missing tags is a violation", func(t *testing.T) {
		p := validStoryPayload()
		p.Tags = nil
		errs := ValidateStory(&p)
		assert.Equal(t, []string{"tags"}, errs.Fields())
	})

	t.Run("blank tag value", func(t *testing.T) {
		p := validStoryPayload()
		p.Tags = []string{"ok", "   "}
		errs := ValidateStory(&p)
		assert.Equal(t, []string{"tags[1]"}, errs.Fields())
	})

	t.Run("every violation is reported", func(t *testing.T) {
		p := StoryPayload{Status: "ARCHIVED", StoryCover: "not a url"}
		errs := ValidateStory(&p)
		require.Error(t, errs.Err())
		assert.ElementsMatch(t,
			[]string{"title", "author", "category", "tags", "status", "synopsis", "storyCover"},
			errs.Fields(),
		)
	})

	t.Run("status is case sensitive", func(t *testing.T) {
		p := validStoryPayload()
		p.Status = "draft"
		errs := ValidateStory(&p)
		require.Len(t, errs, 1)
		assert.Equal(t, "status", errs[0].Field)
		assert.Equal(t, "status must be one of: DRAFT, PUBLISHED", errs[0].Message)
	})

	t.Run("invalid cover url names the field", func(t *testing.T) {
		p := validStoryPayload()
		p.StoryCover = "cover.png"
		errs := ValidateStory(&p)
		require.Len(t, errs, 1)
		assert.Equal(t, "storyCover", errs[0].Field)
		assert.Contains(t, errs[0].Message, "storyCover")
		assert.Contains(t, errs.Error(), "storyCover must be a valid URL")
	})

	t.Run("whitespace-only title is blank", func(t *testing.T) {
		p := validStoryPayload()
		p.Title = "   "
		errs := ValidateStory(&p)
		require.Len(t, errs, 1)
		assert.Equal(t, "title is required", errs[0].Message)
	})

	t.Run("values are kept as submitted", func(t *testing.T) {
		p := validStoryPayload()
		p.Title = "  Padded  "
		p.Author = " Ada "
		p.Tags = []string{" a "}
		require.Empty(t, ValidateStory(&p))
		assert.Equal(t, "  Padded  ", p.Title)
		assert.Equal(t, " Ada ", p.Author)
		assert.Equal(t, []string{" a "}, p.Tags)
	})

	t.Run("padded status is not a status", func(t *testing.T) {
		for _, status := range []string{" DRAFT", "PUBLISHED ", "\tDRAFT"} {
			p := validStoryPayload()
			p.Status = status
			errs := ValidateStory(&p)
			assert.Equal(t, []string{"status"}, errs.Fields(), "status %q", status)
		}
	})

	t.Run("story and chapter violations are reported together", func(t *testing.T) {
		p := validStoryPayload()
		p.Title = ""
		p.Chapters = []ChapterPayload{{Title: "One", Content: ""}}
		errs := ValidateStory(&p)
		assert.Equal(t, []string{"title", "chapters[0].content"}, errs.Fields())
	})

	t.Run("nested chapters are validated with their index", func(t *testing.T) {
		p := validStoryPayload()
		p.Chapters = []ChapterPayload{
			{Title: "One", Content: "First"},
			{Title: "", Content: "Second"},
		}
		errs := ValidateStory(&p)
		assert.Equal(t, []string{"chapters[1].title"}, errs.Fields())
		assert.Equal(t, "chapters[1].title is required", errs[0].Message)
	})
}

func TestValidateChapter(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := ChapterPayload{Title: "Intro", Content: "Once upon a time"}
		assert.Empty(t, ValidateChapter(&p))
	})

	t.Run("missing title and content", func(t *testing.T) {
		p := ChapterPayload{}
		errs := ValidateChapter(&p)
		assert.Equal(t, []string{"title", "content"}, errs.Fields())
	})

	t.Run("content keeps its whitespace", func(t *testing.T) {
		p := ChapterPayload{Title: " Intro ", Content: "  indented\n"}
		require.Empty(t, ValidateChapter(&p))
		assert.Equal(t, " Intro ", p.Title)
		assert.Equal(t, "  indented\n", p.Content)
	})
}

func TestValidateChapters(t *testing.T) {
	batch := []ChapterPayload{
		{Title: "One", Content: "a"},
		{Title: "Two", Content: ""},
		{Title: "", Content: "c"},
	}
	errs := ValidateChapters(batch)
	assert.Equal(t, []string{"chapters[1].content", "chapters[2].title"}, errs.Fields())

	assert.Empty(t, ValidateChapters(nil))
}

func TestStoryPayloadConversion(t *testing.T) {
	p := validStoryPayload()
	p.Chapters = []ChapterPayload{{Title: "One", Content: "a"}}

	story := p.Story()
	assert.Equal(t, models.StoryStatusDraft, story.Status)
	assert.Equal(t, p.Tags, story.Tags)
	assert.Zero(t, story.ID)

	p.Tags[0] = "changed"
	assert.Equal(t, "travel", story.Tags[0], "model must not alias the payload's tags")

	chapters := p.ChapterModels()
	require.Len(t, chapters, 1)
	assert.Equal(t, "One", chapters[0].Title)
	assert.Zero(t, chapters[0].StoryID)
}
