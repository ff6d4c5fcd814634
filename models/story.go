package models

import "time"

// StoryStatus defines the publication state of a Story.
type StoryStatus string

const (
	StoryStatusDraft     StoryStatus = "DRAFT"
	StoryStatusPublished StoryStatus = "PUBLISHED"
)

// Story is the top-level content entity. Chapters reference it by ID.
type Story struct {
	ID         int64       `json:"id"`
	Title      string      `json:"title"`
	Author     string      `json:"author"`
	Category   string      `json:"category"`
	Tags       []string    `json:"tags"`
	Status     StoryStatus `json:"status"`
	Synopsis   string      `json:"synopsis"`
	StoryCover string      `json:"storyCover"` // Opaque URL, never uploaded
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// IsValidStoryStatus checks if the provided string is a valid StoryStatus.
// Matching is exact: "draft" is not a status.
func IsValidStoryStatus(statusStr string) (StoryStatus, bool) {
	st := StoryStatus(statusStr)
	switch st {
	case StoryStatusDraft, StoryStatusPublished:
		return st, true
	default:
		return "", false
	}
}
