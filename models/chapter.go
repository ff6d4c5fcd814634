package models

import "time"

type Chapter struct {
	ID        int64     `json:"id"`
	StoryID   int64     `json:"storyId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
