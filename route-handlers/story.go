package routehandlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/coreybb/fabula/datastore"
	"github.com/coreybb/fabula/models"
	"github.com/coreybb/fabula/validation"
	"github.com/coreybb/fabula/webutil"
)

// Query parameters accepted by the story list.
const (
	queryCategory = "category"
	queryStatus   = "status"
	queryTitle    = "title"
	queryAuthor   = "author"
)

// StoryHandler holds dependencies for story CRUD.
type StoryHandler struct {
	Repo   datastore.StoryStore
	logger *zap.Logger
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(repo datastore.StoryStore, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{Repo: repo, logger: logger.Named("stories")}
}

type storyResponse struct {
	Story    *models.Story    `json:"story"`
	Chapters []models.Chapter `json:"chapters,omitempty"`
}

type storiesResponse struct {
	Stories []models.Story `json:"stories"`
}

// HandleGetStories lists stories, optionally filtered by the category, status, title and
// author query parameters.
// Example route: GET /stories?category=Health&title=abc
func (h *StoryHandler) HandleGetStories(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	filter := datastore.StoryFilter{}.
		Category(q.Get(queryCategory)).
		Status(q.Get(queryStatus)).
		TitleContains(q.Get(queryTitle)).
		AuthorContains(q.Get(queryAuthor))

	stories, err := h.Repo.GetStories(r.Context(), filter)
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, storiesResponse{Stories: stories})
	return nil
}

// Example route: GET /stories/{storyId}
func (h *StoryHandler) HandleGetStory(w http.ResponseWriter, r *http.Request) error {
	id, err := storyIDParam(r)
	if err != nil {
		return err
	}

	story, err := h.Repo.GetStoryByID(r.Context(), id)
	if err != nil {
		return storyLookupError(err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, storyResponse{Story: story})
	return nil
}

// HandleCreateStory creates a story, together with any chapters submitted in the same body.
// Example route: POST /stories
func (h *StoryHandler) HandleCreateStory(w http.ResponseWriter, r *http.Request) error {
	var req validation.StoryPayload
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := validation.ValidateStory(&req).Err(); err != nil {
		return err
	}

	story := req.Story()
	chapters := req.ChapterModels()
	if err := h.Repo.CreateStory(r.Context(), &story, chapters); err != nil {
		return err
	}

	h.logger.Info("Story created",
		zap.Int64("story_id", story.ID),
		zap.Int("chapters", len(chapters)),
	)
	webutil.RespondWithJSON(w, http.StatusCreated, storyResponse{Story: &story, Chapters: chapters})
	return nil
}

// HandleUpdateStory replaces every field of an existing story.
// Example route: PUT /stories/{storyId}
func (h *StoryHandler) HandleUpdateStory(w http.ResponseWriter, r *http.Request) error {
	id, err := storyIDParam(r)
	if err != nil {
		return err
	}

	var req validation.StoryPayload
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	// Chapters are managed through their own routes on update.
	req.Chapters = nil
	if err := validation.ValidateStory(&req).Err(); err != nil {
		return err
	}

	story := req.Story()
	story.ID = id
	if err := h.Repo.UpdateStory(r.Context(), &story); err != nil {
		return storyLookupError(err)
	}

	// Fetch the updated record to return it
	updated, err := h.Repo.GetStoryByID(r.Context(), id)
	if err != nil {
		return storyLookupError(err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, storyResponse{Story: updated})
	return nil
}

// HandleDeleteStory removes a story and all of its chapters.
// Example route: DELETE /stories/{storyId}
func (h *StoryHandler) HandleDeleteStory(w http.ResponseWriter, r *http.Request) error {
	id, err := storyIDParam(r)
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteStory(r.Context(), id); err != nil {
		return storyLookupError(err)
	}

	h.logger.Info("Story deleted", zap.Int64("story_id", id))
	webutil.RespondNoContent(w)
	return nil
}

func storyLookupError(err error) error {
	if errors.Is(err, datastore.ErrNotFound) {
		return webutil.ErrNotFoundWrap(msgStoryNotFound, err)
	}
	return err
}
