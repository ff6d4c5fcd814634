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

// ChapterHandler holds dependencies for chapters nested under a story.
type ChapterHandler struct {
	Repo   datastore.ChapterStore
	logger *zap.Logger
}

func NewChapterHandler(repo datastore.ChapterStore, logger *zap.Logger) *ChapterHandler {
	return &ChapterHandler{Repo: repo, logger: logger.Named("chapters")}
}

type chapterResponse struct {
	Chapter *models.Chapter `json:"chapter"`
}

type chaptersResponse struct {
	Chapters []models.Chapter `json:"chapters"`
}

// Example route: GET /stories/{storyId}/chapters
func (h *ChapterHandler) HandleGetChapters(w http.ResponseWriter, r *http.Request) error {
	storyID, err := storyIDParam(r)
	if err != nil {
		return err
	}

	chapters, err := h.Repo.GetChaptersByStoryID(r.Context(), storyID)
	if err != nil {
		return err
	}

	webutil.RespondWithJSON(w, http.StatusOK, chaptersResponse{Chapters: chapters})
	return nil
}

// Example route: GET /stories/{storyId}/chapters/{chapterId}
func (h *ChapterHandler) HandleGetChapter(w http.ResponseWriter, r *http.Request) error {
	storyID, chapterID, err := chapterPath(r)
	if err != nil {
		return err
	}

	chapter, err := h.Repo.GetChapterByID(r.Context(), storyID, chapterID)
	if err != nil {
		return chapterLookupError(err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, chapterResponse{Chapter: chapter})
	return nil
}

// HandleCreateChapter appends a chapter to a story. A story that does not exist surfaces as
// an invalid reference from the datastore.
// Example route: POST /stories/{storyId}/chapters
func (h *ChapterHandler) HandleCreateChapter(w http.ResponseWriter, r *http.Request) error {
	storyID, err := storyIDParam(r)
	if err != nil {
		return err
	}

	var req validation.ChapterPayload
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := validation.ValidateChapter(&req).Err(); err != nil {
		return err
	}

	chapter := req.Chapter(storyID)
	if err := h.Repo.CreateChapter(r.Context(), &chapter); err != nil {
		return err
	}

	h.logger.Info("Chapter created", zap.Int64("story_id", storyID), zap.Int64("chapter_id", chapter.ID))
	webutil.RespondWithJSON(w, http.StatusCreated, chapterResponse{Chapter: &chapter})
	return nil
}

// Example route: PUT /stories/{storyId}/chapters/{chapterId}
func (h *ChapterHandler) HandleUpdateChapter(w http.ResponseWriter, r *http.Request) error {
	storyID, chapterID, err := chapterPath(r)
	if err != nil {
		return err
	}

	var req validation.ChapterPayload
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := validation.ValidateChapter(&req).Err(); err != nil {
		return err
	}

	chapter := req.Chapter(storyID)
	chapter.ID = chapterID
	if err := h.Repo.UpdateChapter(r.Context(), &chapter); err != nil {
		return chapterLookupError(err)
	}

	updated, err := h.Repo.GetChapterByID(r.Context(), storyID, chapterID)
	if err != nil {
		return chapterLookupError(err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, chapterResponse{Chapter: updated})
	return nil
}

// Example route: DELETE /stories/{storyId}/chapters/{chapterId}
func (h *ChapterHandler) HandleDeleteChapter(w http.ResponseWriter, r *http.Request) error {
	storyID, chapterID, err := chapterPath(r)
	if err != nil {
		return err
	}

	if err := h.Repo.DeleteChapter(r.Context(), storyID, chapterID); err != nil {
		return chapterLookupError(err)
	}

	h.logger.Info("Chapter deleted", zap.Int64("story_id", storyID), zap.Int64("chapter_id", chapterID))
	webutil.RespondNoContent(w)
	return nil
}

func chapterPath(r *http.Request) (storyID, chapterID int64, err error) {
	if storyID, err = storyIDParam(r); err != nil {
		return 0, 0, err
	}
	if chapterID, err = chapterIDParam(r); err != nil {
		return 0, 0, err
	}
	return storyID, chapterID, nil
}

func chapterLookupError(err error) error {
	if errors.Is(err, datastore.ErrNotFound) {
		return webutil.ErrNotFoundWrap(msgChapterNotFound, err)
	}
	return err
}
