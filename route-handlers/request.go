package routehandlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coreybb/fabula/webutil"
)

const (
	ParamStoryID   = "storyId"
	ParamChapterID = "chapterId"
)

const (
	msgInvalidPayload   = "Invalid request payload"
	msgBodyTooLarge     = "Request body too large"
	msgInvalidStoryID   = "Invalid story ID format"
	msgInvalidChapterID = "Invalid chapter ID format"
	msgStoryNotFound    = "Story not found"
	msgChapterNotFound  = "Chapter not found"
)

// maxBodyBytes caps request bodies; chapter content is the largest field we accept.
const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return payloadError(err)
	}
	// Trailing data after the first JSON value is a malformed body.
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return payloadError(err)
	}
	return nil
}

func payloadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return webutil.ErrRequestTooLargeWrap(msgBodyTooLarge, err)
	}
	return webutil.ErrBadRequestWrap(msgInvalidPayload, err)
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(r *http.Request, name, invalidMsg string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, webutil.ErrBadRequest(invalidMsg)
	}
	return id, nil
}

func storyIDParam(r *http.Request) (int64, error) {
	return parseIDParam(r, ParamStoryID, msgInvalidStoryID)
}

func chapterIDParam(r *http.Request) (int64, error) {
	return parseIDParam(r, ParamChapterID, msgInvalidChapterID)
}
