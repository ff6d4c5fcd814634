package routehandlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreybb/fabula/validation"
	"github.com/coreybb/fabula/webutil"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"object", `{"title":"T","content":"C"}`, false},
		{"unknown field", `{"title":"T","content":"C","extra":true}`, false},
		{"trailing newline", "{\"title\":\"T\"}\n", false},
		{"truncated", `{"title":`, true},
		{"two objects", `{"title":"A"}{"title":"B"}`, true},
		{"wrong type", `{"title":5}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p validation.ChapterPayload
			err := decodeJSON(httptest.NewRecorder(), req, &p)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var httpErr *webutil.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
			assert.Equal(t, msgInvalidPayload, httpErr.Message)
		})
	}
}

func TestDecodeJSONBodyTooLarge(t *testing.T) {
	oversized := `{"title":"T","content":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(oversized))
	var p validation.ChapterPayload
	err := decodeJSON(httptest.NewRecorder(), req, &p)

	var httpErr *webutil.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, httpErr.Code)
	assert.Equal(t, msgBodyTooLarge, httpErr.Message)

	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, err, &maxErr)
}

func TestParseIDParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add(ParamStoryID, value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := storyIDParam(withParam("42"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-1", "99999999999999999999"} {
		_, err := storyIDParam(withParam(bad))
		assert.EqualError(t, err, msgInvalidStoryID, bad)
	}
}
