package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/coreybb/fabula/datastore"
	rh "github.com/coreybb/fabula/route-handlers"
	"github.com/coreybb/fabula/webutil"
)

const (
	storiesBasePath = "/stories"
	chaptersSubPath = "/chapters"
	healthPath      = "/healthz"
)

// DefaultRequestTimeout applies when SetupRoutes is given a non-positive timeout.
const DefaultRequestTimeout = 60 * time.Second

const healthCheckTimeout = 2 * time.Second

func SetupRoutes(
	logger *zap.Logger,
	storyHandler *rh.StoryHandler,
	chapterHandler *rh.ChapterHandler,
	store datastore.Pinger,
	requestTimeout time.Duration,
) http.Handler {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	r := chi.NewRouter()

	// Middleware stack
	r.Use(RequestID)
	r.Use(RealIP)
	r.Use(RequestLogger(logger.Named("http"))) // Log every request
	r.Use(Recoverer)                           // Recover from panics
	r.Use(middleware.Timeout(requestTimeout))  // Set a timeout context for requests

	// JSON replies for routing misses; set before any subrouter is mounted.
	r.NotFound(webutil.MakeHandler(logger, handleRouteNotFound))
	r.MethodNotAllowed(webutil.MakeHandler(logger, handleMethodNotAllowed))

	configureStoryRoutes(r, logger, storyHandler, chapterHandler)

	// Health check endpoint
	r.Get(healthPath, handleHealthCheck(logger, store))

	return r
}

// Helper for constructing paths with a parameter
func pathWithParam(basePath string, paramName string) string {
	if basePath == "" {
		return "/{" + paramName + "}"
	}
	return basePath + "/{" + paramName + "}"
}

// --- Story Routes ---
func configureStoryRoutes(r chi.Router, logger *zap.Logger, stories *rh.StoryHandler, chapters *rh.ChapterHandler) {
	h := func(fn webutil.AppHandler) http.HandlerFunc {
		return webutil.MakeHandler(logger, fn)
	}

	r.Route(storiesBasePath, func(r chi.Router) {
		r.Get("/", h(stories.HandleGetStories))
		r.Post("/", h(stories.HandleCreateStory))
		r.Route(pathWithParam("", rh.ParamStoryID), func(r chi.Router) {
			r.Get("/", h(stories.HandleGetStory))
			r.Put("/", h(stories.HandleUpdateStory))
			r.Delete("/", h(stories.HandleDeleteStory))

			// Nested: chapters of a story
			r.Route(chaptersSubPath, func(r chi.Router) {
				r.Get("/", h(chapters.HandleGetChapters))    // GET /stories/{storyId}/chapters
				r.Post("/", h(chapters.HandleCreateChapter)) // POST /stories/{storyId}/chapters
				r.Route(pathWithParam("", rh.ParamChapterID), func(r chi.Router) {
					r.Get("/", h(chapters.HandleGetChapter))
					r.Put("/", h(chapters.HandleUpdateChapter))
					r.Delete("/", h(chapters.HandleDeleteChapter))
				})
			})
		})
	})
}

// --- Utility Functions ---

func handleRouteNotFound(w http.ResponseWriter, r *http.Request) error {
	return webutil.ErrNotFound(fmt.Sprintf("Route %s not found", r.URL.RequestURI()))
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) error {
	return webutil.ErrMethodNotAllowed(fmt.Sprintf("Method %s not allowed on %s", r.Method, r.URL.Path))
}

// handleHealthCheck responds to a health check request after pinging the store.
func handleHealthCheck(logger *zap.Logger, store datastore.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status, body := http.StatusOK, "OK"
		if err := store.PingContext(ctx); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			status, body = http.StatusServiceUnavailable, "UNAVAILABLE"
		}

		w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
