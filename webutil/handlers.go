package webutil

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppHandler represents a handler function that returns an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to the standard http.HandlerFunc signature.
// It executes the AppHandler and handles any returned error by logging appropriately
// and sending a standardized JSON error response.
func MakeHandler(logger *zap.Logger, handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww, ok := w.(middleware.WrapResponseWriter)
		if !ok {
			ww = middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		}

		err := handler(ww, r)
		if err == nil {
			// The handler wrote its own successful response.
			return
		}

		statusCode, body := MapError(err)
		fields := []zap.Field{
			zap.Int("code", statusCode),
			zap.String("msg", body.Error),
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		// Log the underlying cause if it says more than the public message.
		if cause := causeOf(err); cause != nil && cause.Error() != body.Error {
			fields = append(fields, zap.NamedError("cause", cause))
		}

		switch {
		case statusCode >= http.StatusInternalServerError:
			logger.Error("Server error response", fields...)
		case statusCode == http.StatusNotFound:
			logger.Info("Resource not found", fields...)
		default:
			logger.Warn("Client error response", fields...)
		}

		if HasResponseWriterSentHeader(ww) {
			logger.Warn("Handler returned error after writing response header", fields...)
			return
		}
		RespondWithJSON(ww, statusCode, body)
	}
}

func causeOf(err error) error {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Unwrap()
	}
	return err
}

// HasResponseWriterSentHeader reports whether a status line has already gone out.
func HasResponseWriterSentHeader(w middleware.WrapResponseWriter) bool {
	return w.Status() != 0
}

// LevelForStatus picks the log level used for a finished request.
func LevelForStatus(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
