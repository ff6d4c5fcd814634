package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coreybb/fabula/webutil"
)

// maxRequestIDLength bounds client-supplied request ids before they reach the logs.
const maxRequestIDLength = 128

// RequestID stores a request id in the context under chi's key, so middleware.GetReqID
// keeps working. A client-supplied X-Request-Id is reused; otherwise a UUID is generated.
// The id is echoed back in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(webutil.HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		w.Header().Set(webutil.HeaderRequestID, requestID)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RealIP(next http.Handler) http.Handler {
	return middleware.RealIP(next)
}

func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}

// RequestLogger logs one line per finished request.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				if ce := logger.Check(webutil.LevelForStatus(status), "Request served"); ce != nil {
					ce.Write(
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Int("status", status),
						zap.Int("bytes", ww.BytesWritten()),
						zap.Duration("duration", time.Since(start)),
						zap.String("remote_addr", r.RemoteAddr),
						zap.String("request_id", middleware.GetReqID(r.Context())),
					)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
