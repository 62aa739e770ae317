package logging

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Logger is the access log middleware. Each request gets an id and a child
// logger in its context.
type Logger struct {
	handler http.Handler
}

func (l *Logger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t := time.Now()

	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)

	logger := log.With().Str("request_id", id).Logger()
	ctx := logger.WithContext(r.Context())
	ctx = context.WithValue(ctx, requestIDKey{}, id)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	l.handler.ServeHTTP(rec, r.WithContext(ctx))

	logger.Info().
		Stringer("url", r.URL).
		Str("method", r.Method).
		Int("status_code", rec.status).
		Int64("response_time", time.Since(t).Nanoseconds()).
		Msg("")
}

func WithLogging(h http.Handler) *Logger {
	return &Logger{h}
}

// RequestID returns the id assigned by WithLogging, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Ctx is zerolog.Ctx, re-exported so handlers need one import.
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
