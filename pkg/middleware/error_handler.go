package middleware

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"pagos-service/pkg/errors"

	"github.com/google/uuid"
)

// Context keys for request scoped values
type contextKey string

const (
	requestIDKey contextKey = "requestID"
	loggerKey    contextKey = "logger"
)

// RequestIDMiddleware tags each request with an ID, reusing an incoming
// X-Request-ID header when present
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TimeoutMiddleware adds request timeout
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs every request and stores a request scoped logger
// carrying the request ID in the context
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := logger.With("request_id", GetRequestID(r.Context()))
			ctx := context.WithValue(r.Context(), loggerKey, log)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			log.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

// RecoveryMiddleware turns a panic into a 500 response
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				LoggerFrom(r.Context()).Error("panic recovered", "panic", rec, "stack", string(debug.Stack()))
				HandleError(w, r, errors.NewInternalError("Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// HandleError writes the error envelope. Caller-facing failures carry their
// own code and message; every other failure is reported as a 500.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.StatusOf(err)
	code, message := errors.CodeInternal, "Internal server error"

	var appErr *errors.ApplicationError
	hasAppErr := stderrors.As(err, &appErr)
	if hasAppErr {
		code = appErr.Code
	}
	if status < http.StatusInternalServerError && hasAppErr {
		message = appErr.Error()
	}
	var sagaErr *errors.SagaError
	if stderrors.As(err, &sagaErr) {
		message = sagaErr.Saga + " failed"
	}

	log := LoggerFrom(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "code", code, "error", err, "method", r.Method, "path", r.URL.Path)
	} else {
		log.Warn("request rejected", "status", status, "code", code, "error", err, "method", r.Method, "path", r.URL.Path)
	}

	sendApiErrorResponse(w, GetRequestID(r.Context()), status, code, message)
}

// sendApiErrorResponse sends a standardized API error response
func sendApiErrorResponse(w http.ResponseWriter, requestID string, statusCode int, code, message string) {
	response := map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"request_id": requestID,
		"timestamp":  time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return "unknown"
}

// LoggerFrom returns the request scoped logger, or the default logger
func LoggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
