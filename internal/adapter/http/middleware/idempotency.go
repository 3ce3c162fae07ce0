package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/peopleops/leaveledger/internal/usecase"
)

// IdempotencyKeyHeader carries the client-chosen dedup key for
// mutating requests.
const IdempotencyKeyHeader = "Idempotency-Key"

const idempotencyTTL = 24 * time.Hour

// pendingResponse is what the store holds while the first request is
// still running.
const pendingResponse = "processing"

// IdempotencyMiddleware replays stored responses for repeated mutating
// requests. A retried time-off creation gets the original response
// back instead of writing a second ledger entry.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
}

func NewIdempotencyMiddleware(store usecase.IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store}
}

func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !mutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		// Scope the key to the endpoint so the same client key on two
		// routes cannot replay across them.
		key = r.Method + ":" + r.URL.Path + ":" + key

		seen, cached, err := m.store.CheckAndSet(r.Context(), key, nil, idempotencyTTL)
		if err != nil {
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		if seen {
			if string(cached) == pendingResponse || cached == nil {
				http.Error(w, "request already in progress", http.StatusConflict)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Idempotency-Replay", "true")
			w.Write(cached)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// Only commit outcomes worth replaying; a failed request
		// releases its claim so the client can retry.
		if recorder.statusCode >= 200 && recorder.statusCode < 300 {
			m.store.Update(r.Context(), key, recorder.body.Bytes(), idempotencyTTL)
		} else {
			m.store.Delete(r.Context(), key)
		}
	})
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
