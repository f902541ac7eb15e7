package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/dmitrymomot/inputguard/pkg/guard"
	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/ratelimiter"
)

// jsonOverhead is allowed on top of the size limit for the JSON envelope of
// POST /v1/pattern.
const jsonOverhead = 64 << 10

// envelope is the body of every JSON response.
type envelope struct {
	Data  any              `json:"data,omitempty"`
	Error *guard.Rejection `json:"error,omitempty"`
}

// StatusFor maps a rejection reason to an HTTP status.
func StatusFor(reason guard.Reason) int {
	switch reason {
	case guard.ReasonSizeExceeded:
		return http.StatusRequestEntityTooLarge
	case guard.ReasonDisallowedExtension:
		return http.StatusUnsupportedMediaType
	case guard.ReasonInvalidRequest:
		return http.StatusBadRequest
	case guard.ReasonRateLimited:
		return http.StatusTooManyRequests
	case guard.ReasonInternal:
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Service) reject(w http.ResponseWriter, r *http.Request, rej *guard.Rejection) {
	status := StatusFor(rej.Reason)
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed", logger.Reason(string(rej.Reason)))
	}
	writeJSON(w, status, envelope{Error: rej})
}

// rateLimited answers a throttled /v1 request. Limit is the bucket
// capacity and Actual the seconds until the next refill.
func (s *Service) rateLimited(w http.ResponseWriter, r *http.Request, res ratelimiter.Result) {
	s.log.InfoContext(r.Context(), "request throttled", logger.Reason(string(guard.ReasonRateLimited)))
	writeJSON(w, http.StatusTooManyRequests, envelope{Error: &guard.Rejection{
		Reason:  guard.ReasonRateLimited,
		Message: "too many requests",
		Limit:   int64(res.Limit),
		Actual:  int64(math.Ceil(max(res.RetryAfter(), 0).Seconds())),
	}})
}

func invalidRequest(msg string) *guard.Rejection {
	return &guard.Rejection{Reason: guard.ReasonInvalidRequest, Message: msg}
}

func bodyTooLarge(limit int64) *guard.Rejection {
	return &guard.Rejection{
		Reason:  guard.ReasonSizeExceeded,
		Message: fmt.Sprintf("request body exceeds %d bytes", limit),
		Limit:   limit,
	}
}

// readBody reads the whole body, refusing to read past maxSize.
// A declared Content-Length over the limit is rejected without reading.
func readBody(w http.ResponseWriter, r *http.Request, maxSize int64) ([]byte, *guard.Rejection) {
	if maxSize >= 0 {
		if r.ContentLength > maxSize {
			return nil, guard.SizeRejection(maxSize, r.ContentLength)
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	}

	body, err := io.ReadAll(r.Body)
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return nil, bodyTooLarge(maxSize)
	case err != nil:
		return nil, invalidRequest("cannot read request body")
	}
	return body, nil
}

// decodeJSON decodes a single JSON object into v. The body may exceed
// maxSize by jsonOverhead; the payload inside is size-checked by the guard.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, maxSize int64) *guard.Rejection {
	if maxSize >= 0 {
		limit := maxSize + jsonOverhead
		if r.ContentLength > limit {
			return guard.SizeRejection(limit, r.ContentLength)
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)

	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return bodyTooLarge(mbe.Limit)
	case errors.Is(err, io.EOF):
		return invalidRequest("request body is empty")
	case err != nil:
		return invalidRequest("malformed JSON body: " + err.Error())
	}
	if dec.More() {
		return invalidRequest("malformed JSON body: unexpected data after object")
	}
	return nil
}
