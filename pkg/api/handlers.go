package api

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/inputguard/pkg/guard"
	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/pattern"
	"github.com/dmitrymomot/inputguard/pkg/upload"
)

type patternRequest struct {
	Pattern     string `json:"pattern"`
	Flags       string `json:"flags"`
	Text        string `json:"text"`
	Operation   string `json:"operation"`
	Replacement string `json:"replacement"`
	// TimeoutMS can only shorten the configured deadline.
	TimeoutMS int64 `json:"timeout_ms"`
}

type structuredResponse struct {
	Value any `json:"value"`
}

type markupResponse struct {
	HTML string `json:"html"`
}

type fileResponse struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

func (s *Service) testPattern(w http.ResponseWriter, r *http.Request) {
	limits := s.guard.Limits()

	var in patternRequest
	if rej := decodeJSON(w, r, &in, limits.MaxSizeBytes()); rej != nil {
		s.reject(w, r, rej)
		return
	}

	flags, err := pattern.ParseFlags(in.Flags)
	if err != nil {
		s.reject(w, r, invalidRequest(err.Error()))
		return
	}
	op, err := pattern.ParseOperation(in.Operation)
	if err != nil {
		s.reject(w, r, invalidRequest(err.Error()))
		return
	}

	if in.TimeoutMS > 0 {
		deadline := limits.Timeout()
		if deadline <= 0 {
			deadline = pattern.DefaultTimeout
		}
		if d := time.Duration(in.TimeoutMS) * time.Millisecond; d < deadline {
			limits = limits.WithTimeout(d)
		}
	}

	res := s.guard.Evaluate(r.Context(), guard.Request{
		Kind:        guard.PatternTest,
		Pattern:     in.Pattern,
		Flags:       flags,
		Operation:   op,
		Replacement: in.Replacement,
		Payload:     []byte(in.Text),
		Limits:      &limits,
	})
	if res.Rejection != nil {
		s.reject(w, r, res.Rejection)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: res.Output})
}

func (s *Service) parseStructured(w http.ResponseWriter, r *http.Request) {
	body, rej := readBody(w, r, s.guard.Limits().MaxSizeBytes())
	if rej != nil {
		s.reject(w, r, rej)
		return
	}

	res := s.guard.Evaluate(r.Context(), guard.Request{
		Kind:    guard.StructuredParse,
		Payload: body,
		Format:  r.URL.Query().Get("format"),
	})
	if res.Rejection != nil {
		s.reject(w, r, res.Rejection)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: structuredResponse{Value: res.Output}})
}

func (s *Service) renderMarkup(w http.ResponseWriter, r *http.Request) {
	body, rej := readBody(w, r, s.guard.Limits().MaxSizeBytes())
	if rej != nil {
		s.reject(w, r, rej)
		return
	}

	res := s.guard.Evaluate(r.Context(), guard.Request{
		Kind:    guard.MarkupRender,
		Payload: body,
		Format:  r.URL.Query().Get("format"),
	})
	if res.Rejection != nil {
		s.reject(w, r, res.Rejection)
		return
	}
	html, _ := res.Output.(string)
	writeJSON(w, http.StatusOK, envelope{Data: markupResponse{HTML: html}})
}

func (s *Service) ingestFile(w http.ResponseWriter, r *http.Request) {
	limits := s.guard.Limits()

	file, err := upload.FromRequest(w, r, FileField, limits.AllowedExtensions(), limits.MaxSizeBytes())
	if err != nil {
		rej, ok := guard.RejectionFor(err)
		if !ok {
			s.log.WarnContext(r.Context(), "read upload", logger.Error(err))
			rej = invalidRequest("cannot read multipart body")
		}
		s.reject(w, r, rej)
		return
	}

	res := s.guard.Evaluate(r.Context(), guard.Request{
		Kind:     guard.FileIngest,
		Filename: file.Name,
		Payload:  file.Content,
	})
	if res.Rejection != nil {
		s.reject(w, r, res.Rejection)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: fileResponse{
		Name:        file.Name,
		Size:        file.Size,
		ContentType: file.ContentType,
	}})
}
