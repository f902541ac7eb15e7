package guard

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/inputguard/pkg/pattern"
	"github.com/dmitrymomot/inputguard/pkg/structure"
	"github.com/dmitrymomot/inputguard/pkg/upload"
)

var (
	ErrSizeExceeded        = errors.New("guard: size limit exceeded")
	ErrDepthExceeded       = errors.New("guard: nesting depth limit exceeded")
	ErrTimeoutExceeded     = errors.New("guard: evaluation timeout exceeded")
	ErrInvalidFormat       = errors.New("guard: malformed input")
	ErrInvalidPattern      = errors.New("guard: invalid pattern")
	ErrDisallowedExtension = errors.New("guard: file extension is not allowed")
	ErrInvalidFilename     = errors.New("guard: unsafe file name")
	ErrInvalidRequest      = errors.New("guard: invalid request")
	ErrRateLimited         = errors.New("guard: too many requests")
	ErrInternal            = errors.New("guard: internal failure")
)

// Reason classifies a rejection.
type Reason string

const (
	ReasonSizeExceeded        Reason = "size_exceeded"
	ReasonDepthExceeded       Reason = "depth_exceeded"
	ReasonTimeoutExceeded     Reason = "timeout_exceeded"
	ReasonInvalidFormat       Reason = "invalid_format"
	ReasonInvalidPattern      Reason = "invalid_pattern"
	ReasonDisallowedExtension Reason = "disallowed_extension"
	ReasonInvalidFilename     Reason = "invalid_filename"
	// ReasonInvalidRequest marks a caller mistake such as an unknown flag,
	// operation, format or kind.
	ReasonInvalidRequest Reason = "invalid_request"
	// ReasonRateLimited is only produced by the HTTP service.
	ReasonRateLimited Reason = "rate_limited"
	// ReasonInternal marks a failure of the guard itself. Its message is
	// always generic; the cause is only logged.
	ReasonInternal Reason = "internal_error"
)

var reasonErrors = map[Reason]error{
	ReasonSizeExceeded:        ErrSizeExceeded,
	ReasonDepthExceeded:       ErrDepthExceeded,
	ReasonTimeoutExceeded:     ErrTimeoutExceeded,
	ReasonInvalidFormat:       ErrInvalidFormat,
	ReasonInvalidPattern:      ErrInvalidPattern,
	ReasonDisallowedExtension: ErrDisallowedExtension,
	ReasonInvalidFilename:     ErrInvalidFilename,
	ReasonInvalidRequest:      ErrInvalidRequest,
	ReasonRateLimited:         ErrRateLimited,
	ReasonInternal:            ErrInternal,
}

// Rejection is the detail of a rejected request. Numeric fields are set only
// when the reason carries them: Limit and Actual for size and timeout (in
// milliseconds), Depth and Path for depth, Offset, Line and Column for format
// and pattern errors.
type Rejection struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
	Limit   int64  `json:"limit,omitempty"`
	Actual  int64  `json:"actual,omitempty"`
	Depth   int    `json:"depth,omitempty"`
	Offset  int64  `json:"offset,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Path    string `json:"path,omitempty"`

	cause error
}

func (r *Rejection) Error() string { return r.Message }

// Is matches the sentinel of the rejection's reason.
func (r *Rejection) Is(target error) bool {
	err, ok := reasonErrors[r.Reason]
	return ok && target == err
}

// Unwrap returns the leaf error that caused the rejection. It is nil for
// rejections restored from the memo cache.
func (r *Rejection) Unwrap() error { return r.cause }

// Internal reports whether the guard itself failed.
func (r *Rejection) Internal() bool { return r.Reason == ReasonInternal }

// SizeRejection builds a size rejection for callers that enforce the limit
// before the payload reaches the guard, such as an HTTP body reader.
func SizeRejection(limit, actual int64) *Rejection {
	return &Rejection{
		Reason:  ReasonSizeExceeded,
		Message: fmt.Sprintf("input is %d bytes, limit is %d", actual, limit),
		Limit:   limit,
		Actual:  actual,
	}
}

// RejectionFor maps an error from any guard component to a Rejection.
// It reports false for errors outside the rejection taxonomy.
func RejectionFor(err error) (*Rejection, bool) {
	rej := classify(err)
	return rej, rej != nil
}

func classify(err error) *Rejection {
	var (
		rej            *Rejection
		patternTimeout *pattern.TimeoutError
		patternSyntax  *pattern.SyntaxError
		docSize        *structure.SizeError
		docDepth       *structure.DepthError
		docSyntax      *structure.SyntaxError
		fileSize       *upload.SizeError
		fileExt        *upload.ExtensionError
		fileName       *upload.FilenameError
	)

	switch {
	case err == nil:
		return nil
	case errors.As(err, &rej):
		return rej
	case errors.As(err, &patternTimeout):
		return &Rejection{
			Reason:  ReasonTimeoutExceeded,
			Message: err.Error(),
			Limit:   patternTimeout.Timeout.Milliseconds(),
			Actual:  patternTimeout.Elapsed.Milliseconds(),
			cause:   err,
		}
	case errors.As(err, &patternSyntax):
		r := &Rejection{Reason: ReasonInvalidPattern, Message: err.Error(), cause: err}
		if patternSyntax.Offset > 0 {
			r.Offset = int64(patternSyntax.Offset)
		}
		return r
	case errors.As(err, &docSize):
		return sizeRejection(docSize.Limit, docSize.Actual, err)
	case errors.As(err, &fileSize):
		return sizeRejection(fileSize.Limit, fileSize.Actual, err)
	case errors.As(err, &docDepth):
		return &Rejection{
			Reason:  ReasonDepthExceeded,
			Message: err.Error(),
			Limit:   int64(docDepth.Limit),
			Depth:   docDepth.Depth,
			Path:    docDepth.Path,
			cause:   err,
		}
	case errors.As(err, &docSyntax):
		return &Rejection{
			Reason:  ReasonInvalidFormat,
			Message: err.Error(),
			Offset:  docSyntax.Offset,
			Line:    docSyntax.Line,
			Column:  docSyntax.Column,
			cause:   err,
		}
	case errors.As(err, &fileExt):
		return &Rejection{Reason: ReasonDisallowedExtension, Message: err.Error(), cause: err}
	case errors.As(err, &fileName):
		return &Rejection{Reason: ReasonInvalidFilename, Message: err.Error(), cause: err}
	case errors.Is(err, structure.ErrInvalidFormat):
		return &Rejection{Reason: ReasonInvalidFormat, Message: err.Error(), cause: err}
	case errors.Is(err, pattern.ErrUnknownFlag),
		errors.Is(err, pattern.ErrUnknownOperation),
		errors.Is(err, structure.ErrUnsupportedFormat),
		errors.Is(err, upload.ErrMissingFile),
		errors.Is(err, upload.ErrNotMultipart),
		errors.Is(err, ErrInvalidRequest):
		return &Rejection{Reason: ReasonInvalidRequest, Message: err.Error(), cause: err}
	}
	return nil
}

func sizeRejection(limit, actual int64, cause error) *Rejection {
	r := SizeRejection(limit, actual)
	r.Message = cause.Error()
	r.cause = cause
	return r
}
