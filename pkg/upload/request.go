package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// MultipartOverhead is the room left above the file size limit for multipart
// boundaries, part headers and other form fields.
const MultipartOverhead = 64 << 10

// File is an upload that passed validation.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Content     []byte
}

// FromRequest reads the first file part named field from a multipart request.
//
// The request body is capped with http.MaxBytesReader. The part's file name
// and extension are validated as soon as its header is read, so a rejected
// name never causes the content to be read. The content is then read up to
// maxSize+1 bytes and the real size is checked.
func FromRequest(w http.ResponseWriter, r *http.Request, field string, allowed []string, maxSize int64) (*File, error) {
	if maxSize >= 0 {
		if r.ContentLength > maxSize+MultipartOverhead {
			return nil, &SizeError{Limit: maxSize, Actual: r.ContentLength}
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+MultipartOverhead)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errors.Join(ErrNotMultipart, err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingFile
		}
		if err != nil {
			return nil, bodyError(err, maxSize)
		}

		// Part.FileName strips directories, which would hide traversal
		// attempts from the name check, so the raw parameter is used.
		_, params, _ := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
		name, hasName := params["filename"]
		if part.FormName() != field || !hasName {
			_ = part.Close()
			continue
		}

		// Closing a part drains it, so a rejected part is left unread.
		return readPart(part, name, allowed, maxSize)
	}
}

func readPart(part *multipart.Part, name string, allowed []string, maxSize int64) (*File, error) {
	if err := ValidateName(name, allowed); err != nil {
		return nil, err
	}

	var src io.Reader = part
	if maxSize >= 0 {
		src = io.LimitReader(part, maxSize+1)
	}
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, bodyError(err, maxSize)
	}

	if err := Validate(name, int64(len(content)), allowed, maxSize); err != nil {
		return nil, err
	}

	return &File{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: contentType(part.Header.Get("Content-Type"), name),
		Content:     content,
	}, nil
}

// bodyError maps a body cut off by MaxBytesReader to a *SizeError. The file
// size is unknown at that point, so Actual stays zero.
func bodyError(err error, maxSize int64) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return &SizeError{Limit: maxSize}
	}
	return fmt.Errorf("upload: read multipart body: %w", err)
}

// contentType mirrors the multipart binder: the part header first, then the
// extension.
func contentType(header, name string) string {
	if header != "" {
		if mediaType, _, err := mime.ParseMediaType(header); err == nil {
			return mediaType
		}
	}
	return mime.TypeByExtension(filepath.Ext(name))
}
