// Package upload rejects unsafe or oversized uploaded files before any
// parser sees them.
//
// Validate checks metadata only and runs its checks in a fixed order, so the
// reported reason is deterministic:
//
//  1. size larger than the limit: ErrSizeExceeded
//  2. extension (case-folded) not in the allowlist: ErrDisallowedExtension
//  3. unsafe file name: ErrInvalidFilename
//
// A safe file name is at most 255 bytes of letters, digits, spaces, '-' and
// '_' with exactly one dot separating a non-empty stem from the extension.
// Path separators, "..", NUL bytes and control characters are rejected.
//
// FromRequest applies the same rules to a multipart/form-data request while
// streaming it: the name is validated from the part header and the content is
// read with a hard cap.
//
//	file, err := upload.FromRequest(w, r, "file", []string{"csv", "txt"}, 10<<20)
//	if errors.Is(err, upload.ErrSizeExceeded) {
//	    http.Error(w, "too large", http.StatusRequestEntityTooLarge)
//	    return
//	}
package upload
