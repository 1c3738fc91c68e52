package transfer

import (
	"fmt"
	"time"
)

// TimeoutError is returned when a downloaded file is not visible in the local
// file system within the wait timeout.
type TimeoutError struct {
	Path   string
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("file not found at %s after waiting for %v", e.Path, e.Waited)
}

// UploadError is returned when the destination folder cannot be resolved or
// the document store rejects the file.
type UploadError struct {
	Folder string
	File   string
	Err    error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("error uploading %s to %s: %v", e.File, e.Folder, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
