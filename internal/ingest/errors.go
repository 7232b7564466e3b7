package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPermissionDenied means the media-access grant was refused; nothing
	// left the device.
	ErrPermissionDenied = errors.New("media access permission denied")

	// ErrUploadFailure means the image blob never made it to object storage;
	// no document was written.
	ErrUploadFailure = errors.New("image upload failed")

	// ErrPersistFailure means the listing document write failed after a
	// successful upload. The blob's deletion is compensated asynchronously.
	ErrPersistFailure = errors.New("listing persist failed")

	// ErrBusy means a submission is already in flight for this form.
	ErrBusy = errors.New("submission already in progress")
)

// ValidationError reports the required form fields that were missing. No
// network call happens when validation fails.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
