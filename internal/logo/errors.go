package logo

import (
	"errors"
	"fmt"
)

// Terminal discovery errors. Callers match them with errors.Is.
var (
	ErrInvalidWebsite = errors.New("invalid website url")
	ErrNoCandidates   = errors.New("no logo candidates found")
	ErrNoValidLogo    = errors.New("no valid logo could be fetched")
)

// FetchError describes a failed page or image fetch. StatusCode is zero for
// transport failures.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetch failure causes wrapped by FetchError.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrEmptyBody        = errors.New("empty body")
	ErrBodyTooLarge     = errors.New("body exceeds size limit")
	ErrTooManyRedirects = errors.New("too many redirects")
)
