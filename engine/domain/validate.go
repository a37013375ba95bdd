package domain

import (
	"fmt"
	"net/url"
)

// ValidateURL checks that a submitted link is an absolute http(s) URL.
// Anything else is rejected before it reaches the ingestion queue.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}
