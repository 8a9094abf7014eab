package shortener

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxURLLength is the longest URL accepted for shortening.
const MaxURLLength = 2048

// ValidateURL checks that rawURL is a non-empty absolute http or https URL with a host.
// Every failure wraps ErrInvalidURL.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return fmt.Errorf("%w: url is empty", ErrInvalidURL)
	}

	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("%w: url exceeds %d characters", ErrInvalidURL, MaxURLLength)
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}

	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	return nil
}
