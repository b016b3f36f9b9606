package domain

import (
	"errors"
	"fmt"
)

type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is required", e.Key)
}

// UpstreamError is returned for any non-200 answer from the official API.
type UpstreamError struct {
	Status int
	URL    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API error: %d", e.Status)
}

func UpstreamStatus(err error) (int, bool) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Status, true
	}
	return 0, false
}
