// Package advisory talks to the optional AI collaborator. Callers treat every
// failure as recoverable and fall back to a neutral answer.
package advisory

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable is returned when no provider is configured.
	ErrUnavailable = errors.New("advisory: provider unavailable")
	// ErrEmptyResponse is returned when the provider answered without text.
	ErrEmptyResponse = errors.New("advisory: empty response")
	// ErrBlocked is returned when the provider refused to answer.
	ErrBlocked = errors.New("advisory: response blocked")
)

// Advisor completes a free-text prompt.
type Advisor interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Provider() string
	Model() string
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Complete(context.Context, string) (string, error) { return "", ErrUnavailable }
func (Disabled) Provider() string                                 { return "none" }
func (Disabled) Model() string                                    { return "" }
