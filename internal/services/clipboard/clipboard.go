// Package clipboard places generated markup on the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility exists on this system.
var ErrUnavailable = errors.New("system clipboard is unavailable")

// Copier copies text to a clipboard.
type Copier interface {
	Copy(text string) error
}

// Service copies to the system clipboard through github.com/atotto/clipboard.
type Service struct{}

// NewService constructs the system clipboard service.
func NewService() *Service {
	return &Service{}
}

// Copy replaces the clipboard contents with text.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

var _ Copier = (*Service)(nil)
