// Package storeerr translates engine errors into domain errors.
package storeerr

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/shelfdex/internal/db"
	"github.com/kailas-cloud/shelfdex/internal/domain"
)

// Wrap annotates err with op and attaches the matching domain sentinel:
// transport failures become ErrStoreUnavailable and rejected queries
// become ErrMalformedQuery. Other errors are only annotated.
func Wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUnavailable(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	case errors.Is(err, db.ErrInvalidQuery):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrMalformedQuery, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
