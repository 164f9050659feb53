package session

import (
	"errors"
	"fmt"

	"github.com/inodb/vibe-seqedit/internal/feature"
	"github.com/inodb/vibe-seqedit/internal/sequence"
)

// Rejection reasons carried in View.Rejection. None of them are fatal: a
// rejected operation leaves the session exactly as it was.
var (
	ErrInvalidResidue      = fmt.Errorf("session: %w", sequence.ErrInvalidResidue)
	ErrLockedBuffer        = errors.New("session: buffer is locked")
	ErrNotFound            = errors.New("session: nothing to apply")
	ErrInactive            = errors.New("session: not editing")
	ErrInvalidFeatureRange = errors.New("session: invalid feature range")
	ErrInvalidFeature      = errors.New("session: invalid feature")
)

// ErrSessionExists is returned when opening a block id that already has a session.
var ErrSessionExists = errors.New("session: block already open")

// featureError maps a feature.Check failure onto a rejection reason.
func featureError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, feature.ErrInvalidRange):
		return ErrInvalidFeatureRange
	default:
		return fmt.Errorf("%w: %w", ErrInvalidFeature, err)
	}
}

// checkFeatures rejects features with a bad strand or type. Features that
// merely fall outside the sequence are left for feature.Filter to drop.
func checkFeatures(features []feature.Feature, length int) error {
	for _, f := range features {
		if err := f.Check(length); err != nil && !errors.Is(err, feature.ErrInvalidRange) {
			return featureError(err)
		}
	}
	return nil
}
