//go:build !linux && !darwin && !windows

package asynchid

import (
	"github.com/ardnew/asynchid/internal/backend/unsupported"
)

func newPlatformBackend() (platformBackend, error) {
	return unsupported.New(), nil
}
