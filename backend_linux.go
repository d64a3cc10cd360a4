//go:build linux

package asynchid

import (
	lb "github.com/ardnew/asynchid/internal/backend/linux"
)

func newPlatformBackend() (platformBackend, error) {
	return lb.New()
}
