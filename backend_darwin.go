//go:build darwin

package asynchid

import (
	db "github.com/ardnew/asynchid/internal/backend/darwin"
)

func newPlatformBackend() (platformBackend, error) {
	return db.New()
}
