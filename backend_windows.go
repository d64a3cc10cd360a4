//go:build windows

package asynchid

import (
	wb "github.com/ardnew/asynchid/internal/backend/windows"
)

func newPlatformBackend() (platformBackend, error) {
	return wb.New()
}
