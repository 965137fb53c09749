//go:build !windows

package mixer

import (
	"fmt"

	"gamerig/internal/domain"
)

// The vendor remote-control library only ships for windows
func loadLibrary(path string) (remoteLibrary, error) {
	return nil, fmt.Errorf("mixer remote library: %w", domain.ErrUnsupported)
}
