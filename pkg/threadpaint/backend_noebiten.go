//go:build noebiten

package threadpaint

import (
	"fmt"

	"github.com/opd-ai/go-threadpaint/internal/config"
)

// openWindow fails in noebiten builds; use the headless or x11 backend.
func (p *painterImpl) openWindow(string, int, int, config.InputConfig) (*surfaceHandle, error) {
	return nil, fmt.Errorf("%w: %s (built with noebiten)", ErrBackendUnavailable, BackendEbiten)
}
