//go:build !linux && !tinygo

package line

import "errors"

// OpenChip is only available on Linux.
func OpenChip(cfg Config, withReady, withSense bool) (*Set, error) {
	return nil, errors.New("line: gpiocdev driver requires linux")
}
