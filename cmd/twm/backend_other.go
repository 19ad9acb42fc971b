//go:build !linux

package main

import (
	"errors"

	"github.com/1broseidon/twm/internal/platform"
)

func openX11Backend(string) (platform.Backend, func(), error) {
	return nil, nil, errors.New("the X11 backend is only built on linux; use --headless")
}
