//go:build linux

package main

import "github.com/1broseidon/twm/internal/platform"

func openX11Backend(display string) (platform.Backend, func(), error) {
	b, err := platform.NewLinuxBackendFromDisplay(display)
	if err != nil {
		return nil, nil, err
	}
	return b, b.Disconnect, nil
}
