package hotkeys

import (
	"errors"
	"testing"

	"github.com/1broseidon/twm/internal/geometry"
	"github.com/1broseidon/twm/internal/platform"
	"github.com/1broseidon/twm/internal/tiling"
)

func TestIgnoreMasks(t *testing.T) {
	got := ignoreMasks([]uint16{2, 16})
	want := []uint16{0, 2, 16, 18}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNewHandler_HeadlessBackendUnsupported(t *testing.T) {
	backend := platform.NewMemoryBackend(tiling.Display{BBox: geometry.NewBBox(0, 0, 10, 10)})

	_, err := NewHandler(backend, nil, nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
