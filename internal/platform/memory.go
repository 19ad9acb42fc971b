package platform

import (
	"fmt"
	"sort"
	"sync"

	"github.com/1broseidon/twm/internal/geometry"
	"github.com/1broseidon/twm/internal/tiling"
)

// MemoryBackend is a window system held entirely in memory. It backs
// headless daemons and tests.
type MemoryBackend struct {
	mu           sync.Mutex
	display      tiling.Display
	windows      map[tiling.WindowHandle]geometry.BBox
	active       tiling.WindowHandle
	docksVisible bool
	moves        int
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns a backend with one display and no windows.
func NewMemoryBackend(display tiling.Display) *MemoryBackend {
	return &MemoryBackend{
		display:      display,
		windows:      make(map[tiling.WindowHandle]geometry.BBox),
		docksVisible: true,
	}
}

// OpenWindow adds a window and makes it active.
func (m *MemoryBackend) OpenWindow(handle tiling.WindowHandle, bounds geometry.BBox) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows[handle] = bounds
	m.active = handle
}

// CloseWindow removes a window.
func (m *MemoryBackend) CloseWindow(handle tiling.WindowHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.windows, handle)
	if m.active == handle {
		m.active = 0
	}
}

// DocksVisible reports the last value passed to SetDocksVisible.
func (m *MemoryBackend) DocksVisible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docksVisible
}

// Moves counts successful MoveResize calls.
func (m *MemoryBackend) Moves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moves
}

func (m *MemoryBackend) PrimaryDisplay() (tiling.Display, error) {
	return m.display, nil
}

func (m *MemoryBackend) Displays() ([]tiling.Display, error) {
	return []tiling.Display{m.display}, nil
}

func (m *MemoryBackend) ActiveWindow() (tiling.WindowHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return m.active, nil
}

func (m *MemoryBackend) ListWindows(display tiling.Display) ([]tiling.WindowHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handles := make([]tiling.WindowHandle, 0, len(m.windows))
	for h, b := range m.windows {
		if display.BBox.Contains(b.X+b.Width/2, b.Y+b.Height/2) {
			handles = append(handles, h)
		}
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles, nil
}

func (m *MemoryBackend) WindowBounds(handle tiling.WindowHandle) (geometry.BBox, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.windows[handle]
	if !ok {
		return geometry.BBox{}, fmt.Errorf("bad window 0x%x", uint32(handle))
	}
	return b, nil
}

func (m *MemoryBackend) MoveResize(handle tiling.WindowHandle, bounds geometry.BBox) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[handle]; !ok {
		return fmt.Errorf("bad window 0x%x", uint32(handle))
	}
	m.windows[handle] = bounds
	m.moves++
	return nil
}

func (m *MemoryBackend) FocusWindow(handle tiling.WindowHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[handle]; !ok {
		return fmt.Errorf("bad window 0x%x", uint32(handle))
	}
	m.active = handle
	return nil
}

func (m *MemoryBackend) SetDocksVisible(visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docksVisible = visible
	return nil
}
