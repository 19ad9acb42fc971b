package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/twm/internal/config"
	"github.com/1broseidon/twm/internal/platform"
)

// Dispatcher runs a bound action.
type Dispatcher interface {
	Dispatch(action config.Action) error
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// ErrUnsupported is returned when the backend has no X11 connection to grab
// keys on.
var ErrUnsupported = errors.New("hotkeys: backend does not support global hotkeys")

// Handler manages global keyboard shortcuts
type Handler struct {
	xu         *xgbutil.XUtil
	root       xproto.Window
	dispatcher Dispatcher
	logger     *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a hotkey handler. It returns ErrUnsupported for
// backends without an X11 connection.
func NewHandler(backend platform.Backend, dispatcher Dispatcher, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, ErrUnsupported
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:         xu,
		root:       accessor.RootWindow(),
		dispatcher: dispatcher,
		logger:     logger,
	}, nil
}

// Register binds every action in bindings. Failing bindings are reported
// together; the others stay registered.
func (h *Handler) Register(bindings map[config.Action]string) error {
	actions := make([]config.Action, 0, len(bindings))
	for a := range bindings {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

	var errs []error
	for _, action := range actions {
		seq := bindings[action]
		if err := h.RegisterFunc(seq, h.dispatchFunc(action)); err != nil {
			errs = append(errs, fmt.Errorf("bind %s to %q: %w", action, seq, err))
			continue
		}
		h.logger.Debug("registered hotkey", "action", action, "keys", seq)
	}
	return errors.Join(errs...)
}

// Reset drops every registered hotkey.
func (h *Handler) Reset() {
	keybind.Detach(h.xu, h.root)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func (h *Handler) dispatchFunc(action config.Action) func() {
	return func() {
		h.logger.Debug("hotkey triggered", "action", action)
		if err := h.dispatcher.Dispatch(action); err != nil {
			h.logger.Warn("hotkey action failed", "action", action, "error", err)
		}
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns every combination of the lock modifiers in base,
// including the empty one.
func ignoreMasks(base []uint16) []uint16 {
	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	sort.Slice(ignore, func(i, j int) bool { return ignore[i] < ignore[j] })
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
