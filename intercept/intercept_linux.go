//go:build linux

package intercept

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
)

const (
	evKey      = 1
	keyPress   = 1
	keyRelease = 0

	keyEsc    = 1
	keyTab    = 15
	keyQ      = 16
	keyEnter  = 28
	keyH      = 35
	keyLShift = 42
	keyRShift = 54
	keyLAlt   = 56
	keyRAlt   = 100
	keyUp     = 103
	keyLeft   = 105
	keyRight  = 106
	keyDown   = 108
	btnLeft   = 272
)

// input_event is 24 bytes on 64-bit Linux:
// timeval (16 bytes) + type (2) + code (2) + value (4)
const inputEventSize = 24

// EVIOCGRAB gives this process exclusive delivery of a device's events, so
// active-only keys do not leak into the application under the overlay.
const eviocgrab = 0x40044590

var secondaryKeys = map[uint16]Key{
	keyEsc:   KeyDismiss,
	keyEnter: KeyAccept,
	keyLeft:  KeyLeft,
	keyRight: KeyRight,
	keyUp:    KeyUp,
	keyDown:  KeyDown,
	keyH:     KeyHide,
	keyQ:     KeyQuit,
}

type evdevService struct {
	flag   *ActiveFlag
	cursor CursorFunc

	primary   chan struct{}
	secondary chan Key
	modUp     chan struct{}
	shiftMod  chan struct{}
	pointer   chan Point

	keyboards []*os.File
	mice      []*os.File
	stop      chan struct{}
	once      sync.Once

	activeKeys atomic.Bool
}

// New creates the evdev-backed service (reads /dev/input directly).
// Requires the user to be in the 'input' group. The primary hotkey is
// Alt+Tab; Shift while Alt is held steps backwards.
func New(flag *ActiveFlag, cursor CursorFunc) Service {
	return &evdevService{
		flag:      flag,
		cursor:    cursor,
		primary:   make(chan struct{}, 1),
		secondary: make(chan Key, 8),
		modUp:     make(chan struct{}, 1),
		shiftMod:  make(chan struct{}, 1),
		pointer:   make(chan Point, 1),
	}
}

func (s *evdevService) Start() error {
	keyboards, err := findDevices(isKeyboard)
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	s.stop = make(chan struct{})

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		s.keyboards = append(s.keyboards, f)
		go s.readKeys(f)
	}
	if len(s.keyboards) == 0 {
		return fmt.Errorf("could not open any keyboard device (run: sudo usermod -aG input $USER, then re-login)")
	}

	// Pointer taps are best-effort; keyboard-only operation still works.
	if mice, err := findDevices(isMouse); err == nil {
		for _, path := range mice {
			f, err := os.Open(path)
			if err != nil {
				continue
			}
			s.mice = append(s.mice, f)
			go s.readButtons(f)
		}
	}

	return nil
}

func (s *evdevService) Stop() {
	s.once.Do(func() {
		if s.stop != nil {
			close(s.stop)
		}
		s.UnregisterActiveHotkeys()
		for _, f := range s.keyboards {
			f.Close()
		}
		for _, f := range s.mice {
			f.Close()
		}
	})
}

// RegisterActiveHotkeys starts swallowing the secondary-key tier by
// grabbing keyboard devices exclusively. Best effort: a device that
// refuses the grab still reports events, they just also reach the
// foreground application.
func (s *evdevService) RegisterActiveHotkeys() error {
	s.activeKeys.Store(true)
	for _, f := range s.keyboards {
		grab(f, 1)
	}
	return nil
}

func (s *evdevService) UnregisterActiveHotkeys() {
	s.activeKeys.Store(false)
	for _, f := range s.keyboards {
		grab(f, 0)
	}
}

func (s *evdevService) PrimaryHotkey() <-chan struct{}            { return s.primary }
func (s *evdevService) SecondaryKey() <-chan Key                  { return s.secondary }
func (s *evdevService) ModifierReleased() <-chan struct{}         { return s.modUp }
func (s *evdevService) SecondaryModifierPressed() <-chan struct{} { return s.shiftMod }
func (s *evdevService) PointerDown() <-chan Point                 { return s.pointer }

func (s *evdevService) readKeys(f *os.File) {
	buf := make([]byte, inputEventSize*16)
	var altHeld, shiftHeld bool

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey {
				continue
			}

			pressed := evValue == keyPress
			released := evValue == keyRelease

			switch evCode {
			case keyLAlt, keyRAlt:
				altHeld = pressed || (!released && altHeld)
				if released && s.flag.Get() {
					signal(s.modUp)
				}
			case keyLShift, keyRShift:
				shiftHeld = pressed || (!released && shiftHeld)
				if pressed && altHeld && s.flag.Get() {
					signal(s.shiftMod)
				}
			case keyTab:
				if pressed && altHeld && !shiftHeld {
					// Flag up before the event crosses to the owning
					// loop; a fast-following key press must see it.
					s.flag.Set(true)
					signal(s.primary)
				}
			default:
				if pressed && s.flag.Get() && s.activeKeys.Load() {
					if k, ok := secondaryKeys[evCode]; ok {
						select {
						case s.secondary <- k:
						default:
						}
					}
				}
			}
		}
	}
}

func (s *evdevService) readButtons(f *os.File) {
	buf := make([]byte, inputEventSize*16)

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		n, err := f.Read(buf)
		if err != nil {
			return
		}

		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			evType := binary.LittleEndian.Uint16(buf[i+16:])
			evCode := binary.LittleEndian.Uint16(buf[i+18:])
			evValue := int32(binary.LittleEndian.Uint32(buf[i+20:]))

			if evType != evKey || evCode != btnLeft || evValue != keyPress {
				continue
			}
			if !s.flag.Get() || s.cursor == nil {
				continue
			}
			p, err := s.cursor()
			if err != nil {
				continue
			}
			select {
			case s.pointer <- p:
			default:
			}
		}
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func grab(f *os.File, on uintptr) {
	syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), eviocgrab, on)
}

func findDevices(match func(string) bool) ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}

	var devices []string
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "event") {
			continue
		}
		if match(e.Name()) {
			devices = append(devices, filepath.Join("/dev/input", e.Name()))
		}
	}
	return devices, nil
}

func isKeyboard(eventName string) bool {
	caps, err := readCaps(eventName, "key")
	if err != nil {
		return false
	}
	return len(caps) > 10
}

func isMouse(eventName string) bool {
	caps, err := readCaps(eventName, "rel")
	if err != nil {
		return false
	}
	return caps != "" && caps != "0"
}

func readCaps(eventName, kind string) (string, error) {
	path := filepath.Join("/sys/class/input", eventName, "device", "capabilities", kind)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Diagnose checks whether the input tap can acquire devices at all.
func Diagnose() (string, error) {
	keyboards, err := findDevices(isKeyboard)
	if err != nil {
		return "", fmt.Errorf("cannot scan input devices: %w", err)
	}
	if len(keyboards) == 0 {
		return "", fmt.Errorf("no keyboard devices found (is user in 'input' group?)")
	}

	var opened string
	for _, path := range keyboards {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			opened = path
			break
		}
	}
	if opened == "" {
		return "", fmt.Errorf("found %d keyboard(s) but cannot open any (run: sudo usermod -aG input $USER)", len(keyboards))
	}

	return fmt.Sprintf("%d keyboard(s) found, opened %s", len(keyboards), opened), nil
}
