//go:build !linux

package intercept

import (
	"fmt"
	"sync"

	"golang.design/x/hotkey"
)

// xService registers OS-level hotkeys via golang.design/x/hotkey. The
// primary pair (modifier+Tab, modifier+Shift+Tab) stays registered for the
// service's lifetime; the secondary tier comes and goes with the overlay.
// Pointer taps are not available through this backend, so the pointer
// channel never fires here.
type xService struct {
	flag *ActiveFlag

	primary   chan struct{}
	secondary chan Key
	modUp     chan struct{}
	shiftMod  chan struct{}
	pointer   chan Point

	hkForward *hotkey.Hotkey
	hkReverse *hotkey.Hotkey

	mu     sync.Mutex
	active []*hotkey.Hotkey
	done   chan struct{}

	stopOnce sync.Once
}

var activeTier = []struct {
	code hotkey.Key
	key  Key
}{
	{hotkey.KeyEscape, KeyDismiss},
	{hotkey.KeyReturn, KeyAccept},
	{hotkey.KeyLeft, KeyLeft},
	{hotkey.KeyRight, KeyRight},
	{hotkey.KeyUp, KeyUp},
	{hotkey.KeyDown, KeyDown},
	{hotkey.KeyH, KeyHide},
	{hotkey.KeyQ, KeyQuit},
}

// New creates the hotkey-backed service. cursor is unused on this backend.
func New(flag *ActiveFlag, cursor CursorFunc) Service {
	return &xService{
		flag:      flag,
		primary:   make(chan struct{}, 1),
		secondary: make(chan Key, 8),
		modUp:     make(chan struct{}, 1),
		shiftMod:  make(chan struct{}, 1),
		pointer:   make(chan Point, 1),
	}
}

func (s *xService) Start() error {
	s.hkForward = hotkey.New(primaryMods, hotkey.KeyTab)
	if err := s.hkForward.Register(); err != nil {
		return fmt.Errorf("registering switch hotkey: %w", err)
	}
	s.hkReverse = hotkey.New(reverseMods, hotkey.KeyTab)
	if err := s.hkReverse.Register(); err != nil {
		s.hkForward.Unregister()
		return fmt.Errorf("registering reverse hotkey: %w", err)
	}

	go func() {
		for {
			<-s.hkForward.Keydown()
			// Flag up before the event crosses to the owning loop.
			s.flag.Set(true)
			signal(s.primary)
		}
	}()
	go func() {
		for {
			<-s.hkForward.Keyup()
			if s.flag.Get() {
				signal(s.modUp)
			}
		}
	}()
	go func() {
		for {
			<-s.hkReverse.Keydown()
			if s.flag.Get() {
				signal(s.shiftMod)
			}
		}
	}()
	return nil
}

func (s *xService) Stop() {
	s.stopOnce.Do(func() {
		s.UnregisterActiveHotkeys()
		if s.hkForward != nil {
			s.hkForward.Unregister()
		}
		if s.hkReverse != nil {
			s.hkReverse.Unregister()
		}
	})
}

func (s *xService) RegisterActiveHotkeys() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return nil
	}
	s.done = make(chan struct{})
	for _, t := range activeTier {
		hk := hotkey.New(nil, t.code)
		if err := hk.Register(); err != nil {
			// Partial tier still works; the missed key keeps its
			// normal meaning.
			continue
		}
		s.active = append(s.active, hk)
		go s.forward(hk, t.key, s.done)
	}
	return nil
}

func (s *xService) UnregisterActiveHotkeys() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return
	}
	close(s.done)
	for _, hk := range s.active {
		hk.Unregister()
	}
	s.active = nil
}

func (s *xService) forward(hk *hotkey.Hotkey, k Key, done <-chan struct{}) {
	for {
		select {
		case <-hk.Keydown():
			if s.flag.Get() {
				select {
				case s.secondary <- k:
				default:
				}
			}
		case <-done:
			return
		}
	}
}

func (s *xService) PrimaryHotkey() <-chan struct{}            { return s.primary }
func (s *xService) SecondaryKey() <-chan Key                  { return s.secondary }
func (s *xService) ModifierReleased() <-chan struct{}         { return s.modUp }
func (s *xService) SecondaryModifierPressed() <-chan struct{} { return s.shiftMod }
func (s *xService) PointerDown() <-chan Point                 { return s.pointer }

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Diagnose reports whether hotkey registration is possible in principle.
func Diagnose() (string, error) {
	return "global hotkey support available (Alt+Tab)", nil
}
