package intercept

import "sync/atomic"

// FakeService drives the state machine from tests and the headless test
// mode. Sim calls mirror the delivery-side ordering contract: the flag
// goes up before the primary event is queued.
type FakeService struct {
	flag *ActiveFlag

	primary   chan struct{}
	secondary chan Key
	modUp     chan struct{}
	shiftMod  chan struct{}
	pointer   chan Point

	started    atomic.Bool
	activeTier atomic.Bool
}

func NewFake(flag *ActiveFlag) *FakeService {
	return &FakeService{
		flag:      flag,
		primary:   make(chan struct{}, 1),
		secondary: make(chan Key, 8),
		modUp:     make(chan struct{}, 1),
		shiftMod:  make(chan struct{}, 1),
		pointer:   make(chan Point, 1),
	}
}

func (f *FakeService) Start() error {
	f.started.Store(true)
	return nil
}

func (f *FakeService) Stop() { f.started.Store(false) }

func (f *FakeService) RegisterActiveHotkeys() error {
	f.activeTier.Store(true)
	return nil
}

func (f *FakeService) UnregisterActiveHotkeys() { f.activeTier.Store(false) }

// ActiveHotkeysRegistered reports whether the secondary tier is registered.
func (f *FakeService) ActiveHotkeysRegistered() bool { return f.activeTier.Load() }

func (f *FakeService) PrimaryHotkey() <-chan struct{}            { return f.primary }
func (f *FakeService) SecondaryKey() <-chan Key                  { return f.secondary }
func (f *FakeService) ModifierReleased() <-chan struct{}         { return f.modUp }
func (f *FakeService) SecondaryModifierPressed() <-chan struct{} { return f.shiftMod }
func (f *FakeService) PointerDown() <-chan Point                 { return f.pointer }

func (f *FakeService) SimPrimary() {
	f.flag.Set(true)
	f.primary <- struct{}{}
}

func (f *FakeService) SimKey(k Key)          { f.secondary <- k }
func (f *FakeService) SimModifierReleased()  { f.modUp <- struct{}{} }
func (f *FakeService) SimSecondaryModifier() { f.shiftMod <- struct{}{} }
func (f *FakeService) SimPointerDown(p Point) {
	f.pointer <- p
}
