package enumerate

// Fake registries for tests and the headless test mode.

type FakeProcesses struct {
	List []ProcessInfo
	Err  error
}

func (f *FakeProcesses) Processes() ([]ProcessInfo, error) { return f.List, f.Err }

type FakeWindows struct {
	List []WindowInfo
	Err  error
}

func (f *FakeWindows) Windows() ([]WindowInfo, error) { return f.List, f.Err }

type FakeBadges struct {
	Map map[string]string
	Err error
}

func (f *FakeBadges) Badges() (map[string]string, error) { return f.Map, f.Err }

// FakeEvents is a ProcessEventSource driven by Sim calls.
type FakeEvents struct {
	ch chan ProcessEvent
}

func NewFakeEvents() *FakeEvents {
	return &FakeEvents{ch: make(chan ProcessEvent, 16)}
}

func (f *FakeEvents) Subscribe() (<-chan ProcessEvent, error) { return f.ch, nil }
func (f *FakeEvents) Close()                                  { close(f.ch) }

func (f *FakeEvents) SimActivated(pid int) {
	f.ch <- ProcessEvent{PID: pid, Kind: ProcessActivated}
}

func (f *FakeEvents) SimTerminated(pid int) {
	f.ch <- ProcessEvent{PID: pid, Kind: ProcessTerminated}
}
