package shutdown

import "testing"

func TestHooksRunOnceInReverseOrder(t *testing.T) {
	var got []int
	OnExit(func() { got = append(got, 1) })
	OnExit(func() { got = append(got, 2) })

	RunHooks()
	RunHooks() // second call is a no-op

	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Fatalf("expected [2 1], got %v", got)
	}
}
