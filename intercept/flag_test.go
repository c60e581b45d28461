package intercept

import (
	"testing"
	"time"
)

func TestActiveFlag(t *testing.T) {
	var f ActiveFlag
	if f.Get() {
		t.Fatal("flag should start false")
	}
	f.Set(true)
	if !f.Get() {
		t.Fatal("flag should read true after Set(true)")
	}
	f.Set(false)
	if f.Get() {
		t.Fatal("flag should read false after Set(false)")
	}
}

// The delivery side must raise the flag before the event is observable,
// so a consumer that reads the flag on receipt never sees it down.
func TestFlagRaisedBeforePrimaryDelivery(t *testing.T) {
	var f ActiveFlag
	svc := NewFake(&f)
	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Stop()

	for i := 0; i < 100; i++ {
		go svc.SimPrimary()
		select {
		case <-svc.PrimaryHotkey():
			if !f.Get() {
				t.Fatalf("iteration %d: primary delivered with flag down", i)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("primary hotkey never delivered")
		}
		f.Set(false)
	}
}

func TestRegisterActiveHotkeys(t *testing.T) {
	var f ActiveFlag
	svc := NewFake(&f)
	if err := svc.RegisterActiveHotkeys(); err != nil {
		t.Fatalf("RegisterActiveHotkeys: %v", err)
	}
	if !svc.ActiveHotkeysRegistered() {
		t.Fatal("active tier should be registered")
	}
	svc.UnregisterActiveHotkeys()
	if svc.ActiveHotkeysRegistered() {
		t.Fatal("active tier should be unregistered")
	}
}
