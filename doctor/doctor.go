// Package doctor runs environment diagnostics for the switcher: input tap
// access, window registry reachability, and live hotkey detection.
package doctor

import (
	"fmt"
	"time"

	"switcher/intercept"
	"switcher/ipc"
)

// Run executes the diagnostic checks and returns an exit code
// (0=all pass, 1=any fail).
func Run() int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("switcher doctor - system diagnostics")
	fmt.Println("====================================")

	allPass := true

	if !checkInputAccess() {
		allPass = false
	}
	if !checkWindowRegistry() {
		allPass = false
	}
	if allPass && !checkHotkey() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See details above.")
	}

	if allPass {
		return 0
	}
	return 1
}

func checkInputAccess() bool {
	fmt.Println()
	fmt.Println("[1/3] Input tap access")

	msg, err := intercept.Diagnose()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}

func checkWindowRegistry() bool {
	fmt.Println()
	fmt.Println("[2/3] Window registry")

	msg, err := ipc.Diagnose()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}
	fmt.Printf("  PASS: %s\n", msg)
	return true
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[3/3] Hotkey detection")

	if !isInteractive() {
		fmt.Println("  SKIP: not running in a terminal")
		return true
	}
	fmt.Println("Press Alt+Tab...")

	var flag intercept.ActiveFlag
	svc := intercept.New(&flag, nil)
	if err := svc.Start(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer svc.Stop()

	select {
	case <-svc.PrimaryHotkey():
		flag.Set(false)
		fmt.Println("  PASS: hotkey detected")
		// The tap may leave the terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}
