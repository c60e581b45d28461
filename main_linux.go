//go:build linux

package main

func main() {
	// Set up crash logging early, before flags are parsed
	initCrashLog()
	run()
}
