//go:build !linux

// Package ipc implements the process, window, and action boundaries.
// This platform has no compositor backend yet; every query degrades to an
// empty partial result and actions report a descriptive error that the
// caller logs and ignores.
package ipc

import (
	"fmt"
	"runtime"

	"switcher/enumerate"
	"switcher/intercept"
)

type Conn struct{}

func New() *Conn { return &Conn{} }

func (c *Conn) Backend() string { return "none" }

func (c *Conn) Windows() ([]enumerate.WindowInfo, error)   { return nil, nil }
func (c *Conn) Processes() ([]enumerate.ProcessInfo, error) { return nil, nil }
func (c *Conn) Badges() (map[string]string, error)          { return nil, nil }

func (c *Conn) Activate(pid int) error  { return errUnsupported("activate") }
func (c *Conn) Hide(pid int) error      { return errUnsupported("hide") }
func (c *Conn) Terminate(pid int) error { return errUnsupported("terminate") }

func (c *Conn) CursorPos() (intercept.Point, error) {
	return intercept.Point{}, errUnsupported("cursorpos")
}

func (c *Conn) Monitor() (width, height int, err error) {
	return 0, 0, errUnsupported("monitor query")
}

func (c *Conn) Subscribe() (<-chan enumerate.ProcessEvent, error) {
	return nil, errUnsupported("process events")
}

func (c *Conn) Close() {}

func errUnsupported(what string) error {
	return fmt.Errorf("%s not supported on %s", what, runtime.GOOS)
}

func Diagnose() (string, error) {
	return "", errUnsupported("window registry")
}
