//go:build linux

// Package ipc implements the process, window, and action boundaries over
// the Hyprland IPC: queries shell out to hyprctl's JSON mode, lifecycle
// notifications stream from the compositor's event socket.
package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"switcher/enumerate"
	"switcher/intercept"
)

type client struct {
	Address string `json:"address"`
	Mapped  bool   `json:"mapped"`
	Hidden  bool   `json:"hidden"`
	At      [2]int `json:"at"`
	Size    [2]int `json:"size"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	PID     int    `json:"pid"`
}

type Conn struct {
	mu      sync.Mutex
	addrPID map[string]int

	sock   net.Conn
	events chan enumerate.ProcessEvent
	once   sync.Once
}

func New() *Conn {
	return &Conn{addrPID: make(map[string]int)}
}

// Backend names the IPC flavor for diagnostics.
func (c *Conn) Backend() string { return "hyprland" }

func query(cmd string, out any) error {
	raw, err := exec.Command("hyprctl", "-j", cmd).Output()
	if err != nil {
		return fmt.Errorf("hyprctl %s: %w", cmd, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("hyprctl %s: %w", cmd, err)
	}
	return nil
}

func dispatch(args ...string) error {
	cmd := exec.Command("hyprctl", append([]string{"dispatch"}, args...)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("hyprctl dispatch %s: %w", strings.Join(args, " "), err)
	}
	return nil
}

func (c *Conn) clients() ([]client, error) {
	var list []client
	if err := query("clients", &list); err != nil {
		return nil, err
	}
	c.mu.Lock()
	for _, cl := range list {
		c.addrPID[cl.Address] = cl.PID
	}
	c.mu.Unlock()
	return list, nil
}

// Windows lists window descriptors. Hyprland clients all live on the
// normal layer; layer-shell surfaces (bars, menus) are not clients and
// never appear here.
func (c *Conn) Windows() ([]enumerate.WindowInfo, error) {
	list, err := c.clients()
	if err != nil {
		return nil, err
	}
	wins := make([]enumerate.WindowInfo, 0, len(list))
	for _, cl := range list {
		wins = append(wins, enumerate.WindowInfo{
			OwnerPID: cl.PID,
			Layer:    0,
			Bounds: enumerate.Rect{
				X: cl.At[0], Y: cl.At[1],
				Width: cl.Size[0], Height: cl.Size[1],
			},
			OnScreen: cl.Mapped && !cl.Hidden,
		})
	}
	return wins, nil
}

// Processes lists one entry per owning pid, collapsing multi-window apps.
func (c *Conn) Processes() ([]enumerate.ProcessInfo, error) {
	list, err := c.clients()
	if err != nil {
		return nil, err
	}
	seen := make(map[int]int) // pid -> index in procs
	var procs []enumerate.ProcessInfo
	for _, cl := range list {
		name := cl.Class
		if name == "" {
			name = cl.Title
		}
		if i, ok := seen[cl.PID]; ok {
			// Any visible window makes the process visible.
			if cl.Mapped && !cl.Hidden {
				procs[i].Hidden = false
			}
			continue
		}
		seen[cl.PID] = len(procs)
		procs = append(procs, enumerate.ProcessInfo{
			PID:      cl.PID,
			Name:     name,
			BundleID: cl.Class,
			Icon:     cl.Class, // freedesktop theme icon name
			Policy:   enumerate.PolicyRegular,
			Hidden:   !cl.Mapped || cl.Hidden,
		})
	}
	return procs, nil
}

// Badges is empty on this backend; there is no dock badge surface.
func (c *Conn) Badges() (map[string]string, error) {
	return nil, nil
}

func (c *Conn) Activate(pid int) error {
	return dispatch("focuswindow", fmt.Sprintf("pid:%d", pid))
}

func (c *Conn) Hide(pid int) error {
	return dispatch("movetoworkspacesilent", fmt.Sprintf("special:hidden,pid:%d", pid))
}

func (c *Conn) Terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// CursorPos reports the pointer position in screen coordinates.
func (c *Conn) CursorPos() (intercept.Point, error) {
	var pos struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := query("cursorpos", &pos); err != nil {
		return intercept.Point{}, err
	}
	return intercept.Point{X: pos.X, Y: pos.Y}, nil
}

// Monitor reports the focused monitor's size in screen coordinates.
func (c *Conn) Monitor() (width, height int, err error) {
	var mons []struct {
		Width   int  `json:"width"`
		Height  int  `json:"height"`
		Focused bool `json:"focused"`
	}
	if err := query("monitors", &mons); err != nil {
		return 0, 0, err
	}
	for _, m := range mons {
		if m.Focused {
			return m.Width, m.Height, nil
		}
	}
	if len(mons) > 0 {
		return mons[0].Width, mons[0].Height, nil
	}
	return 0, 0, fmt.Errorf("no monitors reported")
}

// Subscribe streams activation/termination notifications from the
// compositor's event socket.
func (c *Conn) Subscribe() (<-chan enumerate.ProcessEvent, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return nil, fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE not set (not running under Hyprland?)")
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/run/user/" + fmt.Sprint(os.Getuid())
	}
	path := filepath.Join(runtimeDir, "hypr", sig, ".socket2.sock")

	sock, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("event socket: %w", err)
	}
	c.sock = sock
	c.events = make(chan enumerate.ProcessEvent, 16)

	go c.readEvents()
	return c.events, nil
}

func (c *Conn) Close() {
	c.once.Do(func() {
		if c.sock != nil {
			c.sock.Close()
		}
	})
}

func (c *Conn) readEvents() {
	defer close(c.events)
	scanner := bufio.NewScanner(c.sock)
	for scanner.Scan() {
		name, data, ok := strings.Cut(scanner.Text(), ">>")
		if !ok {
			continue
		}
		switch name {
		case "activewindowv2":
			addr := "0x" + strings.TrimPrefix(data, "0x")
			pid, ok := c.lookupPID(addr)
			if !ok {
				continue
			}
			c.events <- enumerate.ProcessEvent{PID: pid, Kind: enumerate.ProcessActivated}
		case "closewindow":
			addr := "0x" + strings.TrimPrefix(data, "0x")
			c.mu.Lock()
			pid, ok := c.addrPID[addr]
			delete(c.addrPID, addr)
			c.mu.Unlock()
			if ok {
				c.events <- enumerate.ProcessEvent{PID: pid, Kind: enumerate.ProcessTerminated}
			}
		}
	}
}

func (c *Conn) lookupPID(addr string) (int, bool) {
	c.mu.Lock()
	pid, ok := c.addrPID[addr]
	c.mu.Unlock()
	if ok {
		return pid, true
	}
	// New window since the last query; refresh the address cache.
	if _, err := c.clients(); err != nil {
		return 0, false
	}
	c.mu.Lock()
	pid, ok = c.addrPID[addr]
	c.mu.Unlock()
	return pid, ok
}

// Diagnose verifies hyprctl is reachable.
func Diagnose() (string, error) {
	var list []client
	if err := query("clients", &list); err != nil {
		return "", err
	}
	return fmt.Sprintf("hyprctl ok, %d client(s)", len(list)), nil
}
