package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/allan-simon/go-singleinstance"
	"github.com/atotto/clipboard"

	"switcher/doctor"
	"switcher/enumerate"
	"switcher/grid"
	"switcher/intercept"
	"switcher/ipc"
	"switcher/log"
	"switcher/machine"
	"switcher/nativetoggle"
	"switcher/shutdown"
	"switcher/tray"
)

var version = "dev"

const (
	overlayCellWidth  = 180
	overlayCellHeight = 120
)

var (
	mach         *machine.Machine
	shutdownOnce sync.Once
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if mach != nil {
			if n := mach.Switches(); n > 0 {
				log.SessionEnd(n)
			}
		}
		shutdown.RunHooks()
		log.Close()
		tray.Quit()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

// initCrashLog points crash output somewhere safe before the log directory
// is known; run() re-points it once flags are parsed.
func initCrashLog() {
	path := filepath.Join(os.TempDir(), "switcher_crash.txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		debug.SetCrashOutput(f, debug.CrashOptions{})
	}
}

func run() {
	columnsFlag := flag.Int("columns", 5, "Overlay items per row")
	altIconsFlag := flag.Bool("alticons", false, "Use the alternate status icon style")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	// The native toggle and interception teardown register through
	// shutdown.OnExit; this covers the panic path, signals go through
	// gracefulShutdown.
	defer shutdown.RunHooks()

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("switcher %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run())
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	if *testFlag {
		runTestMode(*columnsFlag)
		return
	}

	lockFilePath := filepath.Join(os.TempDir(), fmt.Sprintf("switcher-%s.lock", os.Getenv("USER")))
	if _, err := singleinstance.CreateLockFile(lockFilePath); err != nil {
		fmt.Fprintln(os.Stderr, "switcher is already running")
		os.Exit(0)
	}

	conn := ipc.New()

	nt := nativetoggle.New()
	if err := nt.Suppress(); err != nil {
		log.Warnf("native switch hotkey not suppressed: %v", err)
	}
	shutdown.OnExit(func() {
		if err := nt.Restore(); err != nil {
			log.Warnf("native switch hotkey not restored: %v", err)
		}
	})

	rec := enumerate.NewRecency()
	if err := rec.Observe(conn); err != nil {
		log.Warnf("process notifications unavailable, ranking disabled: %v", err)
	}
	shutdown.OnExit(rec.Stop)

	enum := enumerate.New(conn, conn, conn, rec, os.Getpid())

	var activeFlag intercept.ActiveFlag
	svc := intercept.New(&activeFlag, conn.CursorPos)
	interceptErr := svc.Start()
	if interceptErr != nil {
		// Permission problems disable interception but never kill the
		// process; the tray and logs stay up for diagnosis.
		log.Errorf("input interception unavailable: %v", interceptErr)
		fmt.Fprintf(os.Stderr, "Warning: input interception unavailable: %v\n", interceptErr)
		fmt.Fprintln(os.Stderr, "Run with -doctor for details")
	}
	shutdown.OnExit(svc.Stop)

	var sink machine.EventSink
	if *tuiFlag {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram()
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()

		<-tuiReady
		sink = tuiSink{}

		if interceptErr != nil {
			logToTUI("input interception unavailable: %v (run with -doctor)", interceptErr)
		}
	}

	mach = machine.New(svc, enum, conn, sink, &activeFlag, machine.Config{
		Columns: *columnsFlag,
		Metrics: overlayMetrics(conn, *columnsFlag),
		Cursor:  conn.CursorPos,
	})
	shutdown.OnExit(mach.Stop)

	tray.SetIconVariant(*altIconsFlag)
	trayQuit := tray.Init()
	tray.OnCopyLast(func() {
		if name := mach.LastCommitted(); name != "" {
			clipboard.WriteAll(name)
		}
	})
	tray.OnEnabled(mach.SetEnabled)

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-trayQuit:
		}
		gracefulShutdown()
	}()

	log.SessionStart(conn.Backend(), *columnsFlag)
	mach.Run()
}

// overlayMetrics centers the hit-test geometry on the focused monitor.
// Without a monitor query the grid anchors at the origin; pointer commits
// then only work for an overlay drawn there too.
func overlayMetrics(conn *ipc.Conn, columns int) grid.Metrics {
	m := grid.Metrics{CellWidth: overlayCellWidth, CellHeight: overlayCellHeight}
	w, h, err := conn.Monitor()
	if err != nil {
		return m
	}
	m.OriginX = (w - columns*overlayCellWidth) / 2
	m.OriginY = (h - overlayCellHeight) / 2
	return m
}
