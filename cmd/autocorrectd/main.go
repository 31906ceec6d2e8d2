// Command autocorrectd runs the background autocorrect daemon: it tracks
// keystrokes, corrects misspelled words in place as they are committed,
// and exposes a loopback control plane for the tray UI and CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quietkey/autocorrectd/internal/config"
	"github.com/quietkey/autocorrectd/internal/consolehook"
	"github.com/quietkey/autocorrectd/internal/control"
	"github.com/quietkey/autocorrectd/internal/dictionary"
	"github.com/quietkey/autocorrectd/internal/engine"
	"github.com/quietkey/autocorrectd/internal/ports"
	"github.com/quietkey/autocorrectd/internal/symspell"
	"github.com/quietkey/autocorrectd/internal/tracker"
)

// version is set at build time via -ldflags; "dev" otherwise.
var version = "dev"

const (
	exitOK          = 0
	exitRuntimeErr  = 1
	exitStartupErr  = 2
	controlAddr     = "127.0.0.1:47663"
	configFileName  = "config.toml"
	apiKeyFileName  = "apikey"
	personalFile    = "personal_dictionary.txt"
	builtinDictPath = "dictionary/words.txt"
)

func main() {
	var (
		disabled    bool
		dictPath    string
		console     bool
		checkUpdate bool
	)

	root := &cobra.Command{
		Use:     "autocorrectd",
		Short:   "Background keystroke autocorrect daemon",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), disabled, dictPath, console, checkUpdate)
		},
	}
	root.Flags().BoolVar(&disabled, "disabled", false, "start with corrections paused")
	root.Flags().StringVar(&dictPath, "dictionary", "", "path to a dictionary file, loaded ahead of the built-in word list")
	root.Flags().BoolVar(&console, "console", false, "run against stdin/stdout instead of a real OS keystroke hook")
	root.Flags().BoolVar(&checkUpdate, "check-update", false, "report whether update checks are available in this build and exit")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitStartupErr)
	}
}

func run(ctx context.Context, disabled bool, dictOverride string, console, checkUpdate bool) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if checkUpdate {
		fmt.Println("update checks are not available in this build")
		return nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	cfg, err := config.Load(filepath.Join(configDir, "autocorrect", configFileName))
	if err != nil {
		slog.Warn("startup: using default configuration", "err", err)
	}

	if !console {
		slog.Warn("startup: no platform keystroke hook is linked into this build, running in console mode against stdin/stdout")
	}
	eng := buildEngine(cfg)
	eng.SetEnabled(cfg.EnabledByDefault && !disabled)

	apiKeyPath := filepath.Join(os.TempDir(), apiKeyFileName)
	ctrl, err := control.NewServer(controlAddr, eng, apiKeyPath, version)
	if err != nil {
		slog.Error("startup: control plane", "err", err)
		os.Exit(exitStartupErr)
	}

	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The dictionary load and index build happen on their own goroutine,
	// per spec.md 4.J: the engine stays in pass-through mode (eng.idx is
	// nil until SetIndex) while this runs, so the control plane, the
	// correction worker, and the keystroke hook all start immediately
	// rather than waiting on disk I/O.
	go buildIndexInBackground(eng, cfg, dictOverride)

	workerDone := make(chan struct{})
	go func() {
		eng.Run(runCtx)
		close(workerDone)
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Run(runCtx) }()

	hook := consolehook.New(os.Stdin)
	go func() {
		if err := hook.Listen(runCtx, makeHookHandler(eng)); err != nil && err != context.Canceled {
			slog.Warn("keystroke hook stopped", "err", err)
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("control plane stopped", "err", err)
			os.Exit(exitRuntimeErr)
		}
	case <-runCtx.Done():
	}
	<-workerDone
	return nil
}

// buildIndexInBackground loads the dictionary and builds the SymSpell
// index off the startup path, then hands it to the already-running
// engine via SetIndex.
func buildIndexInBackground(eng *engine.Engine, cfg config.Config, dictOverride string) {
	configDir, _ := os.UserConfigDir()
	exeDir := "."
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	entries, err := dictionary.Load(dictionary.Sources{
		UserDictionary: dictOverride,
		BuiltinPath:    filepath.Join(exeDir, builtinDictPath),
		PersonalPath:   filepath.Join(configDir, "autocorrect", personalFile),
	})
	if err != nil {
		slog.Warn("background: loading dictionary, continuing with the sources that loaded", "err", err)
	}

	idx, err := symspell.Build(entries, cfg.MaxEditDistance, 7)
	if err != nil {
		slog.Error("background: building index", "err", err)
		return
	}
	eng.SetIndex(idx)
	slog.Info("background: dictionary index ready", "words", len(entries))
}

// makeHookHandler binds a fresh Tracker to the engine and returns the
// synchronous per-keystroke handler the hook source calls. The undo
// hotkey (Ctrl+Z) is detected here and suppressed before it reaches the
// focused application, per spec.md 4.D; everything else passes through
// while the engine corrects asynchronously via the replay policy.
func makeHookHandler(eng *engine.Engine) func(ports.KeystrokeEvent) ports.HookDecision {
	tr := tracker.New()
	return func(ev ports.KeystrokeEvent) (decision ports.HookDecision) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("keystroke hook: recovered from panic", "panic", r)
				decision = ports.Passthrough
			}
		}()
		if ev.Modifiers.Has(ports.ModControl) && ev.Char == 'z' {
			eng.Undo()
			return ports.Suppress
		}
		if commit, committed := tr.Observe(ev); committed {
			eng.Submit(commit)
		}
		return ports.Passthrough
	}
}

// buildEngine wires the focus probe and synthetic-input sink. No
// platform-specific adapter (Win32/Cocoa/X11) is linked into this build;
// every run uses the stdout-backed console adapters until one is.
func buildEngine(cfg config.Config) *engine.Engine {
	focus := consolehook.NoopFocus{}
	sink := consolehook.NewStdoutSink(os.Stdout)
	return engine.New(nil, cfg.MaxEditDistance, focus, sink, sink, nil, time.Duration(cfg.UndoTimeoutSeconds)*time.Second)
}
