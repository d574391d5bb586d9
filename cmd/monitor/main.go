// Command monitor is the CLI entrypoint: it wires the Registry, Cache,
// Synchronizer, and Engine together and hands them to the Presenter's
// bubbletea program, per §4.7/§6. Invoked a second way, with the hidden
// --worker flag, the same binary instead becomes one of the Engine's own
// subprocess workers (§4.6), reading domain.JobSpec frames from stdin.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/connorleisz/monitor/internal/app"
	"github.com/connorleisz/monitor/internal/applog"
	"github.com/connorleisz/monitor/internal/cache"
	"github.com/connorleisz/monitor/internal/domain"
	"github.com/connorleisz/monitor/internal/engine"
	"github.com/connorleisz/monitor/internal/fswatch"
	"github.com/connorleisz/monitor/internal/projectconfig"
	"github.com/connorleisz/monitor/internal/registry"
	"github.com/connorleisz/monitor/internal/workerrun"
)

// Exit codes, per §6.
const (
	exitClean        = 0
	exitUsage        = 1
	exitCacheFailure = 2
	exitFatal        = 3
)

// workerFlagName is the hidden re-exec flag the Engine appends to
// cfg.WorkerArgs when it spawns a worker subprocess of this same binary.
const workerFlagName = "worker"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		workerMode  bool
		workers     int
		editor      string
		theme       string
		compression int
		showInfo    bool
	)

	rootCmd := &cobra.Command{
		Use:           "monitor [directory]",
		Short:         "Live, cached, multi-tool analysis of a codebase in a terminal grid",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			if workerMode {
				return workerrun.Run(os.Stdin, os.Stdout)
			}

			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return fmt.Errorf("resolve codebase root: %w", err)
			}

			cfg := projectconfig.Load(abs)
			if workers == 0 {
				workers = cfg.Workers
			}
			if editor == "" {
				editor = cfg.Editor
			}
			if theme == "" {
				theme = cfg.Theme
			}
			if compression == 0 {
				compression = cfg.Compression
			}

			reg := registry.New(abs, nil)
			if showInfo {
				return printInfo(abs, compression, reg)
			}

			return runTUI(abs, workers, editor, compression)
		},
	}

	rootCmd.Flags().BoolVarP(&showInfo, "info", "i", false, "print the tool/extension matrix and exit")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "override the default worker count")
	rootCmd.Flags().StringVarP(&editor, "editor", "e", "", "override $EDITOR/$VISUAL")
	rootCmd.Flags().StringVarP(&theme, "theme", "t", "", "syntax highlight theme")
	rootCmd.Flags().IntVarP(&compression, "compression", "c", 0, "cache blob compression level, 0..9")
	rootCmd.Flags().BoolVar(&workerMode, workerFlagName, false, "internal: run as an engine worker subprocess")
	_ = rootCmd.Flags().MarkHidden(workerFlagName)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "monitor:", err)
		switch err.(type) {
		case cacheExitError:
			return exitCacheFailure
		case fatalExitError:
			return exitFatal
		default:
			if workerMode {
				return exitFatal
			}
			return exitUsage
		}
	}
	return exitClean
}

// printInfo prints one table row per registered tool (name, argv
// program, classifier kind) plus the on-disk cache footprint, for §6's
// --info flag. It does not list which file extensions each tool applies
// to. It opens the cache read-only-in-spirit (Open always
// runs startup GC, which --info intentionally triggers) and closes it
// before returning, never starting the TUI or the engine.
func printInfo(codebaseRoot string, compression int, reg *registry.Registry) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"tool", "argv program", "classifier"})

	okColor := color.New(color.FgGreen).SprintFunc()
	elidedNote := color.New(color.FgYellow).SprintFunc()

	for _, d := range reg.Descriptors() {
		program := d.Argv.Program
		if program == "" {
			program = elidedNote("(synthetic)")
		}
		tbl.AppendRow(table.Row{okColor(d.Name), program, classifierLabel(d.ClassifierKind)})
	}
	tbl.Render()

	c, _, _, err := cache.Open(codebaseRoot, compression, nil)
	if err != nil {
		return cacheExitError{err: err}
	}
	defer c.Close()
	if usage, err := c.DiskUsage(); err == nil {
		fmt.Printf("\ncache: %s (%s)\n", filepath.Join(codebaseRoot, cache.AppDirName), usage)
	}
	return nil
}

func classifierLabel(k domain.ClassifierKind) string {
	switch k {
	case domain.ClassifyExitCode:
		return "exit-code"
	case domain.ClassifyStdoutRegex:
		return "stdout-regex"
	case domain.ClassifyCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// runTUI wires every service together and runs the Presenter, per §5's
// process/goroutine layout. The codebase root becomes both the engine's
// working directory and the cache's root directory.
func runTUI(codebaseRoot string, workers int, editor string, compression int) (resultErr error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "monitor: fatal:", r)
			debug.PrintStack()
			resultErr = fatalExitError{}
		}
	}()

	log := applog.NewBuffer(512)

	c, persisted, warm, err := cache.Open(codebaseRoot, compression, log)
	if err != nil {
		return cacheExitError{err: err}
	}
	defer c.Close()

	reg := registry.New(codebaseRoot, log)

	watcher, initialSnapshots, err := fswatch.New(codebaseRoot, cache.AppDirName, log)
	if err != nil {
		return fatalExitError{err: err}
	}
	defer watcher.Close()

	exePath, err := os.Executable()
	if err != nil {
		return fatalExitError{err: err}
	}

	eng, err := engine.New(engine.Config{
		Workers:      workers,
		ExePath:      exePath,
		WorkerArgs:   []string{"--" + workerFlagName},
		CodebaseRoot: codebaseRoot,
		Log:          log,
	})
	if err != nil {
		return fatalExitError{err: err}
	}
	defer eng.Close()

	model := app.Bootstrap(codebaseRoot, editor, reg, eng, c, watcher, log, persisted, warm, initialSnapshots)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fatalExitError{err: err}
	}
	return nil
}

// fatalExitError and cacheExitError let run()'s caller distinguish exit
// codes 2 and 3 (§6) from an ordinary usage error without runTUI needing
// to call os.Exit itself, which would skip its own deferred cleanup.
type fatalExitError struct{ err error }

func (e fatalExitError) Error() string {
	if e.err == nil {
		return "fatal internal error"
	}
	return e.err.Error()
}

type cacheExitError struct{ err error }

func (e cacheExitError) Error() string { return "cache: " + e.err.Error() }
