// promptpad CLI entry point
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/batalabs/promptpad/internal/buffer"
	"github.com/batalabs/promptpad/internal/config"
	"github.com/batalabs/promptpad/internal/editor"
	"github.com/batalabs/promptpad/internal/paste"
	"github.com/batalabs/promptpad/internal/store"
	"github.com/batalabs/promptpad/internal/tui"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	heightFlag := flag.Int("height", 0, "Input height in rows (overrides input.height)")
	textFlag := flag.String("text", "", "Initial input text")
	noHistoryFlag := flag.Bool("no-history", false, "Do not read or write submission history")
	thresholdFlag := flag.Int("threshold", 0, "Collapse pastes with more lines than this (overrides input.collapse_threshold)")
	fullscreenFlag := flag.Bool("fullscreen", false, "Run on the alternate screen with mouse support")
	onceFlag := flag.Bool("once", false, "Exit after the first submission and print it to stdout")
	dumpFlag := flag.Bool("dump", false, "Read stdin as one paste and print the editor snapshot as JSON")
	widthFlag := flag.Int("width", 80, "Viewport width for -dump")
	flag.Parse()

	// Set up log file. Diagnostics go to ~/.local/share/promptpad/promptpad.log.
	logger := config.NewLogger()
	defer logger.Close()

	if *versionFlag {
		fmt.Printf("promptpad %s\n", version)
		return
	}

	prefs := config.LoadPreferences()
	if *heightFlag > 0 {
		prefs.InputHeight = *heightFlag
	}
	if *thresholdFlag > 0 {
		prefs.CollapseThreshold = *thresholdFlag
	}
	if *noHistoryFlag {
		prefs.HistoryEnabled = false
	}

	if *dumpFlag {
		if err := dumpSnapshot(os.Stdin, os.Stdout, prefs, *widthFlag); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var st *store.Store
	if prefs.HistoryEnabled {
		var err error
		st, err = store.OpenStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "store: %v (history disabled)\n", err)
			logger.Printf("store: open: %v", err)
		} else {
			defer st.Close()
		}
	}

	resetTerminalForTUI(*fullscreenFlag)

	m := tui.InitialModel(prefs, tui.Options{
		Version:      version,
		ProjectPath:  tui.MustGetwd(),
		InitialText:  *textFlag,
		Fullscreen:   *fullscreenFlag,
		ExitOnSubmit: *onceFlag,
		Store:        st,
		Logger:       logger,
	})
	final, err := tui.NewProgram(m).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "promptpad failed: %v\n", err)
		os.Exit(1)
	}
	if *onceFlag {
		if fm, ok := final.(tui.Model); ok && fm.Submitted() != "" {
			fmt.Println(fm.Submitted())
		}
	}
}

// dumpSnapshot feeds r through the paste path as a single paste and writes
// the resulting editor snapshot as indented JSON.
func dumpSnapshot(r io.Reader, w io.Writer, prefs config.Preferences, width int) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	e := editor.New(width, prefs.InputHeight).WithCollapseThreshold(prefs.CollapseThreshold)

	c, _ := paste.New(prefs.PasteDebounce()).Add(string(data), buffer.Cursor{})
	if _, f := c.Take(); f != nil {
		e = e.InsertAt(f.At, f.Text)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e.Snapshot()); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

func resetTerminalForTUI(fullscreen bool) {
	if fullscreen {
		return
	}
	// Start the inline editor on a fresh line without terminal control
	// sequences. This avoids prompt-line overlap on some Windows terminals.
	fmt.Println()
}
