package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := configDirOverride
	configDirOverride = dir
	t.Cleanup(func() { configDirOverride = orig })
	return dir
}

func TestConfigDir(t *testing.T) {
	t.Run("returns override when set", func(t *testing.T) {
		orig := configDirOverride
		configDirOverride = "/tmp/test-config"
		t.Cleanup(func() { configDirOverride = orig })

		if got := ConfigDir(); got != "/tmp/test-config" {
			t.Errorf("expected override dir, got %q", got)
		}
	})

	t.Run("returns home-based path when no override", func(t *testing.T) {
		orig := configDirOverride
		configDirOverride = ""
		t.Cleanup(func() { configDirOverride = orig })

		got := ConfigDir()
		if got == "" {
			t.Fatal("expected non-empty config dir")
		}
		if !strings.HasSuffix(got, filepath.Join(".config", "promptpad")) {
			t.Errorf("expected path ending in .config/promptpad, got %q", got)
		}
	})
}

func TestDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	orig := dataDirOverride
	dataDirOverride = dir
	t.Cleanup(func() { dataDirOverride = orig })

	got, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if got != dir {
		t.Errorf("DataDir() = %q, want %q", got, dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat data dir: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected data dir to be a directory")
	}

	hp, err := HistoryPath()
	if err != nil || hp != filepath.Join(dir, "history.db") {
		t.Errorf("HistoryPath() = %q, %v", hp, err)
	}
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	if p.CollapseThreshold != 5 {
		t.Errorf("CollapseThreshold = %d, want 5", p.CollapseThreshold)
	}
	if p.PasteDebounce() != 150*time.Millisecond {
		t.Errorf("PasteDebounce() = %v, want 150ms", p.PasteDebounce())
	}
	if !p.HistoryEnabled || !p.FooterKeybindings || !p.FooterPosition {
		t.Errorf("expected boolean defaults to be on: %+v", p)
	}
	if p.Prompt != DefaultPrompt {
		t.Errorf("Prompt = %q, want %q", p.Prompt, DefaultPrompt)
	}
}

func TestLoadPreferences(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		withConfigDir(t)
		if got := LoadPreferences(); got != DefaultPreferences() {
			t.Errorf("LoadPreferences() = %+v, want defaults", got)
		}
	})

	t.Run("partial file keeps other defaults", func(t *testing.T) {
		dir := withConfigDir(t)
		data := []byte(`{"collapse_threshold": 9, "footer_position": false}`)
		if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600); err != nil {
			t.Fatal(err)
		}
		p := LoadPreferences()
		if p.CollapseThreshold != 9 || p.FooterPosition {
			t.Errorf("loaded = %+v", p)
		}
		if p.InputHeight != 8 || p.PasteDebounceMs != 150 {
			t.Errorf("defaults lost: %+v", p)
		}
	})

	t.Run("invalid json returns defaults", func(t *testing.T) {
		dir := withConfigDir(t)
		if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := LoadPreferences(); got != DefaultPreferences() {
			t.Errorf("LoadPreferences() = %+v, want defaults", got)
		}
	})

	t.Run("out of range values are clamped and saved", func(t *testing.T) {
		dir := withConfigDir(t)
		path := filepath.Join(dir, "config.json")
		data := []byte(`{"collapse_threshold": 0, "paste_debounce_ms": 99999, "prompt": "\u0000>"}`)
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatal(err)
		}
		p := LoadPreferences()
		if p.CollapseThreshold != minCollapseThreshold || p.PasteDebounceMs != maxDebounceMs {
			t.Errorf("loaded = %+v", p)
		}
		if p.Prompt != ">" {
			t.Errorf("Prompt = %q, want %q", p.Prompt, ">")
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		var saved Preferences
		if err := json.Unmarshal(raw, &saved); err != nil {
			t.Fatal(err)
		}
		if saved.CollapseThreshold != minCollapseThreshold {
			t.Errorf("sanitized value not persisted: %+v", saved)
		}
	})
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := withConfigDir(t)
	p := DefaultPreferences()
	p.InputHeight = 12
	p.HistoryEnabled = false
	if err := SavePreferences(p); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}
	if got := LoadPreferences(); got != p {
		t.Errorf("LoadPreferences() = %+v, want %+v", got, p)
	}
}

func TestPreferencesSet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr bool
	}{
		{"input.collapse_threshold", "8", "8", false},
		{"input.collapse_threshold", "0", "", true},
		{"input.collapse_threshold", "many", "", true},
		{"input.paste_debounce_ms", " 200 ", "200", false},
		{"input.paste_debounce_ms", "5", "", true},
		{"input.height", "3", "3", false},
		{"input.prompt", ">", `"> "`, false},
		{"input.prompt", "", `"❯ "`, false},
		{"history.enabled", "off", "false", false},
		{"history.enabled", "maybe", "", true},
		{"history.limit", "0", "0", false},
		{"footer.keybindings", "no", "false", false},
		{"footer.position", "YES", "true", false},
		{"nope.key", "1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			p := DefaultPreferences()
			err := p.Set(tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Set(%q, %q) expected error", tt.key, tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set(%q, %q): %v", tt.key, tt.value, err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  42 ", "42"},
		{"4\x002", "42"},
		{"a\x7fb", "ab"},
		{"tab\tkept", "tab\tkept"},
	}
	for _, tt := range tests {
		if got := SanitizeValue(tt.input); got != tt.want {
			t.Errorf("SanitizeValue(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGrouped(t *testing.T) {
	p := DefaultPreferences()
	p.InputHeight = 4
	groups := p.Grouped()
	if len(groups) != len(ConfigGroupDefs) {
		t.Fatalf("expected %d groups, got %d", len(ConfigGroupDefs), len(groups))
	}
	if groups[0].Name != "input" {
		t.Errorf("first group = %q, want input", groups[0].Name)
	}
	var height string
	for _, e := range groups[0].Entries {
		if e.Key == "input.height" {
			height = e.Value
		}
	}
	if height != "4 (default 8)" {
		t.Errorf("input.height display = %q", height)
	}
	if len(p.All()) != len(ValidConfigKeys()) {
		t.Errorf("All() has %d entries, want %d", len(p.All()), len(ValidConfigKeys()))
	}
	if p.GroupByName("missing") != nil {
		t.Error("expected nil for unknown group")
	}
}

func TestExecuteConfigAction(t *testing.T) {
	withConfigDir(t)
	p := DefaultPreferences()

	out, err := ExecuteConfigAction(&p, nil)
	if err != nil || !strings.Contains(out, "input.collapse_threshold") {
		t.Errorf("show = %q, %v", out, err)
	}

	out, err = ExecuteConfigAction(&p, []string{"set", "input.height", "5"})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if out != "Set input.height = 5" || p.InputHeight != 5 {
		t.Errorf("set output = %q, height = %d", out, p.InputHeight)
	}
	if got := LoadPreferences().InputHeight; got != 5 {
		t.Errorf("persisted height = %d, want 5", got)
	}

	if _, err := ExecuteConfigAction(&p, []string{"set", "input.height"}); err == nil {
		t.Error("expected usage error for missing value")
	}

	out, err = ExecuteConfigAction(&p, []string{"history"})
	if err != nil || strings.Contains(out, "input.height") || !strings.Contains(out, "history.limit") {
		t.Errorf("group output = %q, %v", out, err)
	}

	if _, err := ExecuteConfigAction(&p, []string{"reset"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if p != DefaultPreferences() {
		t.Errorf("reset left %+v", p)
	}

	if _, err := ExecuteConfigAction(&p, []string{"bogus"}); err == nil {
		t.Error("expected error for unknown subcommand")
	}
}

func TestLogger(t *testing.T) {
	dir := t.TempDir()
	orig := dataDirOverride
	dataDirOverride = dir
	t.Cleanup(func() { dataDirOverride = orig })

	l := NewLogger()
	l.Printf("paste flushed: %d lines", 6)
	l.Close()
	l.Printf("after close")

	data, err := os.ReadFile(filepath.Join(dir, "promptpad.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, " paste flushed: 6 lines\n") {
		t.Errorf("log = %q", got)
	}
	if strings.Contains(got, "after close") {
		t.Error("expected writes after Close to be dropped")
	}
	if LogPath() != filepath.Join(dir, "promptpad.log") {
		t.Errorf("LogPath() = %q", LogPath())
	}

	var nilLogger *Logger
	nilLogger.Printf("ignored")
	nilLogger.Close()
}
