package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Preferences holds user-configurable editor and display settings.
// Persisted to ~/.config/promptpad/config.json.
type Preferences struct {
	CollapseThreshold int    `json:"collapse_threshold"`
	PasteDebounceMs   int    `json:"paste_debounce_ms"`
	InputHeight       int    `json:"input_height"`
	Prompt            string `json:"prompt,omitempty"`

	HistoryEnabled bool `json:"history_enabled"`
	HistoryLimit   int  `json:"history_limit"`

	FooterKeybindings bool `json:"footer_keybindings"`
	FooterPosition    bool `json:"footer_position"`
}

// Bounds for numeric preferences.
const (
	minCollapseThreshold = 1
	maxCollapseThreshold = 1000
	minDebounceMs        = 10
	maxDebounceMs        = 2000
	minInputHeight       = 1
	maxInputHeight       = 100
	maxHistoryLimit      = 10000
)

// DefaultPrompt is the prompt shown before the first input row.
const DefaultPrompt = "❯ "

// PrefEntry holds a single key-value preference entry for display.
type PrefEntry struct {
	Key   string
	Value string
}

// ConfigGroup holds a named group of preference entries for display.
type ConfigGroup struct {
	Name    string
	Entries []PrefEntry
}

// ConfigGroupDef defines a single group with a name and its keys.
type ConfigGroupDef struct {
	Name string
	Keys []string
}

// ConfigGroupDefs defines the preference key groupings and their display order.
var ConfigGroupDefs = []ConfigGroupDef{
	{
		Name: "input",
		Keys: []string{"input.collapse_threshold", "input.paste_debounce_ms", "input.height", "input.prompt"},
	},
	{
		Name: "history",
		Keys: []string{"history.enabled", "history.limit"},
	},
	{
		Name: "theme",
		Keys: []string{"footer.keybindings", "footer.position"},
	},
}

// ConfigGroupNames returns the list of valid group names.
func ConfigGroupNames() []string {
	names := make([]string, len(ConfigGroupDefs))
	for i, g := range ConfigGroupDefs {
		names[i] = g.Name
	}
	return names
}

// ValidConfigKeys returns all config keys accepted by Set().
func ValidConfigKeys() []string {
	var keys []string
	for _, g := range ConfigGroupDefs {
		keys = append(keys, g.Keys...)
	}
	return keys
}

// DefaultPreferences returns the default set of preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		CollapseThreshold: 5,
		PasteDebounceMs:   150,
		InputHeight:       8,
		Prompt:            DefaultPrompt,
		HistoryEnabled:    true,
		HistoryLimit:      200,
		FooterKeybindings: true,
		FooterPosition:    true,
	}
}

// LoadPreferences reads preferences from ~/.config/promptpad/config.json.
// Missing keys keep their defaults; unreadable files yield the defaults.
func LoadPreferences() Preferences {
	dir := ConfigDir()
	if dir == "" {
		return DefaultPreferences()
	}

	configPath := filepath.Join(dir, "config.json")
	p := DefaultPreferences()

	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, &p); err != nil {
			fmt.Fprintf(os.Stderr, "config: parse %s: %v\n", configPath, err)
			p = DefaultPreferences()
		}
		warnInsecurePermissions(configPath)

		if sanitizePreferences(&p) {
			// Persist cleaned values so a hand-edited file converges.
			if err := SavePreferences(p); err != nil {
				fmt.Fprintf(os.Stderr, "config: save sanitized config: %v\n", err)
			}
		}
	}

	return p
}

// SavePreferences writes preferences to ~/.config/promptpad/config.json.
func SavePreferences(p Preferences) error {
	dir := ConfigDir()
	if dir == "" {
		return fmt.Errorf("could not determine config directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600)
}

// warnInsecurePermissions prints a warning to stderr if the config file is
// writable by group or others. On Windows, file permission bits don't map
// to ACLs, so the check is skipped.
func warnInsecurePermissions(path string) {
	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm()&0o022 != 0 {
		fmt.Fprintf(os.Stderr, "WARNING: %s is writable by others (mode %o). Run: chmod 600 %s\n",
			path, info.Mode().Perm(), path)
	}
}

// PasteDebounce returns the paste coalescing interval.
func (p Preferences) PasteDebounce() time.Duration {
	return time.Duration(p.PasteDebounceMs) * time.Millisecond
}

// Grouped returns all preferences organized into named groups, with values
// annotated against their defaults.
func (p Preferences) Grouped() []ConfigGroup {
	all := p.entryMap()
	defaults := DefaultPreferences().entryMap()

	var groups []ConfigGroup
	for _, def := range ConfigGroupDefs {
		var entries []PrefEntry
		for _, key := range def.Keys {
			entries = append(entries, PrefEntry{
				Key:   key,
				Value: AnnotateValue(all[key], defaults[key]),
			})
		}
		groups = append(groups, ConfigGroup{Name: def.Name, Entries: entries})
	}
	return groups
}

// GroupByName returns entries for a single config group, or nil if not found.
func (p Preferences) GroupByName(name string) *ConfigGroup {
	for _, g := range p.Grouped() {
		if g.Name == name {
			return &g
		}
	}
	return nil
}

// entryMap returns all preference entries as a key->value map.
func (p Preferences) entryMap() map[string]string {
	m := make(map[string]string)
	for _, e := range p.All() {
		m[e.Key] = e.Value
	}
	return m
}

// All returns all preference entries as a flat list.
func (p Preferences) All() []PrefEntry {
	keys := ValidConfigKeys()
	entries := make([]PrefEntry, len(keys))
	for i, k := range keys {
		entries[i] = PrefEntry{Key: k, Value: p.Get(k)}
	}
	return entries
}

// Get returns the display value for a single preference key.
func (p Preferences) Get(key string) string {
	switch key {
	case "input.collapse_threshold":
		return strconv.Itoa(p.CollapseThreshold)
	case "input.paste_debounce_ms":
		return strconv.Itoa(p.PasteDebounceMs)
	case "input.height":
		return strconv.Itoa(p.InputHeight)
	case "input.prompt":
		return strconv.Quote(p.Prompt)
	case "history.enabled":
		return strconv.FormatBool(p.HistoryEnabled)
	case "history.limit":
		return strconv.Itoa(p.HistoryLimit)
	case "footer.keybindings":
		return strconv.FormatBool(p.FooterKeybindings)
	case "footer.position":
		return strconv.FormatBool(p.FooterPosition)
	default:
		return ""
	}
}

// Set updates a single preference key to the given value.
func (p *Preferences) Set(key, value string) error {
	value = SanitizeValue(value)
	switch key {
	case "input.collapse_threshold":
		n, err := ParseBoundedInt(value, minCollapseThreshold, maxCollapseThreshold)
		if err != nil {
			return err
		}
		p.CollapseThreshold = n
	case "input.paste_debounce_ms":
		n, err := ParseBoundedInt(value, minDebounceMs, maxDebounceMs)
		if err != nil {
			return err
		}
		p.PasteDebounceMs = n
	case "input.height":
		n, err := ParseBoundedInt(value, minInputHeight, maxInputHeight)
		if err != nil {
			return err
		}
		p.InputHeight = n
	case "input.prompt":
		if value == "" {
			value = DefaultPrompt
		} else if !strings.HasSuffix(value, " ") {
			value += " "
		}
		p.Prompt = value
	case "history.enabled":
		b, err := ParseBoolish(value)
		if err != nil {
			return err
		}
		p.HistoryEnabled = b
	case "history.limit":
		n, err := ParseBoundedInt(value, 0, maxHistoryLimit)
		if err != nil {
			return err
		}
		p.HistoryLimit = n
	case "footer.keybindings":
		b, err := ParseBoolish(value)
		if err != nil {
			return err
		}
		p.FooterKeybindings = b
	case "footer.position":
		b, err := ParseBoolish(value)
		if err != nil {
			return err
		}
		p.FooterPosition = b
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// SanitizeValue strips null bytes, ASCII control characters (< 32 except
// \n and \t), and DEL (0x7F) from a string value and trims surrounding
// whitespace. These typically sneak in through clipboard paste artifacts.
func SanitizeValue(s string) string {
	return strings.Map(func(r rune) rune {
		if (r < 32 && r != '\n' && r != '\t') || r == 0x7F {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// sanitizePreferences strips control characters from string fields and
// clamps numeric fields of an already-loaded Preferences struct. Returns
// true if any field was modified.
func sanitizePreferences(p *Preferences) bool {
	changed := false
	clampInt := func(v *int, lo, hi int) {
		if *v < lo {
			*v = lo
			changed = true
		} else if *v > hi {
			*v = hi
			changed = true
		}
	}
	clampInt(&p.CollapseThreshold, minCollapseThreshold, maxCollapseThreshold)
	clampInt(&p.PasteDebounceMs, minDebounceMs, maxDebounceMs)
	clampInt(&p.InputHeight, minInputHeight, maxInputHeight)
	clampInt(&p.HistoryLimit, 0, maxHistoryLimit)

	// The prompt keeps its trailing space, so only strip control characters.
	cleaned := strings.Map(func(r rune) rune {
		if r < 32 || r == 0x7F {
			return -1
		}
		return r
	}, p.Prompt)
	if cleaned == "" {
		cleaned = DefaultPrompt
	}
	if cleaned != p.Prompt {
		p.Prompt = cleaned
		changed = true
	}
	return changed
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// ParseBoundedInt parses a decimal integer within [lo, hi].
func ParseBoundedInt(s string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

// ParseBoolish parses a boolean-like string value.
func ParseBoolish(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s (use true/false, on/off, yes/no)", s)
	}
}

// AnnotateValue returns a display string for a config value, marking
// values that differ from the default.
func AnnotateValue(value, defaultValue string) string {
	if value == "" {
		return "(not set)"
	}
	if value != defaultValue {
		return value + " (default " + defaultValue + ")"
	}
	return value
}

// ConfigFilePath returns the absolute path to config.json.
func ConfigFilePath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.json")
}

// ---------------------------------------------------------------------------
// Config actions
// ---------------------------------------------------------------------------

// ExecuteConfigAction handles /config subcommands and returns a plain-text
// response. The caller applies its own formatting.
func ExecuteConfigAction(prefs *Preferences, args []string) (string, error) {
	sub := "show"
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}

	switch sub {
	case "show":
		return FormatConfigGroups(prefs.Grouped()), nil

	case "input", "history", "theme":
		group := prefs.GroupByName(sub)
		if group == nil {
			return "", fmt.Errorf("unknown config group: %s", sub)
		}
		return FormatConfigGroups([]ConfigGroup{*group}), nil

	case "set":
		if len(args) < 3 {
			return "", fmt.Errorf("usage: /config set <key> <value>")
		}
		key := args[1]
		value := strings.Join(args[2:], " ")
		if err := prefs.Set(key, value); err != nil {
			return "", err
		}
		if err := SavePreferences(*prefs); err != nil {
			return "", fmt.Errorf("failed to save: %w", err)
		}
		return fmt.Sprintf("Set %s = %s", key, prefs.Get(key)), nil

	case "reset":
		*prefs = DefaultPreferences()
		if err := SavePreferences(*prefs); err != nil {
			return "", fmt.Errorf("failed to save: %w", err)
		}
		return "Preferences reset to defaults.", nil

	default:
		return "", fmt.Errorf("usage: /config [show|input|history|theme|set <key> <value>|reset]")
	}
}

// FormatConfigGroups renders config groups as plain text (no ANSI styling).
func FormatConfigGroups(groups []ConfigGroup) string {
	var lines []string
	for i, g := range groups {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, strings.ToUpper(g.Name[:1])+g.Name[1:]+":")
		for _, e := range g.Entries {
			lines = append(lines, fmt.Sprintf("  %-26s %s", e.Key, e.Value))
		}
	}
	lines = append(lines, "")
	lines = append(lines, "  Use /config set <key> <value> to change")
	return strings.Join(lines, "\n")
}
