package tui

import (
	"fmt"
	"strings"

	"github.com/batalabs/promptpad/internal/config"
	"github.com/batalabs/promptpad/internal/domain"
)

// SlashCommands lists the available slash commands.
var SlashCommands = func() []string {
	names := make([]string, len(domain.CommandDefs))
	for i, c := range domain.CommandDefs {
		names[i] = c.Name
	}
	return names
}()

// ConfigSubcommands lists the available /config subcommands.
var ConfigSubcommands = append(config.ConfigGroupNames(), "reset", "set", "show")

// HistorySubcommands lists the available /history subcommands.
var HistorySubcommands = []string{"clear", "pick"}

// ConfigKeys lists the available /config set keys.
var ConfigKeys = config.ValidConfigKeys()

// ComputeCompletions returns full-input completion candidates for the given
// command line.
func ComputeCompletions(input string) []string {
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	fields := strings.Fields(input)
	if len(fields) == 0 {
		return FilterByPrefix(SlashCommands, "/", "")
	}

	cmd := strings.ToLower(fields[0])

	// Still typing the command name (no space after it yet).
	if len(fields) == 1 && !strings.HasSuffix(input, " ") {
		return FilterByPrefix(SlashCommands, "", cmd)
	}

	switch cmd {
	case "/config":
		if len(fields) == 1 || (len(fields) == 2 && !strings.HasSuffix(input, " ")) {
			partial := ""
			if len(fields) >= 2 {
				partial = strings.ToLower(fields[1])
			}
			return FilterByPrefix(ConfigSubcommands, "/config ", partial)
		}
		if strings.ToLower(fields[1]) == "set" {
			if len(fields) <= 3 && !(len(fields) == 3 && strings.HasSuffix(input, " ")) {
				partial := ""
				if len(fields) >= 3 {
					partial = strings.ToLower(fields[2])
				}
				return FilterByPrefix(ConfigKeys, "/config set ", partial)
			}
		}
		return nil
	case "/history":
		partial := ""
		if len(fields) >= 2 {
			partial = strings.ToLower(fields[1])
		}
		return FilterByPrefix(HistorySubcommands, "/history ", partial)
	}

	return nil
}

// FilterByPrefix returns candidates that start with partial, each prefixed
// with the given prefix string. If partial is empty, all candidates match.
func FilterByPrefix(candidates []string, prefix, partial string) []string {
	var result []string
	lower := strings.ToLower(partial)
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			result = append(result, prefix+c)
		}
	}
	return result
}

// CommandExpectsArgs returns true if the completed command should have a
// trailing space appended (rather than being submitted) because it accepts
// an argument.
func CommandExpectsArgs(completion string) bool {
	fields := strings.Fields(completion)
	if len(fields) == 0 {
		return false
	}
	cmd := strings.ToLower(fields[0])
	switch cmd {
	case "/config":
		if len(fields) == 1 {
			return true
		}
		// /config set -> key, /config set <key> -> value
		if strings.ToLower(fields[1]) == "set" {
			return len(fields) <= 3
		}
		return false
	}
	return false
}

// RenderCompletionMenu renders up to maxVisible completion items as a
// vertical menu. The selected item is highlighted.
func RenderCompletionMenu(completions []string, selectedIdx, width int) string {
	const maxVisible = 8
	n := len(completions)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	visible := min(n, maxVisible)
	start := 0
	if selectedIdx >= visible {
		start = selectedIdx - visible + 1
	}
	for i := start; i < start+visible; i++ {
		label := completions[i]
		if width > 4 && len(label) > width-4 {
			label = label[:width-4]
		}
		if i == selectedIdx {
			b.WriteString(CompletionSelStyle.Render(" " + label + " "))
		} else {
			b.WriteString(CompletionStyle.Render(" " + label + " "))
		}
		b.WriteString("\n")
	}
	if n > maxVisible {
		more := fmt.Sprintf(" ... and %d more", n-maxVisible)
		b.WriteString(CompletionStyle.Render(more))
		b.WriteString("\n")
	}
	return b.String()
}
