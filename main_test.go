package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/batalabs/promptpad/internal/buffer"
	"github.com/batalabs/promptpad/internal/config"
	"github.com/batalabs/promptpad/internal/editor"
)

func TestDumpSnapshot(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantText   string
		wantBlocks int
	}{
		{"short paste stays inline", "a\nb\n", "a\nb", 0},
		{"long paste collapses", "1\n2\n3\n4\n5\n6\n", buffer.PlaceholderText(1, 6), 1},
		{"empty input", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := dumpSnapshot(strings.NewReader(tt.input), &out, config.DefaultPreferences(), 40); err != nil {
				t.Fatalf("dumpSnapshot: %v", err)
			}
			var snap editor.Snapshot
			if err := json.Unmarshal(out.Bytes(), &snap); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, out.String())
			}
			if snap.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", snap.Text, tt.wantText)
			}
			if len(snap.Blocks) != tt.wantBlocks {
				t.Errorf("len(Blocks) = %d, want %d", len(snap.Blocks), tt.wantBlocks)
			}
		})
	}
}
