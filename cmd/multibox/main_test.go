package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/1broseidon/multibox/internal/config"
	"github.com/1broseidon/multibox/internal/ipc"
)

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceDefault, Name: "groups"}, "default:groups"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"4", 4, false},
		{"0", 0, true},
		{"-2", 0, true},
		{"x", 0, true},
	}
	for _, tt := range tests {
		got, err := parseNumber("preset", tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseNumber(%q) = %d, %v; want %d, err %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	writeStatus(&buf, &ipc.StatusData{
		Mode:           "all_group",
		Active:         true,
		Group:          1,
		LayoutPriority: "role",
		Groups: []ipc.GroupInfo{{
			Number: 1,
			Controllers: []ipc.ControllerInfo{
				{Ordinal: 1, Role: "left", Pair: 0, Window: 0x2a, HasWindow: true, Active: true, Focused: true},
				{Ordinal: 2, Role: "right", Pair: 0, PostError: true},
			},
		}},
	})
	out := buf.String()
	for _, want := range []string{
		"mode:            all_group",
		"group:           1/1",
		"group 1 (current)",
		"#1  pair 1 left  0x2a [active,focused]",
		"#2  pair 1 right - [post_error]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "switching:") {
		t.Errorf("no session should print no switching line:\n%s", out)
	}
}

func TestWritePresets(t *testing.T) {
	var buf bytes.Buffer
	writePresets(&buf, &ipc.PresetsData{
		LastPreset: 2,
		Presets: []ipc.PresetInfo{
			{Number: 1, Description: "(Disabled)"},
			{Number: 2, Enabled: true, Regions: "0,0,1920,1080,0,-1", Description: "2x1 grid"},
		},
	})
	want := "  1  (Disabled)\n* 2  2x1 grid\n     regions: 0,0,1920,1080,0,-1\n"
	if got := buf.String(); got != want {
		t.Errorf("presets output = %q, want %q", got, want)
	}
}
