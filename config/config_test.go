package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Plume.Capacity != 50000 {
		t.Errorf("plume.capacity = %d, want 50000", cfg.Plume.Capacity)
	}
	if cfg.Plume.Transfer != 0.10 {
		t.Errorf("plume.transfer = %v, want 0.10", cfg.Plume.Transfer)
	}
	if cfg.Telemetry.BookmarkHistorySize != 10 {
		t.Errorf("telemetry.bookmark_history_size = %d, want 10", cfg.Telemetry.BookmarkHistorySize)
	}
	want := cfg.World.Scale * cfg.World.AspectRatio
	if math.Abs(cfg.Derived.MapHalfWidth-want) > 1e-9 {
		t.Errorf("derived map half width = %v, want %v", cfg.Derived.MapHalfWidth, want)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("plume:\n  capacity: 1234\nmask:\n  width: 64\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Plume.Capacity != 1234 {
		t.Errorf("capacity = %d, want 1234", cfg.Plume.Capacity)
	}
	if cfg.Mask.Width != 64 {
		t.Errorf("mask width = %d, want 64", cfg.Mask.Width)
	}
	// Untouched fields keep their defaults
	if cfg.Mask.Height != 1024 {
		t.Errorf("mask height = %d, want default 1024", cfg.Mask.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero capacity", "plume:\n  capacity: 0\n"},
		{"negative capacity", "plume:\n  capacity: -5\n"},
		{"zero mask width", "mask:\n  width: 0\n"},
		{"blend above one", "plume:\n  blend: 1.5\n"},
		{"inverted bands", "wind:\n  low_threshold: 70\n  high_threshold: 20\n"},
		{"zero dt", "physics:\n  dt: 0\n"},
		{"zero stats window", "telemetry:\n  stats_window: 0\n"},
		{"zero bookmark history", "telemetry:\n  bookmark_history_size: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Load(%q) error = %v, want ErrInvalid", tt.name, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Defaults()
	cfg.Plume.Capacity = 777

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if back.Plume.Capacity != 777 {
		t.Errorf("capacity after roundtrip = %d, want 777", back.Plume.Capacity)
	}
}
