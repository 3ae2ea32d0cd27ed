package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsMatchBoxScene(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Resolution != 128 || cfg.Grid.BoundaryWidth != 2 {
		t.Errorf("grid = %+v, want 128 cells with band 2", cfg.Grid)
	}
	if cfg.Scene.Name != "box" {
		t.Errorf("scene = %q, want box", cfg.Scene.Name)
	}
	want := 0.15 / 124
	if d := cfg.Derived.Spacing - want; d > 1e-15 || d < -1e-15 {
		t.Errorf("spacing = %v, want %v", cfg.Derived.Spacing, want)
	}
	if cfg.Derived.SecondPerFrame != 1.0/25 {
		t.Errorf("second per frame = %v", cfg.Derived.SecondPerFrame)
	}
}

func TestLoadOverlaysUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	data := []byte("grid:\n  resolution: 64\nscene:\n  name: droplet\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Resolution != 64 {
		t.Errorf("resolution = %d, want 64", cfg.Grid.Resolution)
	}
	// Untouched keys keep their defaults.
	if cfg.Grid.BoundaryWidth != 2 || cfg.Physics.LiquidDensity != 1000 {
		t.Errorf("defaults lost: %+v %+v", cfg.Grid, cfg.Physics)
	}
	if cfg.Scene.Name != "droplet" {
		t.Errorf("scene = %q", cfg.Scene.Name)
	}
}

func TestLoadRejectsBadGrid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("grid:\n  resolution: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for resolution 4 with boundary width 2")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Volume.Gain = 0.25

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Volume.Gain != 0.25 {
		t.Errorf("gain = %v, want 0.25", back.Volume.Gain)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() { global = saved }()

	defer func() {
		if recover() == nil {
			t.Error("Cfg did not panic")
		}
	}()
	Cfg()
}
