package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/faultline/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Production {
		t.Error("Production should default to false")
	}
	if cfg.Devtools.Addr != DefaultDevtoolsAddr {
		t.Errorf("Devtools.Addr = %q, want %q", cfg.Devtools.Addr, DefaultDevtoolsAddr)
	}
	if cfg.Devtools.OverlayPath != DefaultOverlayPath {
		t.Errorf("Devtools.OverlayPath = %q, want %q", cfg.Devtools.OverlayPath, DefaultOverlayPath)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q", cfg.Metrics.Namespace)
	}
	if cfg.Archive.MaxBatch != DefaultMaxBatch || cfg.Archive.FlushDuration() != 30*time.Second {
		t.Errorf("Archive = %+v", cfg.Archive)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	var fe *errors.FaultError
	if !stderrors.As(err, &fe) || fe.Code != "F100" {
		t.Fatalf("Load(missing) error = %v, want F100", err)
	}

	content := `{
  "production": true,
  "host": {"embedded": true},
  "devtools": {"addr": "0.0.0.0:9000"},
  "archive": {"bucket": "faults", "flushInterval": "5s"}
}
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Production {
		t.Error("Production = false, want true")
	}
	if cfg.Devtools.Addr != "0.0.0.0:9000" {
		t.Errorf("Devtools.Addr = %q", cfg.Devtools.Addr)
	}
	if cfg.Devtools.OverlayPath != DefaultOverlayPath {
		t.Errorf("OverlayPath default not applied: %q", cfg.Devtools.OverlayPath)
	}
	if !cfg.Archive.Enabled() || cfg.Archive.FlushDuration() != 5*time.Second {
		t.Errorf("Archive = %+v", cfg.Archive)
	}
	if p := cfg.Probe(); !p.Embedded() || p.Browser() {
		t.Errorf("Probe() = %+v, want embedded", p)
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadSyntaxErrorHasLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte("{\n  \"production\": tru,\n  \"metrics\": {}\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	var fe *errors.FaultError
	if !stderrors.As(err, &fe) || fe.Code != "F101" {
		t.Fatalf("LoadFile() error = %v, want F101", err)
	}
	if fe.Location == nil || fe.Location.Line != 2 {
		t.Errorf("Location = %v, want line 2", fe.Location)
	}
}

func TestPosition(t *testing.T) {
	data := []byte("ab\ncd\nef")
	tests := []struct {
		offset    int64
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{7, 3, 2},
		{100, 3, 3},
	}
	for _, tt := range tests {
		line, col := position(data, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("position(%d) = %d:%d, want %d:%d", tt.offset, line, col, tt.line, tt.col)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
	}{
		{"both hosts", func(c *Config) { c.Host.Browser, c.Host.Embedded = true, true }, "F105"},
		{"headless and browser", func(c *Config) { c.Host.Headless, c.Host.Browser = true, true }, "F105"},
		{"bad addr", func(c *Config) { c.Devtools.Addr = "localhost" }, "F102"},
		{"empty port", func(c *Config) { c.Devtools.Addr = "localhost:" }, "F102"},
		{"relative overlay", func(c *Config) { c.Devtools.OverlayPath = "overlay" }, "F103"},
		{"bad namespace", func(c *Config) { c.Metrics.Namespace = "fault-line" }, "F106"},
		{"bad flush", func(c *Config) { c.Archive.Bucket = "b"; c.Archive.FlushInterval = "soon" }, "F104"},
		{"bad batch", func(c *Config) { c.Archive.Bucket = "b"; c.Archive.MaxBatch = -1 }, "F104"},
		{"archive disabled ignores flush", func(c *Config) { c.Archive.FlushInterval = "soon" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.code == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var fe *errors.FaultError
			if !stderrors.As(err, &fe) || fe.Code != tt.code {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.Production = true
	cfg.Archive.Bucket = "faults"

	if err := cfg.Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
	path := filepath.Join(dir, ConfigFileName)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.Production || loaded.Archive.Bucket != "faults" {
		t.Errorf("loaded = %+v", loaded)
	}

	loaded.Devtools.Addr = "localhost:9999"
	if err := loaded.Save(); err != nil {
		t.Fatal(err)
	}
	again, _ := LoadFile(path)
	if again.Devtools.Addr != "localhost:9999" {
		t.Errorf("Save() did not persist: %q", again.Devtools.Addr)
	}
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	got, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot() error = %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindRoot() = %q, want %q", got, want)
	}
	if !Exists(root) || Exists(nested) {
		t.Error("Exists() mismatch")
	}
}

func TestProbeFallsBackToDetect(t *testing.T) {
	t.Setenv("FAULTLINE_HOST", "browser")
	if !New().Probe().Browser() {
		t.Error("Probe() should detect a browser host from the environment")
	}
}

func TestHeadlessHostIgnoresEnvironment(t *testing.T) {
	t.Setenv("FAULTLINE_HOST", "browser")
	cfg := New()
	cfg.Host.Headless = true
	if p := cfg.Probe(); p.Browser() || p.Embedded() {
		t.Errorf("Probe() = %+v, want headless", p)
	}
	if os.Getenv("FAULTLINE_HOST") != "browser" {
		t.Error("Probe() must not modify the environment")
	}
}
