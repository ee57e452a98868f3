package am

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/hazop-ai/pidsym/errors"
)

func TestLoad_Defaults(t *testing.T) {
	// Isolated viper instance: no system, user or project config
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Extract.OutputDir != "svg" {
		t.Errorf("expected default output dir 'svg', got %q", cfg.Extract.OutputDir)
	}
	if cfg.Raster.Size != 256 {
		t.Errorf("expected default png size 256, got %d", cfg.Raster.Size)
	}
	if cfg.Raster.PNGDir != "png" {
		t.Errorf("expected default png dir 'png', got %q", cfg.Raster.PNGDir)
	}
	if len(cfg.Raster.Converters) != 4 || cfg.Raster.Converters[0] != "oksvg" {
		t.Errorf("unexpected default converters %v", cfg.Raster.Converters)
	}
	if len(cfg.Extract.VendorPrefixes) != 1 || cfg.Extract.VendorPrefixes[0] != "v" {
		t.Errorf("expected vendor prefixes [v], got %v", cfg.Extract.VendorPrefixes)
	}
	if !cfg.Extract.Names || !cfg.Extract.CSV || !cfg.Extract.Analyze {
		t.Error("names, csv and analyze should default to enabled")
	}
	if cfg.Raster.Enabled {
		t.Error("png conversion should default to disabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero workers means one per cpu", func(c *Config) { c.Extract.Workers = 0 }, false},
		{"negative workers", func(c *Config) { c.Extract.Workers = -1 }, true},
		{"empty output dir", func(c *Config) { c.Extract.OutputDir = "" }, true},
		{"xlink prefix cannot be stripped", func(c *Config) { c.Extract.VendorPrefixes = []string{"v", "xlink"} }, true},
		{"empty vendor prefix", func(c *Config) { c.Extract.VendorPrefixes = []string{""} }, true},
		{"inkscape prefix allowed", func(c *Config) { c.Extract.VendorPrefixes = []string{"v", "inkscape"} }, false},
		{"zero png size", func(c *Config) { c.Raster.Size = 0 }, true},
		{"zero timeout disables it", func(c *Config) { c.Raster.TimeoutSeconds = 0 }, false},
		{"negative timeout", func(c *Config) { c.Raster.TimeoutSeconds = -5 }, true},
		{"unknown converter", func(c *Config) { c.Raster.Converters = []string{"cairosvg"} }, true},
		{"no converters", func(c *Config) { c.Raster.Converters = nil }, true},
		{"command override for builtin", func(c *Config) { c.Raster.Commands = map[string]string{"oksvg": "x"} }, true},
		{"command override for inkscape", func(c *Config) {
			c.Raster.Commands = map[string]string{"inkscape": "inkscape {in} -o {out}"}
		}, false},
		{"empty manifest out", func(c *Config) { c.Manifest.Out = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrInvalidConfig) {
				t.Errorf("Validate() error should be ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestFindProjectConfig(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("prefers pidsym.toml", func(t *testing.T) {
		root := filepath.Join(tmpDir, "a")
		sub := filepath.Join(root, "ISO", "PID-ISO-Valves-Symbols")
		if err := os.MkdirAll(sub, DefaultDirPermissions); err != nil {
			t.Fatal(err)
		}
		os.WriteFile(filepath.Join(root, "pidsym.toml"), []byte(""), DefaultFilePermissions)
		os.WriteFile(filepath.Join(root, "am.toml"), []byte(""), DefaultFilePermissions)

		got := findProjectConfig(sub)
		if filepath.Base(got) != "pidsym.toml" {
			t.Errorf("expected pidsym.toml, got %q", got)
		}
	})

	t.Run("falls back to am.toml", func(t *testing.T) {
		root := filepath.Join(tmpDir, "b")
		sub := filepath.Join(root, "sub")
		os.MkdirAll(sub, DefaultDirPermissions)
		os.WriteFile(filepath.Join(root, "am.toml"), []byte(""), DefaultFilePermissions)

		got := findProjectConfig(sub)
		if got != filepath.Join(root, "am.toml") {
			t.Errorf("expected %s, got %q", filepath.Join(root, "am.toml"), got)
		}
	})
}

func TestMergeConfigFiles_PrecedenceAndSources(t *testing.T) {
	tmpDir := t.TempDir()
	system := filepath.Join(tmpDir, "system.toml")
	project := filepath.Join(tmpDir, "pidsym.toml")

	os.WriteFile(system, []byte("[raster]\nsize = 128\nenabled = true\n"), DefaultFilePermissions)
	os.WriteFile(project, []byte("[raster]\nsize = 512\n\n[extract]\nworkers = 2\n"), DefaultFilePermissions)

	Reset()
	defer Reset()

	v := viper.New()
	SetDefaults(v)
	err := mergeConfigFiles(v, []configCandidate{
		{path: system, source: SourceSystem},
		{path: filepath.Join(tmpDir, "missing.toml"), source: SourceUser},
		{path: project, source: SourceProject},
	})
	if err != nil {
		t.Fatalf("mergeConfigFiles() failed: %v", err)
	}

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Raster.Size != 512 {
		t.Errorf("project config should win, got size %d", cfg.Raster.Size)
	}
	if !cfg.Raster.Enabled {
		t.Error("raster.enabled from system config should survive the project merge")
	}
	if cfg.Extract.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.Extract.Workers)
	}
	if cfg.Raster.PNGDir != DefaultPNGDir {
		t.Errorf("unset keys keep defaults, got png_dir %q", cfg.Raster.PNGDir)
	}

	if got := ConfigSources["raster.size"]; got.Source != SourceProject || got.Path != project {
		t.Errorf("raster.size source = %+v", got)
	}
	if got := ConfigSources["raster.enabled"]; got.Source != SourceSystem {
		t.Errorf("raster.enabled source = %+v", got)
	}
}

func TestMergeConfigFiles_RequiredMissing(t *testing.T) {
	Reset()
	defer Reset()

	v := viper.New()
	err := mergeConfigFiles(v, []configCandidate{
		{path: filepath.Join(t.TempDir(), "nope.toml"), source: SourceExplicit, required: true},
	})
	if err == nil {
		t.Fatal("expected error for missing --config file")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pidsym.toml")
	content := `
[extract]
vendor_prefixes = ["v", "inkscape"]

[raster]
converters = ["rsvg-convert"]

[raster.commands]
rsvg-convert = "rsvg-convert -w {size} -h {size} -o {out} {in}"
`
	os.WriteFile(path, []byte(content), DefaultFilePermissions)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if len(cfg.Extract.VendorPrefixes) != 2 {
		t.Errorf("expected 2 vendor prefixes, got %v", cfg.Extract.VendorPrefixes)
	}
	if cfg.Raster.Commands["rsvg-convert"] == "" {
		t.Errorf("expected rsvg-convert command override, got %v", cfg.Raster.Commands)
	}
	if cfg.Raster.Size != DefaultPNGSize {
		t.Errorf("expected default size, got %d", cfg.Raster.Size)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestWriteConfig_RoundTripAndBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pidsym.toml")

	cfg := Defaults()
	cfg.Raster.Size = 512
	if err := WriteConfig(path, cfg, false); err != nil {
		t.Fatalf("WriteConfig() failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# pidsym configuration\n") {
		t.Errorf("missing header: %q", string(data[:40]))
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}
	if loaded.Raster.Size != 512 {
		t.Errorf("round trip size = %d, want 512", loaded.Raster.Size)
	}

	if err := WriteConfig(path, cfg, false); err == nil {
		t.Error("expected error when overwriting without force")
	}

	cfg.Raster.Size = 1024
	if err := WriteConfig(path, cfg, true); err != nil {
		t.Fatalf("WriteConfig(force) failed: %v", err)
	}
	if _, err := os.Stat(path + ".back1"); err != nil {
		t.Errorf("expected .back1 backup: %v", err)
	}
	if err := WriteConfig(path, cfg, true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".back2"); err != nil {
		t.Errorf("expected rotated .back2 backup: %v", err)
	}
}

func TestFlattenSettingsWithSources(t *testing.T) {
	t.Setenv("PIDSYM_RASTER_SIZE", "64")

	settings := map[string]interface{}{
		"raster":  map[string]interface{}{"size": 64, "png_dir": "png"},
		"extract": map[string]interface{}{"workers": 4},
	}
	sources := map[string]SourceInfo{
		"extract.workers": {Source: SourceProject, Path: "/p/pidsym.toml"},
	}

	intro := &ConfigIntrospection{}
	flattenSettingsWithSources(settings, "", intro, sources)

	if len(intro.Settings) != 3 {
		t.Fatalf("expected 3 settings, got %d", len(intro.Settings))
	}
	// Sorted: extract.workers, raster.png_dir, raster.size
	want := []struct {
		key    string
		source ConfigSource
	}{
		{"extract.workers", SourceProject},
		{"raster.png_dir", SourceDefault},
		{"raster.size", SourceEnvironment},
	}
	for i, w := range want {
		if intro.Settings[i].Key != w.key || intro.Settings[i].Source != w.source {
			t.Errorf("setting %d = %s/%s, want %s/%s", i, intro.Settings[i].Key, intro.Settings[i].Source, w.key, w.source)
		}
	}
}

func TestConfigFiles_ExplicitIsLast(t *testing.T) {
	SetConfigFile("/tmp/explicit-pidsym.toml")
	defer SetConfigFile("")

	files := ConfigFiles()
	if len(files) < 2 {
		t.Fatalf("expected at least system and explicit candidates, got %d", len(files))
	}
	if files[0].Source != SourceSystem {
		t.Errorf("expected system config first, got %s", files[0].Source)
	}
	last := files[len(files)-1]
	if last.Source != SourceExplicit || last.Path != "/tmp/explicit-pidsym.toml" {
		t.Errorf("expected explicit config last, got %+v", last)
	}
}
