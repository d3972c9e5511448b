package config

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestConfigParsing(t *testing.T) {
	configContent := `# Global options
grid.rows 500
log.level debug

[edit]
grid.rows 20
headers Name, City

[aliases]
name ho ten, full name
name nick`

	config, err := LoadFromReader(strings.NewReader(configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if value, ok := config.GetGlobalOption("grid.rows"); !ok || value != "500" {
		t.Errorf("Expected grid.rows=500, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetCommandOption("edit", "grid.rows"); !ok || value != "20" {
		t.Errorf("Expected edit grid.rows=20, got %s (exists: %v)", value, ok)
	}
	if value, ok := config.GetCommandOption("edit", "headers"); !ok || value != "Name, City" {
		t.Errorf("Expected the rest of the line as value, got %q", value)
	}
	if value, ok := config.GetCommandOption("edit", "log.level"); !ok || value != "debug" {
		t.Errorf("Expected fallback to global log.level, got %s (exists: %v)", value, ok)
	}
	if _, ok := config.GetCommandOption("nonexistent", "option"); ok {
		t.Error("Expected nonexistent option to not exist")
	}

	want := []string{"ho ten", "full name", "nick"}
	if got := config.Aliases["name"]; !slices.Equal(got, want) {
		t.Errorf("Expected aliases %v, got %v", want, got)
	}
	if _, ok := config.Commands["aliases"]; ok {
		t.Error("[aliases] must not be treated as a command section")
	}
	if len(config.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", config.Warnings)
	}
}

func TestConfigWarnings(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader("grid.rows many\nbogus 1\n[edit]\ngrid.zoom big\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	want := []string{
		`global option "grid.rows": expected int, got "many"`,
		`option "grid.zoom" in [edit]: expected float, got "big"`,
		`unknown global option: "bogus" (value: "1")`,
	}
	if !slices.Equal(config.Warnings, want) {
		t.Errorf("unexpected warnings:\n got %q\nwant %q", config.Warnings, want)
	}
}

func TestConfigEmptyAlias(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("[aliases]\nname\n"))
	if err == nil || !strings.Contains(err.Error(), `invalid alias "name"`) {
		t.Fatalf("expected alias error, got %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()

	config, err := LoadFromPath(filepath.Join(dir, "missing"))
	if err != nil {
		t.Fatalf("missing file should be an empty config: %v", err)
	}
	if len(config.Global) != 0 {
		t.Fatalf("expected empty config, got %v", config.Global)
	}

	path := filepath.Join(dir, "config")
	if err := os.WriteFile(path, []byte("grid.cols 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	config, err = LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if v, _ := config.GetGlobalOption("grid.cols"); v != "8" {
		t.Fatalf("expected grid.cols=8, got %q", v)
	}

	if runtime.GOOS == "windows" {
		return
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(path, link); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(link); err == nil || !strings.Contains(err.Error(), "symlink not allowed") {
		t.Fatalf("expected symlink rejection, got %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom-config")
	got, err := GetConfigPath()
	if err != nil || got != "/tmp/custom-config" {
		t.Fatalf("expected override path, got %q (%v)", got, err)
	}

	dir := t.TempDir()
	homeVar := "HOME"
	if runtime.GOOS == "windows" {
		homeVar = "USERPROFILE"
	}
	t.Setenv(homeVar, dir)
	t.Setenv(EnvConfigPath, "")
	got, err = GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath returned error: %v", err)
	}
	if want := filepath.Join(dir, ".gridedit", "config"); got != want {
		t.Fatalf("expected default path %q, got %q", want, got)
	}
}

func TestSchemaResolve(t *testing.T) {
	s := DefaultSchema()
	config := NewConfig()
	config.SetGlobalOption("keyboard.debounce", "20ms")
	config.SetCommandOption("edit", "grid.zoom", "1.5")

	if d, err := s.ResolveDuration(config, "edit", "keyboard.debounce"); err != nil || d != 20*time.Millisecond {
		t.Errorf("expected global value 20ms, got %v (%v)", d, err)
	}
	if z, err := s.ResolveFloat(config, "edit", "grid.zoom"); err != nil || z != 1.5 {
		t.Errorf("expected section value 1.5, got %v (%v)", z, err)
	}
	if z, err := s.ResolveFloat(config, "", "grid.zoom"); err != nil || z != 1 {
		t.Errorf("expected default 1 outside the section, got %v (%v)", z, err)
	}
	if n, err := s.ResolveInt(nil, "", "log.buffer-size"); err != nil || n != 1000 {
		t.Errorf("expected default 1000, got %d (%v)", n, err)
	}
	if n, err := s.ResolveInt(config, "", "unknown"); err != nil || n != 0 {
		t.Errorf("unknown key resolves to zero, got %d (%v)", n, err)
	}

	t.Setenv("GRIDEDIT_LOG_LEVEL", "error")
	if v := s.Resolve(config, "edit", "log.level"); v != "error" {
		t.Errorf("expected env override, got %q", v)
	}

	config.SetGlobalOption("history.limit", "lots")
	if _, err := s.ResolveInt(config, "", "history.limit"); err == nil {
		t.Error("expected parse error")
	}
}

func TestSchemaRegisterAndHelp(t *testing.T) {
	s := NewSchema()
	s.Register(ConfigOption{Key: "a", Type: TypeInt, Default: "1", Description: "first"})
	s.Register(ConfigOption{Key: "a", Type: TypeInt, Default: "2", Description: "first"})
	s.Register(ConfigOption{Key: "b", Section: "edit", Description: "second", EnvVar: "B"})

	if n := len(s.Options()); n != 2 {
		t.Fatalf("duplicate registration must replace, got %d options", n)
	}
	if s.Lookup("", "a").Default != "2" {
		t.Error("last registration wins")
	}
	if !s.IsKnown("edit", "a") || !s.IsKnown("edit", "b") || s.IsKnown("", "b") {
		t.Error("unexpected IsKnown results")
	}
	if got := s.Sections(); !slices.Equal(got, []string{"edit"}) {
		t.Errorf("unexpected sections %v", got)
	}

	help := s.FormatHelp()
	for _, want := range []string{"Global Options:", "(type: int, default: 2)", "[edit] Options:", "(env: B)"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestSetKeyInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config")

	if err := SetKeyInFile(path, "grid.rows", "50"); err != nil {
		t.Fatalf("SetKeyInFile: %v", err)
	}
	if err := os.WriteFile(path, []byte("# comment\ngrid.rows 50\n\n[edit]\ngrid.cols 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SetKeyInFile(path, "grid.cols", "9"); err != nil {
		t.Fatal(err)
	}
	if err := SetKeyInFile(path, "grid.rows", "60"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "# comment\ngrid.rows 60\n\ngrid.cols 9\n[edit]\ngrid.cols 4\n"
	if string(data) != want {
		t.Fatalf("unexpected file:\n%q\nwant\n%q", data, want)
	}

	config, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := config.GetCommandOption("edit", "grid.cols"); v != "4" {
		t.Errorf("section value must be untouched, got %q", v)
	}
}

func TestSetSectionKeyInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("grid.rows 50\n\n[edit]\n# widths\ngrid.cols 4\n\n[view]\ngrid.zoom 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, kv := range [][3]string{
		{"edit", "grid.cols", "6"},
		{"edit", "headers", "a,b"},
		{"log", "log.level", "debug"},
	} {
		if err := SetSectionKeyInFile(path, kv[0], kv[1], kv[2]); err != nil {
			t.Fatalf("SetSectionKeyInFile(%v): %v", kv, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "grid.rows 50\n\n[edit]\n# widths\ngrid.cols 6\n\nheaders a,b\n[view]\ngrid.zoom 2\n[log]\nlog.level debug\n"
	if string(data) != want {
		t.Fatalf("unexpected file:\n%q\nwant\n%q", data, want)
	}
}

func TestConfigMalformedSection(t *testing.T) {
	config, err := LoadFromReader(strings.NewReader("grid.rows 3\n[edit\ngrid.cols 4\n[ ]\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{`line 2: malformed section header "[edit"`, `line 4: malformed section header "[ ]"`}
	if !slices.Equal(config.Warnings, want) {
		t.Errorf("unexpected warnings %q", config.Warnings)
	}
	if v, _ := config.GetGlobalOption("grid.cols"); v != "4" {
		t.Errorf("lines after a malformed header stay in the current section, got %q", v)
	}
}
