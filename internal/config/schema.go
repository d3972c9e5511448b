package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// OptionType represents the expected type of a configuration option value.
type OptionType string

const (
	// TypeString is a plain string value (the default for all config values).
	TypeString OptionType = "string"
	// TypeBool is a boolean value (true/false/yes/no/1/0/on/off).
	TypeBool OptionType = "bool"
	// TypeInt is an integer value.
	TypeInt OptionType = "int"
	// TypeFloat is a decimal value (e.g. "1.25").
	TypeFloat OptionType = "float"
	// TypeDuration is a Go time.Duration value (e.g. "16ms", "1s").
	TypeDuration OptionType = "duration"
)

// ConfigOption declares a single configuration option with its type, default,
// documentation, and environment variable override.
type ConfigOption struct {
	// Key is the option name as it appears in the config file.
	Key string
	// Type is the expected value type for validation.
	Type OptionType
	// Default is the default value as a string, or "" for no default.
	Default string
	// Description is a human-readable description of the option.
	Description string
	// Section is "" for global options, or a command name.
	Section string
	// EnvVar is the environment variable that overrides this option, or "".
	EnvVar string
}

// ConfigSchema declares the known configuration options. It drives
// validation, the typed resolvers, env var overrides and `config schema`.
type ConfigSchema struct {
	options   []*ConfigOption
	byKey     map[string]*ConfigOption
	bySection map[string]map[string]*ConfigOption
}

// NewSchema creates a new empty ConfigSchema.
func NewSchema() *ConfigSchema {
	return &ConfigSchema{
		byKey:     make(map[string]*ConfigOption),
		bySection: make(map[string]map[string]*ConfigOption),
	}
}

// Register adds an option. A duplicate key within a section replaces the
// earlier registration.
func (s *ConfigSchema) Register(opt ConfigOption) {
	ref := &opt
	if opt.Section == "" {
		if old := s.byKey[opt.Key]; old != nil {
			*old = opt
			return
		}
		s.byKey[opt.Key] = ref
	} else {
		sec := s.bySection[opt.Section]
		if sec == nil {
			sec = make(map[string]*ConfigOption)
			s.bySection[opt.Section] = sec
		}
		if old := sec[opt.Key]; old != nil {
			*old = opt
			return
		}
		sec[opt.Key] = ref
	}
	s.options = append(s.options, ref)
}

// RegisterAll adds multiple options.
func (s *ConfigSchema) RegisterAll(opts []ConfigOption) {
	for _, opt := range opts {
		s.Register(opt)
	}
}

// Options returns every registered option in registration order.
func (s *ConfigSchema) Options() []ConfigOption {
	out := make([]ConfigOption, len(s.options))
	for i, o := range s.options {
		out[i] = *o
	}
	return out
}

// Lookup returns the option for a key in a section ("" for global), or nil.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	if section == "" {
		return s.byKey[key]
	}
	return s.bySection[section][key]
}

// IsKnown reports whether key is valid in section. Global keys are valid in
// every command section, where they override the global value.
func (s *ConfigSchema) IsKnown(section, key string) bool {
	if section != "" && s.bySection[section][key] != nil {
		return true
	}
	return s.byKey[key] != nil
}

// Sections returns the sorted names of all sections with options.
func (s *ConfigSchema) Sections() []string {
	out := make([]string, 0, len(s.bySection))
	for sec := range s.bySection {
		out = append(out, sec)
	}
	slices.Sort(out)
	return out
}

// Resolve returns the effective value of a key for a command, checking in
// order: the option's environment variable, the command section, the global
// value, and the schema default. Pass an empty command for global lookups.
func (s *ConfigSchema) Resolve(c *Config, command, key string) string {
	opt := s.Lookup(command, key)
	if opt == nil {
		opt = s.Lookup("", key)
	}
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if c != nil {
		if v, ok := c.GetCommandOption(command, key); ok {
			return v
		}
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// ResolveInt is Resolve parsed as an int. An unset option without a default
// is zero.
func (s *ConfigSchema) ResolveInt(c *Config, command, key string) (int, error) {
	v := s.Resolve(c, command, key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("option %s: expected int, got %q", key, v)
	}
	return n, nil
}

// ResolveFloat is Resolve parsed as a float64.
func (s *ConfigSchema) ResolveFloat(c *Config, command, key string) (float64, error) {
	v := s.Resolve(c, command, key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("option %s: expected float, got %q", key, v)
	}
	return f, nil
}

// ResolveDuration is Resolve parsed as a time.Duration.
func (s *ConfigSchema) ResolveDuration(c *Config, command, key string) (time.Duration, error) {
	v := s.Resolve(c, command, key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("option %s: expected duration, got %q", key, v)
	}
	return d, nil
}

// ValidateConfig checks a loaded Config against the schema and returns
// sorted, human-readable issues: unknown options and type mismatches.
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	var issues []string

	for key, value := range c.Global {
		opt := s.Lookup("", key)
		if opt == nil {
			issues = append(issues, fmt.Sprintf("unknown global option: %q (value: %q)", key, value))
			continue
		}
		if err := validateType(opt.Type, value); err != nil {
			issues = append(issues, fmt.Sprintf("global option %q: %v", key, err))
		}
	}

	for section, opts := range c.Commands {
		for key, value := range opts {
			if !s.IsKnown(section, key) {
				issues = append(issues, fmt.Sprintf("unknown option for command %q: %q (value: %q)", section, key, value))
				continue
			}
			opt := s.Lookup(section, key)
			if opt == nil {
				opt = s.Lookup("", key)
			}
			if err := validateType(opt.Type, value); err != nil {
				issues = append(issues, fmt.Sprintf("option %q in [%s]: %v", key, section, err))
			}
		}
	}

	slices.Sort(issues)
	return issues
}

func validateType(t OptionType, value string) error {
	switch t {
	case TypeString, "":
		return nil
	case TypeBool:
		if _, err := parseBool(value); err != nil {
			return fmt.Errorf("expected bool, got %q", value)
		}
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("expected int, got %q", value)
		}
	case TypeFloat:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("expected float, got %q", value)
		}
	case TypeDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("expected duration, got %q", value)
		}
	default:
		return fmt.Errorf("unknown option type %q", t)
	}
	return nil
}

// FormatHelp returns a human-readable reference of all options, grouped by
// section.
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder
	b.WriteString("Global Options:\n")
	for _, o := range s.options {
		if o.Section == "" {
			writeOptionHelp(&b, *o)
		}
	}
	for _, sec := range s.Sections() {
		fmt.Fprintf(&b, "\n[%s] Options:\n", sec)
		for _, o := range s.options {
			if o.Section == sec {
				writeOptionHelp(&b, *o)
			}
		}
	}
	return b.String()
}

func writeOptionHelp(b *strings.Builder, o ConfigOption) {
	fmt.Fprintf(b, "  %-28s %s", o.Key, o.Description)
	var parts []string
	if o.Type != "" && o.Type != TypeString {
		parts = append(parts, "type: "+string(o.Type))
	}
	if o.Default != "" {
		parts = append(parts, "default: "+o.Default)
	}
	if o.EnvVar != "" {
		parts = append(parts, "env: "+o.EnvVar)
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteByte('\n')
}

// DefaultSchema returns the schema of every gridedit option. It is the
// single source of truth for names, types, defaults and env overrides.
func DefaultSchema() *ConfigSchema {
	s := NewSchema()
	s.RegisterAll([]ConfigOption{
		{Key: "grid.rows", Type: TypeInt, Default: "100", Description: "Initial number of rows"},
		{Key: "grid.cols", Type: TypeInt, Default: "26", Description: "Initial number of columns"},
		{Key: "grid.zoom", Type: TypeFloat, Default: "1", Description: "Initial zoom factor (0.5 to 3)"},

		{Key: "render.frame-interval", Type: TypeDuration, Default: "16ms", Description: "Display frame interval"},
		{Key: "render.theme", Type: TypeString, Default: "", Description: "TOML theme file", EnvVar: "GRIDEDIT_THEME"},

		{Key: "keyboard.debounce", Type: TypeDuration, Default: "50ms", Description: "Minimum gap between navigation keys"},

		{Key: "clipboard.command", Type: TypeString, Default: "", Description: "Shell command receiving copied text on stdin", EnvVar: "GRIDEDIT_CLIPBOARD"},
		{Key: "clipboard.dedup-window", Type: TypeDuration, Default: "300ms", Description: "Identical copies within this window are written once"},
		{Key: "clipboard.paste-debounce", Type: TypeDuration, Default: "10ms", Description: "Bracketed paste bursts within this window apply once"},

		{Key: "history.limit", Type: TypeInt, Default: "0", Description: "Max undo steps kept (0 is unlimited)"},

		{Key: "log.file", Type: TypeString, Default: "", Description: "Log file path (text output, rotated)", EnvVar: "GRIDEDIT_LOG_FILE"},
		{Key: "log.level", Type: TypeString, Default: "info", Description: "Log level: debug, info, warn, error", EnvVar: "GRIDEDIT_LOG_LEVEL"},
		{Key: "log.max-size-mb", Type: TypeInt, Default: "10", Description: "Max log file size in MB before rotation"},
		{Key: "log.max-files", Type: TypeInt, Default: "5", Description: "Max number of rotated log backup files"},
		{Key: "log.buffer-size", Type: TypeInt, Default: "1000", Description: "In-memory log buffer size (entries)"},

		{Key: "script", Section: "edit", Type: TypeString, Default: "", Description: "Macro script loaded on start"},
		{Key: "suggest", Section: "edit", Type: TypeString, Default: "", Description: "TSV sheet of suggestion sources"},
		{Key: "headers", Section: "edit", Type: TypeString, Default: "", Description: "Comma-separated column titles"},
	})
	return s
}
