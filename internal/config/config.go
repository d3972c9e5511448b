// Package config reads the gridedit configuration file.
//
// The format is line based, one `name value` pair per line:
//
//	# defaults for every command
//	grid.rows 200
//	log.level info
//
//	[edit]
//	headers Name, Qty, Price
//
//	[aliases]
//	qty quantity, amount
//
// A `[command]` header starts a section whose options override the global
// ones for that command. The [aliases] section is special: each line maps
// a grid column title to comma separated suggestion sheet titles.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// AliasSection is the name of the section holding suggestion aliases.
const AliasSection = "aliases"

// Config is a parsed configuration file.
type Config struct {
	Global   map[string]string
	Commands map[string]map[string]string
	// Aliases maps a grid column title to the suggestion sheet titles tried
	// for it, in order.
	Aliases map[string][]string
	// Warnings are non-fatal problems found while loading: unknown options,
	// values of the wrong type and malformed lines.
	Warnings []string
}

// NewConfig returns an empty configuration.
func NewConfig() *Config {
	return &Config{
		Global:   map[string]string{},
		Commands: map[string]map[string]string{},
		Aliases:  map[string][]string{},
	}
}

// LoadFromPath loads the file at path. A missing file is an empty config;
// a symlink is an error.
func LoadFromPath(path string) (*Config, error) {
	fi, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewConfig(), nil
	case err != nil:
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	case fi.Mode()&fs.ModeSymlink != 0:
		return nil, fmt.Errorf("symlink not allowed in config path: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader parses a configuration from r and validates it against
// DefaultSchema, recording problems as Warnings.
func LoadFromReader(r io.Reader) (*Config, error) {
	p := parser{config: NewConfig()}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		if err := p.parse(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	p.config.Warnings = append(p.config.Warnings, ValidateConfig(p.config, DefaultSchema())...)
	return p.config, nil
}

type parser struct {
	config  *Config
	section string
	line    int
}

func (p *parser) parse(text string) error {
	text = strings.TrimSpace(text)
	if text == "" || text[0] == '#' {
		return nil
	}

	if name, ok := strings.CutPrefix(text, "["); ok {
		name, ok = strings.CutSuffix(name, "]")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			p.warn("malformed section header %q", text)
			return nil
		}
		p.section = name
		if name != AliasSection {
			p.config.ensureSection(name)
		}
		return nil
	}

	name, value, _ := strings.Cut(text, " ")
	value = strings.TrimSpace(value)
	switch p.section {
	case "":
		p.config.Global[name] = value
	case AliasSection:
		if err := p.config.addAliases(name, value); err != nil {
			return fmt.Errorf("invalid alias %q: %w", name, err)
		}
	default:
		p.config.Commands[p.section][name] = value
	}
	return nil
}

func (p *parser) warn(format string, args ...any) {
	p.config.Warnings = append(p.config.Warnings, fmt.Sprintf("line %d: ", p.line)+fmt.Sprintf(format, args...))
}

func (c *Config) ensureSection(name string) map[string]string {
	opts := c.Commands[name]
	if opts == nil {
		opts = map[string]string{}
		c.Commands[name] = opts
	}
	return opts
}

// addAliases appends the comma separated list to key; repeated keys append.
func (c *Config) addAliases(key, list string) error {
	if list == "" {
		return errors.New("no aliases given")
	}
	for alias := range strings.SplitSeq(list, ",") {
		if alias = strings.TrimSpace(alias); alias != "" {
			c.Aliases[key] = append(c.Aliases[key], alias)
		}
	}
	return nil
}

// GetGlobalOption returns a global option.
func (c *Config) GetGlobalOption(name string) (string, bool) {
	v, ok := c.Global[name]
	return v, ok
}

// GetCommandOption returns the option from the command's section, or the
// global one when the section does not set it.
func (c *Config) GetCommandOption(command, name string) (string, bool) {
	if v, ok := c.Commands[command][name]; ok {
		return v, true
	}
	return c.GetGlobalOption(name)
}

func (c *Config) SetGlobalOption(name, value string) { c.Global[name] = value }

func (c *Config) SetCommandOption(command, name, value string) {
	c.ensureSection(command)[name] = value
}

// parseBool accepts true, false, 1, 0, yes, no, on and off in any case.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: %s", s)
}
