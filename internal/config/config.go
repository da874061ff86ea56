// Package config loads the naming configuration of the lowering core
// from caselower.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level caselower.yaml document.
type Config struct {
	Naming Naming `yaml:"naming"`
}

// Naming tunes binder naming.
type Naming struct {
	// ReservedNames are never taken from the source as binder names.
	// Explicit pattern arguments and declared parameter names are further
	// rejected when they are a single letter or carry a digit suffix.
	ReservedNames []string `yaml:"reserved_names,omitempty"`

	// CanonicalNames replace generic declared parameter names, keyed by
	// constructor name with one entry per parameter position.
	//
	//   canonical_names:
	//     Ok: [value]
	//     Error: [reason]
	CanonicalNames map[string][]string `yaml:"canonical_names,omitempty"`

	// UnusedPrefix marks binders that are never read. Defaults to "_".
	UnusedPrefix string `yaml:"unused_prefix,omitempty"`

	// TempPattern is the regular expression recognising optimizer
	// extraction temporaries by name.
	TempPattern string `yaml:"temp_pattern,omitempty"`

	// Receiver is the binder name used for the instance receiver.
	Receiver string `yaml:"receiver,omitempty"`

	// ExtendDefaults merges ReservedNames and CanonicalNames into the
	// built-in lists instead of replacing them.
	ExtendDefaults bool `yaml:"extend_defaults,omitempty"`

	tempRe *regexp.Regexp
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and parses a caselower.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses caselower.yaml content. The path is used only for error
// messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Find searches for caselower.yaml starting at dir and walking up to the
// filesystem root. It returns "" and a nil error when none exists.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range []string{ConfigFileName, ConfigFileAltName} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	n := &c.Naming
	if n.TempPattern != "" {
		if _, err := regexp.Compile(n.TempPattern); err != nil {
			return fmt.Errorf("%s: naming.temp_pattern: %w", path, err)
		}
	}
	if n.UnusedPrefix != "" && strings.TrimLeft(n.UnusedPrefix, "_") != "" {
		return fmt.Errorf("%s: naming.unused_prefix must consist of underscores, got %q", path, n.UnusedPrefix)
	}
	if n.Receiver != "" && !isIdentifier(n.Receiver) {
		return fmt.Errorf("%s: naming.receiver %q is not an identifier", path, n.Receiver)
	}
	for _, name := range n.ReservedNames {
		if name == "" {
			return fmt.Errorf("%s: naming.reserved_names contains an empty name", path)
		}
	}
	for ctor, names := range n.CanonicalNames {
		for i, name := range names {
			if !isIdentifier(name) {
				return fmt.Errorf("%s: naming.canonical_names.%s[%d]: %q is not an identifier", path, ctor, i, name)
			}
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	n := &c.Naming
	if n.UnusedPrefix == "" {
		n.UnusedPrefix = DefaultUnusedPrefix
	}
	if n.TempPattern == "" {
		n.TempPattern = DefaultTempPattern
	}
	if n.Receiver == "" {
		n.Receiver = DefaultReceiver
	}
	if n.ReservedNames == nil {
		n.ReservedNames = append([]string(nil), DefaultReservedNames...)
	} else if n.ExtendDefaults {
		n.ReservedNames = append(append([]string(nil), DefaultReservedNames...), n.ReservedNames...)
	}
	if n.CanonicalNames == nil {
		n.CanonicalNames = copyCanonical(DefaultCanonicalNames)
	} else if n.ExtendDefaults {
		merged := copyCanonical(DefaultCanonicalNames)
		for k, v := range n.CanonicalNames {
			merged[k] = v
		}
		n.CanonicalNames = merged
	}
	n.tempRe = regexp.MustCompile(n.TempPattern)
}

// TempRegexp returns the compiled temporary-name pattern.
func (n *Naming) TempRegexp() *regexp.Regexp {
	if n.tempRe == nil {
		pattern := n.TempPattern
		if pattern == "" {
			pattern = DefaultTempPattern
		}
		n.tempRe = regexp.MustCompile(pattern)
	}
	return n.tempRe
}

// Canonical returns the canonical name for parameter i of ctor.
func (n *Naming) Canonical(ctor string, i int) (string, bool) {
	names, ok := n.CanonicalNames[ctor]
	if !ok || i < 0 || i >= len(names) || names[i] == "" {
		return "", false
	}
	return names[i], true
}

func copyCanonical(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
