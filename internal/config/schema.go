package config

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// OptionType represents the expected type of a configuration option value.
type OptionType string

const (
	// TypeString is a plain string value (the default for all config values).
	TypeString OptionType = "string"
	// TypeBool is a boolean value (true/false/yes/no/1/0/on/off).
	TypeBool OptionType = "bool"
	// TypeInt is a non-negative integer value.
	TypeInt OptionType = "int"
	// TypePath is a file system path.
	TypePath OptionType = "path"
)

// Global option keys.
const (
	KeyStateFile        = "state.file"
	KeyStatePersist     = "state.persist"
	KeyPersistVariables = "state.persist-variables"
	KeyClipboard        = "clipboard.enabled"
	KeyMouse            = "ui.mouse"
	KeyAltScreen        = "ui.alt-screen"
	KeyColor            = "color"
	KeyLogFile          = "log.file"
	KeyLogLevel         = "log.level"
	KeyLogMaxSizeMB     = "log.max-size-mb"
	KeyLogMaxFiles      = "log.max-files"
)

// ConfigOption declares a single configuration option with its type, default,
// documentation, and environment variable override.
type ConfigOption struct {
	// Key is the option name as it appears in the config file (kebab-case).
	Key string
	// Type is the expected value type for validation.
	Type OptionType
	// Default is the default value as a string, or "" for no default.
	Default string
	// Choices, when set, restricts the value to one of the listed strings.
	Choices []string
	// Description is a human-readable description of the option.
	Description string
	// Section is "" for global options, or a command name.
	Section string
	// EnvVar is the environment variable that overrides this option, or "".
	EnvVar string
}

// ConfigSchema declares the expected configuration options for the application.
// It is used for validation, documentation, typed getters, and env var mapping.
type ConfigSchema struct {
	options []*ConfigOption
	// byKey indexes global options by key for fast lookup.
	byKey map[string]*ConfigOption
	// bySection indexes command options by section then key.
	bySection map[string]map[string]*ConfigOption
}

// NewSchema creates a new empty ConfigSchema.
func NewSchema() *ConfigSchema {
	return &ConfigSchema{
		byKey:     make(map[string]*ConfigOption),
		bySection: make(map[string]map[string]*ConfigOption),
	}
}

// Register adds a ConfigOption to the schema. Duplicate keys within the same
// section are silently overwritten (last registration wins).
func (s *ConfigSchema) Register(opt ConfigOption) {
	ref := new(ConfigOption)
	*ref = opt
	s.options = append(s.options, ref)
	if opt.Section == "" {
		s.byKey[opt.Key] = ref
	} else {
		if s.bySection[opt.Section] == nil {
			s.bySection[opt.Section] = make(map[string]*ConfigOption)
		}
		s.bySection[opt.Section][opt.Key] = ref
	}
}

// RegisterAll adds multiple ConfigOptions to the schema.
func (s *ConfigSchema) RegisterAll(opts []ConfigOption) {
	for _, opt := range opts {
		s.Register(opt)
	}
}

// Lookup returns the ConfigOption for a key in a given section ("" for global).
// Returns nil if the key is not registered.
func (s *ConfigSchema) Lookup(section, key string) *ConfigOption {
	if section == "" {
		return s.byKey[key]
	}
	if sec, ok := s.bySection[section]; ok {
		return sec[key]
	}
	return nil
}

// IsKnown returns true if the key is registered in the given section.
// For command sections, global keys are also considered known.
func (s *ConfigSchema) IsKnown(section, key string) bool {
	if section == "" {
		return s.byKey[key] != nil
	}
	if sec, ok := s.bySection[section]; ok {
		if sec[key] != nil {
			return true
		}
	}
	return s.byKey[key] != nil
}

// GlobalOptions returns all registered global options (Section == "").
func (s *ConfigSchema) GlobalOptions() []ConfigOption {
	return s.SectionOptions("")
}

// SectionOptions returns all registered options for a specific section.
func (s *ConfigSchema) SectionOptions(section string) []ConfigOption {
	var out []ConfigOption
	for _, o := range s.options {
		if o.Section == section {
			out = append(out, *o)
		}
	}
	return out
}

// Sections returns a sorted list of all registered non-empty section names.
func (s *ConfigSchema) Sections() []string {
	out := make([]string, 0, len(s.bySection))
	for sec := range s.bySection {
		out = append(out, sec)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the effective value for a global config key by checking,
// in order: (1) the environment variable declared in the schema for this key,
// (2) the config value, (3) the schema default. Returns "" if the key is not
// found anywhere.
func (s *ConfigSchema) Resolve(c *Config, key string) string {
	opt := s.Lookup("", key)
	if opt != nil && opt.EnvVar != "" {
		if v, ok := os.LookupEnv(opt.EnvVar); ok {
			return v
		}
	}
	if c != nil {
		if v, ok := c.GetGlobalOption(key); ok {
			return v
		}
	}
	if opt != nil {
		return opt.Default
	}
	return ""
}

// ResolveBool is Resolve parsed as a boolean. Unparseable values fall back to
// the schema default.
func (s *ConfigSchema) ResolveBool(c *Config, key string) bool {
	if b, err := parseBool(s.Resolve(c, key)); err == nil {
		return b
	}
	if opt := s.Lookup("", key); opt != nil {
		b, _ := parseBool(opt.Default)
		return b
	}
	return false
}

// ResolveInt is Resolve parsed as an integer. Unparseable or negative values
// fall back to the schema default.
func (s *ConfigSchema) ResolveInt(c *Config, key string) int {
	if i, err := strconv.Atoi(s.Resolve(c, key)); err == nil && i >= 0 {
		return i
	}
	if opt := s.Lookup("", key); opt != nil {
		i, _ := strconv.Atoi(opt.Default)
		return i
	}
	return 0
}

// ResolveCommandBool resolves a boolean option for a command section,
// falling back to the global value and then the section default.
func (s *ConfigSchema) ResolveCommandBool(c *Config, command, key string) bool {
	if c != nil {
		if v, ok := c.GetCommandOption(command, key); ok {
			if b, err := parseBool(v); err == nil {
				return b
			}
		}
	}
	opt := s.Lookup(command, key)
	if opt == nil {
		opt = s.Lookup("", key)
	}
	if opt == nil {
		return false
	}
	b, _ := parseBool(opt.Default)
	return b
}

// ValidateConfig checks a loaded Config against the schema and returns a list
// of human-readable issues (empty if the config is valid). Validation includes:
//   - Unknown global options (not in schema)
//   - Unknown command options (not in schema for that section, and not global)
//   - Type mismatches and values outside the declared choices
func ValidateConfig(c *Config, s *ConfigSchema) []string {
	var issues []string

	for key, value := range c.Global {
		opt := s.Lookup("", key)
		if opt == nil {
			issues = append(issues, fmt.Sprintf("unknown global option: %q (value: %q)", key, value))
			continue
		}
		if err := validateOption(opt, value); err != nil {
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
			if err := validateOption(opt, value); err != nil {
				issues = append(issues, fmt.Sprintf("option %q in [%s]: %v", key, section, err))
			}
		}
	}

	sort.Strings(issues)
	return issues
}

// Validate checks value against the option registered for key in section.
// Unregistered keys are accepted.
func (s *ConfigSchema) Validate(section, key, value string) error {
	opt := s.Lookup(section, key)
	if opt == nil {
		return nil
	}
	return validateOption(opt, value)
}

func validateOption(opt *ConfigOption, value string) error {
	if err := validateType(opt.Type, value); err != nil {
		return err
	}
	if len(opt.Choices) > 0 && !slices.Contains(opt.Choices, value) {
		return fmt.Errorf("expected one of %s, got %q", strings.Join(opt.Choices, "|"), value)
	}
	return nil
}

// validateType checks that a string value matches the expected OptionType.
func validateType(t OptionType, value string) error {
	switch t {
	case TypeString, "":
		return nil
	case TypePath:
		if value == "" {
			return fmt.Errorf("expected path, got empty value")
		}
	case TypeBool:
		if _, err := parseBool(value); err != nil {
			return fmt.Errorf("expected bool, got %q", value)
		}
	case TypeInt:
		if i, err := strconv.Atoi(value); err != nil || i < 0 {
			return fmt.Errorf("expected non-negative int, got %q", value)
		}
	default:
		return fmt.Errorf("unknown option type %q", t)
	}
	return nil
}

// --- Help text generation ---

// FormatHelp returns a formatted, human-readable reference of all registered
// options in the schema, grouped by section.
func (s *ConfigSchema) FormatHelp() string {
	var b strings.Builder

	globals := s.GlobalOptions()
	if len(globals) > 0 {
		b.WriteString("Global Options:\n")
		for _, o := range globals {
			writeOptionHelp(&b, o)
		}
	}

	for _, sec := range s.Sections() {
		opts := s.SectionOptions(sec)
		if len(opts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n[%s] Options:\n", sec)
		for _, o := range opts {
			writeOptionHelp(&b, o)
		}
	}

	fmt.Fprintf(&b, "\n[%s]\n  %-35s %s\n", ConstantsSection, "<name> <number>", "Named constant available to every expression")

	return b.String()
}

func writeOptionHelp(b *strings.Builder, o ConfigOption) {
	fmt.Fprintf(b, "  %-35s %s", o.Key, o.Description)
	parts := make([]string, 0, 4)
	if o.Type != "" && o.Type != TypeString {
		parts = append(parts, fmt.Sprintf("type: %s", o.Type))
	}
	if len(o.Choices) > 0 {
		parts = append(parts, fmt.Sprintf("one of: %s", strings.Join(o.Choices, "|")))
	}
	if o.Default != "" {
		parts = append(parts, fmt.Sprintf("default: %s", o.Default))
	}
	if o.EnvVar != "" {
		parts = append(parts, fmt.Sprintf("env: %s", o.EnvVar))
	}
	if len(parts) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
}

// --- Default schema ---

// DefaultSchema returns the canonical schema declaring all known termcalc
// configuration options.
func DefaultSchema() *ConfigSchema {
	s := NewSchema()
	s.RegisterAll(defaultGlobalOptions())
	s.RegisterAll(defaultCommandOptions())
	return s
}

func defaultGlobalOptions() []ConfigOption {
	return []ConfigOption{
		// State
		{Key: KeyStateFile, Type: TypePath, Description: "State file path (default: per-user data directory)", EnvVar: "TERMCALC_STATE_FILE"},
		{Key: KeyStatePersist, Type: TypeBool, Default: "true", Description: "Save history on quit and restore it on start"},
		{Key: KeyPersistVariables, Type: TypeBool, Default: "false", Description: "Also save and restore variables"},

		// Interface
		{Key: KeyClipboard, Type: TypeBool, Default: "true", Description: "Allow copying results to the system clipboard"},
		{Key: KeyMouse, Type: TypeBool, Default: "true", Description: "Enable mouse wheel and click history selection"},
		{Key: KeyAltScreen, Type: TypeBool, Default: "true", Description: "Use the terminal's alternate screen"},
		{Key: KeyColor, Type: TypeString, Default: "auto", Choices: []string{"auto", "always", "never"}, Description: "Color mode"},

		// Logging
		{Key: KeyLogFile, Type: TypePath, Description: "Log file path (JSON output)", EnvVar: "TERMCALC_LOG_FILE"},
		{Key: KeyLogLevel, Type: TypeString, Default: "info", Choices: []string{"debug", "info", "warn", "error"}, Description: "Log level", EnvVar: "TERMCALC_LOG_LEVEL"},
		{Key: KeyLogMaxSizeMB, Type: TypeInt, Default: "10", Description: "Max log file size in MB before rotation"},
		{Key: KeyLogMaxFiles, Type: TypeInt, Default: "5", Description: "Max number of rotated log backup files"},
	}
}

func defaultCommandOptions() []ConfigOption {
	return []ConfigOption{
		// [eval] section
		{Key: "echo", Section: "eval", Type: TypeBool, Default: "false", Description: "Print each expression alongside its result"},
	}
}
