package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Kind is the value type of a setting.
type Kind int

const (
	// KindString values are stored as entered.
	KindString Kind = iota
	// KindInteger values are stored as int.
	KindInteger
	// KindBoolean values are stored as bool.
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// Setting describes one configurable value.
type Setting struct {
	Name        string
	Description string
	Kind        Kind
	Pattern     *regexp.Regexp
	Default     any
	Required    bool
	Sensitive   bool

	// MustMatch names an earlier setting in the same schema whose value
	// this one has to equal (password confirmation).
	MustMatch string
}

var (
	yesPattern = regexp.MustCompile(`^(?i:y(es)?|true|1)$`)
	noPattern  = regexp.MustCompile(`^(?i:n(o)?|false|0)$`)
)

// Parse validates raw against the setting's pattern and converts it to the
// setting's kind. An empty string is never valid here; callers fall back to
// the default before calling Parse.
func (s Setting) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrRequired
	}
	if s.Pattern != nil && !s.Pattern.MatchString(raw) {
		return nil, ErrPatternMismatch
	}

	switch s.Kind {
	case KindInteger:
		digits := strings.TrimRightFunc(raw, func(r rune) bool { return !unicode.IsDigit(r) })
		n, err := strconv.Atoi(digits)
		if err != nil {
			return nil, ErrNotInteger
		}
		return n, nil
	case KindBoolean:
		switch {
		case yesPattern.MatchString(raw):
			return true, nil
		case noPattern.MatchString(raw):
			return false, nil
		}
		return nil, ErrNotBoolean
	default:
		return raw, nil
	}
}

// DefaultValue returns the typed default, or nil when the setting has none.
func (s Setting) DefaultValue() any {
	switch v := s.Default.(type) {
	case nil:
		return nil
	case string:
		if s.Kind == KindString {
			return v
		}
		// "N"-style defaults for booleans and "5000"-style defaults for integers.
		if v == "" {
			return nil
		}
		parsed, err := s.Parse(v)
		if err != nil {
			return nil
		}
		return parsed
	default:
		return v
	}
}

// HasDefault reports whether the setting resolves without input.
func (s Setting) HasDefault() bool {
	v := s.DefaultValue()
	if v == nil {
		return false
	}
	if str, ok := v.(string); ok && s.Required {
		return str != ""
	}
	return true
}

// DefaultString renders the default the way a prompt shows it.
func (s Setting) DefaultString() string {
	if s.Kind == KindBoolean {
		if raw, ok := s.Default.(string); ok {
			return raw
		}
	}
	return FormatValue(s.DefaultValue())
}

// FormatValue renders a record value as plain text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Schema is an ordered list of settings.
type Schema []Setting

// Lookup returns the setting with the given name.
func (s Schema) Lookup(name string) (Setting, bool) {
	for _, setting := range s {
		if setting.Name == name {
			return setting, true
		}
	}
	return Setting{}, false
}

// Names returns the setting names in schema order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for _, setting := range s {
		names = append(names, setting.Name)
	}
	return names
}

// SensitiveNames returns the names of settings that must never be shown.
func (s Schema) SensitiveNames() map[string]bool {
	out := make(map[string]bool)
	for _, setting := range s {
		if setting.Sensitive {
			out[setting.Name] = true
		}
	}
	return out
}

// Merge returns a schema containing the settings of s followed by those of
// other, skipping names already present.
func (s Schema) Merge(other Schema) Schema {
	out := make(Schema, 0, len(s)+len(other))
	out = append(out, s...)
	for _, setting := range other {
		if _, exists := s.Lookup(setting.Name); !exists {
			out = append(out, setting)
		}
	}
	return out
}

// Record maps setting names to resolved values.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value of key rendered as text.
func (r Record) String(key string) string {
	return FormatValue(r[key])
}

// Int returns the value of key as an int, or 0 when absent or not numeric.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool returns the value of key as a bool.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Strings renders every value as text, the form used for the env file.
func (r Record) Strings() map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		out[k] = FormatValue(v)
	}
	return out
}
