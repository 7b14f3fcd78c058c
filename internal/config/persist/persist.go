// Package persist writes the resolved configuration to disk.
//
// Two files are produced under the install root: an environment file with
// every setting, and conf/config.json with the settings the application
// reads at runtime. Each save replaces both files completely.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"github.com/imamik/adapt-install/internal/config"
)

// File locations relative to the install root.
const (
	EnvFile    = ".env"
	ConfigDir  = "conf"
	ConfigFile = "config.json"
)

// Values injected into the structured settings file.
const (
	OutputPlugin = "adapt"
	DBType       = "mongoose"
	AuthLocal    = "local"
)

// Derived keys written only to the structured settings file.
const (
	KeyOutputPlugin = "outputPlugin"
	KeyDBType       = "dbType"
	KeyAuth         = "auth"
	KeyRoot         = "root"
	KeyUseSMTP      = "useSmtp"
)

// ErrEmptyWrite is returned when a write produced no bytes.
var ErrEmptyWrite = errors.New("nothing was written")

const envHeader = "# Written by adapt-install. Changes are replaced on the next install.\n"

// Persister saves configuration records under an install root.
type Persister struct {
	root string
}

// New returns a persister rooted at root. A relative root is resolved
// against the working directory.
func New(root string) (*Persister, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve install root %s: %w", root, err)
	}
	return &Persister{root: abs}, nil
}

// Root returns the absolute install root.
func (p *Persister) Root() string { return p.root }

// EnvPath returns the path of the environment file.
func (p *Persister) EnvPath() string { return filepath.Join(p.root, EnvFile) }

// ConfigPath returns the path of the structured settings file.
func (p *Persister) ConfigPath() string { return filepath.Join(p.root, ConfigDir, ConfigFile) }

// Save writes record to both files. record itself is not modified.
func (p *Persister) Save(record config.Record) error {
	if err := writeAtomic(p.EnvPath(), []byte(envHeader+encodeEnv(record.Strings())), 0o600); err != nil {
		return err
	}

	data, err := json.MarshalIndent(StructuredSettings(record, p.root), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", ConfigFile, err)
	}
	if err := os.MkdirAll(filepath.Join(p.root, ConfigDir), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", ConfigDir, err)
	}
	return writeAtomic(p.ConfigPath(), data, 0o600)
}

// LoadEnv reads the environment file back.
func (p *Persister) LoadEnv() (map[string]string, error) {
	values, err := godotenv.Read(p.EnvPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.EnvPath(), err)
	}
	return values, nil
}

// LoadSettings reads the structured settings file back.
func (p *Persister) LoadSettings() (map[string]any, error) {
	data, err := os.ReadFile(p.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.ConfigPath(), err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p.ConfigPath(), err)
	}
	return out, nil
}

// StructuredSettings derives the contents of the structured settings file:
// a copy of record with the fixed runtime values and root injected, the
// framework revision removed, and useSmtp derived from the SMTP service.
func StructuredSettings(record config.Record, root string) map[string]any {
	out := make(map[string]any, len(record)+5)
	for k, v := range record {
		out[k] = v
	}
	delete(out, config.KeyFrameworkRevision)

	out[KeyOutputPlugin] = OutputPlugin
	out[KeyDBType] = DBType
	out[KeyAuth] = AuthLocal
	out[KeyRoot] = root
	out[KeyUseSMTP] = UsesSMTP(record)
	return out
}

// UsesSMTP reports whether a mail service setting is present. Any non-empty
// value counts, including the "none" default.
func UsesSMTP(record config.Record) bool {
	return record.String(config.KeySMTPService) != ""
}

// encodeEnv renders one KEY=value line per setting, sorted by key, with
// values written as entered.
func encodeEnv(values map[string]string) string {
	var b strings.Builder
	for _, key := range slices.Sorted(maps.Keys(values)) {
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(values[key])
		b.WriteByte('\n')
	}
	return b.String()
}

func writeAtomic(path string, data []byte, perm os.FileMode) error {
	if len(data) == 0 {
		return fmt.Errorf("%s: %w", path, ErrEmptyWrite)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
