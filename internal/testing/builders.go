package testing

import (
	"maps"

	"github.com/imamik/adapt-install/internal/config"
)

// Test credentials used by the default builders.
const (
	TestEmail    = "admin@example.com"
	TestPassword = "correct-horse-battery"
	TestTag      = "v2.1.0"
)

// RecordBuilder provides a fluent interface for constructing configuration
// records. Each method returns a new builder (immutable) for chaining.
type RecordBuilder struct {
	record config.Record
}

// NewRecordBuilder starts from the defaults of the install schema.
func NewRecordBuilder() *RecordBuilder {
	record := make(config.Record)
	for _, s := range config.DefaultSchema(TestTag) {
		record[s.Name] = s.DefaultValue()
	}
	return &RecordBuilder{record: record}
}

// With sets a value.
func (b *RecordBuilder) With(name string, value any) *RecordBuilder {
	next := b.clone()
	next.record[name] = value
	return next
}

// Build returns the constructed record.
func (b *RecordBuilder) Build() config.Record {
	return b.record.Clone()
}

func (b *RecordBuilder) clone() *RecordBuilder {
	return &RecordBuilder{record: maps.Clone(b.record)}
}

// CredentialOverrides returns overrides for an unattended run that supply the
// super user credentials.
func CredentialOverrides() config.Overrides {
	return config.Overrides{
		config.KeyEmail:          TestEmail,
		config.KeyPassword:       TestPassword,
		config.KeyRetypePassword: TestPassword,
	}
}

// MergeOverrides combines override sets; later sets win.
func MergeOverrides(sets ...config.Overrides) config.Overrides {
	out := config.Overrides{}
	for _, s := range sets {
		maps.Copy(out, s)
	}
	return out
}
