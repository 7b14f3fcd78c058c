// Package collector resolves a settings schema into a configuration record.
//
// Each setting resolves from a valid override, then from a valid interactive
// answer, then from its default. Unattended runs never prompt: an invalid
// override or a required setting without a default is a validation failure.
package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/imamik/adapt-install/internal/config"
)

// Question is a single prompt shown to the operator.
type Question struct {
	Name        string
	Title       string
	Description string
	Default     string
	Required    bool
	Sensitive   bool
	Validate    func(string) error
}

// Prompter asks the operator for input.
type Prompter interface {
	// Ask returns the raw answer; an empty answer means "accept the default".
	Ask(ctx context.Context, q Question) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, title, description string, defaultYes bool) (bool, error)
}

// Collector resolves schemas according to the run mode.
type Collector struct {
	mode      config.Mode
	overrides config.Overrides
	prompter  Prompter
	log       logr.Logger
}

// New creates a collector. prompter may be nil in unattended mode.
func New(mode config.Mode, overrides config.Overrides, prompter Prompter, log logr.Logger) *Collector {
	if overrides == nil {
		overrides = config.Overrides{}
	}
	return &Collector{
		mode:      mode,
		overrides: overrides,
		prompter:  prompter,
		log:       log,
	}
}

// Collect resolves every setting of schema into a new record.
func (c *Collector) Collect(ctx context.Context, schema config.Schema) (config.Record, error) {
	record := make(config.Record, len(schema))
	for _, setting := range schema {
		value, err := c.resolve(ctx, setting, record)
		if err != nil {
			return nil, err
		}
		record[setting.Name] = value
	}
	return record, nil
}

// Override returns a raw override value.
func (c *Collector) Override(name string) (string, bool) {
	return c.overrides.Get(name)
}

func (c *Collector) resolve(ctx context.Context, s config.Setting, resolved config.Record) (any, error) {
	if raw, ok := c.overrides.Get(s.Name); ok {
		value, err := c.accept(s, raw, resolved)
		if err == nil {
			c.log.V(1).Info("setting resolved from override", "setting", s.Name)
			return value, nil
		}
		if !c.mode.Interactive() {
			return nil, &config.ValidationError{Setting: s.Name, Err: err}
		}
		c.log.Info("override rejected, asking instead", "setting", s.Name, "reason", err.Error())
	}

	if !c.mode.Interactive() {
		return c.fallback(s, resolved)
	}
	return c.ask(ctx, s, resolved)
}

// accept parses raw and applies the cross-setting match rule.
func (c *Collector) accept(s config.Setting, raw string, resolved config.Record) (any, error) {
	value, err := s.Parse(raw)
	if err != nil {
		return nil, err
	}
	if s.MustMatch != "" && config.FormatValue(value) != resolved.String(s.MustMatch) {
		return nil, config.ErrMismatch
	}
	return value, nil
}

// fallback resolves an unattended setting without an override.
func (c *Collector) fallback(s config.Setting, resolved config.Record) (any, error) {
	if !s.HasDefault() {
		if s.Required {
			return nil, &config.ValidationError{Setting: s.Name, Err: config.ErrRequired}
		}
		return "", nil
	}
	value := s.DefaultValue()
	if s.MustMatch != "" && config.FormatValue(value) != resolved.String(s.MustMatch) {
		return nil, &config.ValidationError{Setting: s.Name, Err: config.ErrMismatch}
	}
	return value, nil
}

// ask prompts until the answer is valid. An empty answer takes the default.
func (c *Collector) ask(ctx context.Context, s config.Setting, resolved config.Record) (any, error) {
	if c.prompter == nil {
		return nil, errors.New("no prompter configured for interactive mode")
	}

	q := Question{
		Name:        s.Name,
		Title:       s.Description,
		Description: s.Name,
		Required:    s.Required && !s.HasDefault(),
		Sensitive:   s.Sensitive,
		Validate: func(raw string) error {
			if raw == "" {
				if s.Required && !s.HasDefault() {
					return config.ErrRequired
				}
				return nil
			}
			_, err := c.accept(s, raw, resolved)
			return err
		},
	}
	if !s.Sensitive {
		q.Default = s.DefaultString()
	}

	for {
		raw, err := c.prompter.Ask(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("prompt for %s: %w", s.Name, err)
		}
		if raw == "" && s.HasDefault() {
			return c.fallback(s, resolved)
		}
		value, err := c.accept(s, raw, resolved)
		if err == nil {
			return value, nil
		}
		c.log.Info("invalid answer, asking again", "setting", s.Name, "reason", err.Error())
	}
}
