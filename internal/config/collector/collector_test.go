package collector_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/config/collector"
	testutil "github.com/imamik/adapt-install/internal/testing"
)

func smallSchema() config.Schema {
	full := config.DefaultSchema("v2.1.0")
	port, _ := full.Lookup(config.KeyServerPort)
	db, _ := full.Lookup(config.KeyDBName)
	return config.Schema{port, db}
}

func TestCollect_InteractiveDefaults(t *testing.T) {
	prompter := testutil.NewScriptedPrompter()
	c := collector.New(config.ModeInteractive, nil, prompter, logr.Discard())

	record, err := c.Collect(context.Background(), smallSchema())
	require.NoError(t, err)

	assert.Equal(t, 5000, record[config.KeyServerPort])
	assert.Equal(t, "adapt-tenant-master", record[config.KeyDBName])
	assert.Equal(t, []string{config.KeyServerPort, config.KeyDBName}, prompter.Asked)
}

func TestCollect_InteractiveRepromptsUntilValid(t *testing.T) {
	prompter := testutil.NewScriptedPrompter().
		Answer(config.KeyServerPort, "not-a-port", "8080")
	c := collector.New(config.ModeInteractive, nil, prompter, logr.Discard())

	record, err := c.Collect(context.Background(), smallSchema())
	require.NoError(t, err)
	assert.Equal(t, 8080, record[config.KeyServerPort])
	assert.Equal(t, []string{config.KeyServerPort, config.KeyServerPort, config.KeyDBName}, prompter.Asked)
}

func TestCollect_OverrideSkipsPrompt(t *testing.T) {
	prompter := testutil.NewScriptedPrompter()
	c := collector.New(config.ModeInteractive, config.Overrides{config.KeyDBName: "custom_db"}, prompter, logr.Discard())

	record, err := c.Collect(context.Background(), smallSchema())
	require.NoError(t, err)
	assert.Equal(t, "custom_db", record[config.KeyDBName])
	assert.Equal(t, []string{config.KeyServerPort}, prompter.Asked)
}

func TestCollect_InvalidOverrideFallsBackToPromptWhenInteractive(t *testing.T) {
	prompter := testutil.NewScriptedPrompter().Answer(config.KeyServerPort, "6000")
	c := collector.New(config.ModeInteractive, config.Overrides{config.KeyServerPort: "abc"}, prompter, logr.Discard())

	record, err := c.Collect(context.Background(), smallSchema())
	require.NoError(t, err)
	assert.Equal(t, 6000, record[config.KeyServerPort])
}

func TestCollect_Unattended(t *testing.T) {
	t.Run("defaults without prompting", func(t *testing.T) {
		c := collector.New(config.ModeUnattended, nil, nil, logr.Discard())
		record, err := c.Collect(context.Background(), config.DefaultSchema("v2.1.0"))
		require.NoError(t, err)
		assert.Equal(t, "tags/v2.1.0", record[config.KeyFrameworkRevision])
		assert.Equal(t, false, record[config.KeyUseFFmpeg])

		for _, s := range config.DefaultSchema("v2.1.0") {
			if s.Required {
				assert.NotEmpty(t, record.String(s.Name), s.Name)
			}
		}
	})

	t.Run("invalid override is fatal", func(t *testing.T) {
		c := collector.New(config.ModeUnattended, config.Overrides{config.KeyServerPort: "abc"}, nil, logr.Discard())
		_, err := c.Collect(context.Background(), smallSchema())

		var verr *config.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, config.KeyServerPort, verr.Setting)
		assert.ErrorIs(t, err, config.ErrPatternMismatch)
	})

	t.Run("missing credentials are fatal", func(t *testing.T) {
		c := collector.New(config.ModeUnattended, nil, nil, logr.Discard())
		_, err := c.Collect(context.Background(), config.SuperUserSchema())
		assert.ErrorIs(t, err, config.ErrRequired)
	})

	t.Run("no framework tag leaves revision unresolved", func(t *testing.T) {
		c := collector.New(config.ModeUnattended, nil, nil, logr.Discard())
		_, err := c.Collect(context.Background(), config.DefaultSchema(""))
		assert.ErrorIs(t, err, config.ErrRequired)
	})
}

func TestCollect_SuperUser(t *testing.T) {
	t.Run("overrides", func(t *testing.T) {
		c := collector.New(config.ModeUnattended, testutil.CredentialOverrides(), nil, logr.Discard())
		record, err := c.Collect(context.Background(), config.SuperUserSchema())
		require.NoError(t, err)
		assert.Equal(t, testutil.TestEmail, record[config.KeyEmail])
	})

	t.Run("retype mismatch unattended", func(t *testing.T) {
		overrides := testutil.MergeOverrides(testutil.CredentialOverrides(), config.Overrides{config.KeyRetypePassword: "other"})
		c := collector.New(config.ModeUnattended, overrides, nil, logr.Discard())
		_, err := c.Collect(context.Background(), config.SuperUserSchema())
		assert.ErrorIs(t, err, config.ErrMismatch)
	})

	t.Run("retype mismatch interactive asks again", func(t *testing.T) {
		prompter := testutil.NewScriptedPrompter().
			Answer(config.KeyEmail, "admin@example.com").
			Answer(config.KeyPassword, "secret").
			Answer(config.KeyRetypePassword, "typo", "secret")
		c := collector.New(config.ModeInteractive, nil, prompter, logr.Discard())

		record, err := c.Collect(context.Background(), config.SuperUserSchema())
		require.NoError(t, err)
		assert.Equal(t, "secret", record[config.KeyRetypePassword])
	})
}

func TestCollect_SensitiveValuesStayOutOfLogs(t *testing.T) {
	var logs strings.Builder
	log := funcr.New(func(prefix, args string) {
		logs.WriteString(prefix + args + "\n")
	}, funcr.Options{Verbosity: 1})

	var questions []collector.Question
	p := promptFunc(func(q collector.Question) (string, error) {
		questions = append(questions, q)
		return "correct-horse", nil
	})
	overrides := config.Overrides{
		config.KeyEmail:          "admin@example.com",
		config.KeyPassword:       "correct-horse",
		config.KeyRetypePassword: "wrong-horse",
	}
	c := collector.New(config.ModeInteractive, overrides, p, log)

	record, err := c.Collect(context.Background(), config.SuperUserSchema())
	require.NoError(t, err)
	assert.Equal(t, "correct-horse", record[config.KeyRetypePassword])

	require.Len(t, questions, 1)
	assert.True(t, questions[0].Sensitive)
	assert.Empty(t, questions[0].Default)
	assert.Contains(t, logs.String(), config.KeyRetypePassword)
	assert.NotContains(t, logs.String(), "horse")
}

func TestCollect_PromptErrorPropagates(t *testing.T) {
	prompter := testutil.NewScriptedPrompter()
	c := collector.New(config.ModeInteractive, nil, prompter, logr.Discard())

	_, err := c.Collect(context.Background(), config.SuperUserSchema())
	assert.True(t, errors.Is(err, testutil.ErrNoAnswer))
}

func TestCollect_NoPrompterInteractive(t *testing.T) {
	c := collector.New(config.ModeInteractive, nil, nil, logr.Discard())
	_, err := c.Collect(context.Background(), smallSchema())
	assert.Error(t, err)
}

func TestQuestionValidate(t *testing.T) {
	var captured collector.Question
	p := promptFunc(func(q collector.Question) (string, error) {
		captured = q
		return "", nil
	})
	c := collector.New(config.ModeInteractive, nil, p, logr.Discard())

	_, err := c.Collect(context.Background(), smallSchema()[:1])
	require.NoError(t, err)

	assert.Equal(t, "5000", captured.Default)
	assert.NoError(t, captured.Validate(""))
	assert.NoError(t, captured.Validate("8080"))
	assert.Error(t, captured.Validate("eighty"))
}

type promptFunc func(collector.Question) (string, error)

func (f promptFunc) Ask(_ context.Context, q collector.Question) (string, error) { return f(q) }

func (f promptFunc) Confirm(context.Context, string, string, bool) (bool, error) { return true, nil }
