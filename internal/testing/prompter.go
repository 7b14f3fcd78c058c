package testing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/imamik/adapt-install/internal/config/collector"
)

// ErrNoAnswer is returned when a ScriptedPrompter runs out of answers for a
// question that cannot be skipped.
var ErrNoAnswer = errors.New("no scripted answer")

// ScriptedPrompter replays canned answers. An unscripted optional question is
// answered with "", which accepts the default.
type ScriptedPrompter struct {
	mu       sync.Mutex
	answers  map[string][]string
	confirms []bool

	Asked     []string
	Confirmed []string
}

// NewScriptedPrompter creates a prompter with no scripted answers.
func NewScriptedPrompter() *ScriptedPrompter {
	return &ScriptedPrompter{answers: make(map[string][]string)}
}

// Answer queues answers for the named question, consumed in order.
func (p *ScriptedPrompter) Answer(name string, answers ...string) *ScriptedPrompter {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answers[name] = append(p.answers[name], answers...)
	return p
}

// ConfirmWith queues replies for confirmation prompts, consumed in order.
func (p *ScriptedPrompter) ConfirmWith(replies ...bool) *ScriptedPrompter {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirms = append(p.confirms, replies...)
	return p
}

// Ask implements collector.Prompter.
func (p *ScriptedPrompter) Ask(_ context.Context, q collector.Question) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Asked = append(p.Asked, q.Name)

	queue := p.answers[q.Name]
	if len(queue) == 0 {
		if q.Required {
			return "", fmt.Errorf("%s: %w", q.Name, ErrNoAnswer)
		}
		return "", nil
	}
	p.answers[q.Name] = queue[1:]
	return queue[0], nil
}

// Confirm implements collector.Prompter.
func (p *ScriptedPrompter) Confirm(_ context.Context, title, _ string, _ bool) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Confirmed = append(p.Confirmed, title)

	if len(p.confirms) == 0 {
		return false, fmt.Errorf("confirm %q: %w", title, ErrNoAnswer)
	}
	reply := p.confirms[0]
	p.confirms = p.confirms[1:]
	return reply, nil
}
