package config

// Mode selects whether the operator can be asked questions.
type Mode int

const (
	// ModeInteractive prompts for every value and for destructive confirmations.
	ModeInteractive Mode = iota
	// ModeUnattended resolves everything from overrides and defaults.
	ModeUnattended
)

// ModeFromArgs decides the mode once at startup: any supplied argument or
// flag makes the run unattended.
func ModeFromArgs(argCount int) Mode {
	if argCount > 0 {
		return ModeUnattended
	}
	return ModeInteractive
}

// Interactive reports whether an operator is available.
func (m Mode) Interactive() bool {
	return m == ModeInteractive
}

func (m Mode) String() string {
	if m == ModeUnattended {
		return "unattended"
	}
	return "interactive"
}
