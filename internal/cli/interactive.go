package cli

import (
	"os"

	"golang.org/x/term"
)

// NonInteractiveEnv forces non-interactive mode when set to any value.
const NonInteractiveEnv = "CAREDESK_NON_INTERACTIVE"

// IsNonInteractive reports whether interactive screens must not be started.
func IsNonInteractive() bool {
	if nonInteractive {
		return true
	}
	if _, ok := os.LookupEnv(NonInteractiveEnv); ok {
		return true
	}
	return !hasTTY()
}

// IsInteractive reports whether the session can drive the TUI.
func IsInteractive() bool {
	return !IsNonInteractive()
}

var hasTTY = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
