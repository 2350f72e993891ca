// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion. The tasks command also
	// exits with Success when the fetch itself failed.
	Success = 0

	// UserError indicates a user error (unknown command, bad flag or argument).
	UserError = 1

	// AuthError indicates missing or rejected credentials.
	AuthError = 2

	// BackendError indicates a tracker, network or decoding error.
	BackendError = 3
)
