// Package service defines the backend-agnostic types for issue queries.
package service

import "context"

// Service defines the interface for issue tracker operations.
// Commands never import the HTTP client directly.
type Service interface {
	// SearchIssues runs one search and reports its outcome.
	// It never returns a Go error; failures are described by the Result.
	SearchIssues(ctx context.Context, q Query) Result

	// Myself returns the account the credentials authenticate as.
	Myself(ctx context.Context) (User, error)
}
