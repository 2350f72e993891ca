// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"jtask/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu      sync.Mutex
	issues  []service.Issue
	user    service.User
	queries []service.Query

	// SearchResult, if set, is returned by SearchIssues instead of the stored issues.
	SearchResult *service.Result

	// MyselfErr is returned by Myself when set.
	MyselfErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// NewIssue builds an issue with Raw set to its JSON form.
func NewIssue(key, summary, status string) service.Issue {
	issue := service.Issue{
		Key: key,
		Fields: service.IssueFields{
			Summary: summary,
			Status:  service.Status{Name: status},
		},
	}
	raw, err := json.Marshal(issue)
	if err != nil {
		panic(err)
	}
	issue.Raw = raw
	return issue
}

// AddIssue adds an issue returned by subsequent searches.
func (f *FakeService) AddIssue(key, summary, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issues = append(f.issues, NewIssue(key, summary, status))
}

// SetUser sets the account returned by Myself.
func (f *FakeService) SetUser(u service.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = u
}

// Queries returns the queries SearchIssues was called with.
func (f *FakeService) Queries() []service.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Query, len(f.queries))
	copy(out, f.queries)
	return out
}

// SearchIssues implements service.Service.
func (f *FakeService) SearchIssues(ctx context.Context, q service.Query) service.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)

	if f.SearchResult != nil {
		return *f.SearchResult
	}
	issues := make([]service.Issue, len(f.issues))
	copy(issues, f.issues)
	return service.Result{Kind: service.Success, Issues: issues, StatusCode: 200}
}

// Myself implements service.Service.
func (f *FakeService) Myself(ctx context.Context) (service.User, error) {
	if f.MyselfErr != nil {
		return service.User{}, f.MyselfErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, nil
}
