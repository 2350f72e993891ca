// Package service defines the backend-agnostic types for issue queries.
package service

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnauthorized is wrapped by errors caused by rejected credentials.
var ErrUnauthorized = errors.New("unauthorized")

// Query is a search request: a JQL filter and the fields to return, in order.
type Query struct {
	Filter string
	Fields []string
}

// AssignedQuery returns the query for issues assigned to the current account,
// in any resolution state.
func AssignedQuery() Query {
	return Query{
		Filter: "assignee=currentUser()",
		Fields: []string{"summary", "status"},
	}
}

// Issue is a single issue as returned by the search endpoint.
// Only the key and a few fields are decoded; Raw keeps the original object.
type Issue struct {
	Key    string          `json:"key"`
	Fields IssueFields     `json:"fields"`
	Raw    json.RawMessage `json:"-"`
}

// IssueFields holds the requested issue fields.
type IssueFields struct {
	Summary string `json:"summary"`
	Status  Status `json:"status"`
}

// Status is the workflow status of an issue.
type Status struct {
	Name string `json:"name"`
}

// User is the account the credentials belong to.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Kind classifies the outcome of a search.
type Kind int

const (
	// Success means HTTP 200 with a decodable body.
	Success Kind = iota

	// AuthFailure means the tracker rejected the credentials (401 or 403).
	AuthFailure

	// HTTPFailure means any other non-200 response.
	HTTPFailure

	// TransportFailure means no usable response: network error, timeout,
	// or a body that was not valid JSON.
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case AuthFailure:
		return "auth failure"
	case HTTPFailure:
		return "http failure"
	case TransportFailure:
		return "transport failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of a search.
// Issues is only populated when Kind is Success.
type Result struct {
	Kind       Kind
	Issues     []Issue
	StatusCode int      // 0 for TransportFailure before a response arrived
	Body       string   // raw response body for AuthFailure and HTTPFailure
	Messages   []string // errorMessages reported by the tracker, if any
	Err        error    // nil only for Success
}

// OK reports whether the search succeeded.
func (r Result) OK() bool {
	return r.Kind == Success
}

// DecodeIssue builds an Issue from one element of a search response.
// Raw is always kept. Key, summary and status are filled in when they have
// a recognizable shape and left empty otherwise; decoding never fails.
func DecodeIssue(raw json.RawMessage) Issue {
	issue := Issue{Raw: raw}

	var top struct {
		Key    json.RawMessage `json:"key"`
		Fields json.RawMessage `json:"fields"`
	}
	if err := json.Unmarshal(raw, &top); err != nil {
		return issue
	}
	issue.Key = text(top.Key)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(top.Fields, &fields); err != nil {
		return issue
	}
	issue.Fields.Summary = text(fields["summary"])
	issue.Fields.Status.Name = text(fields["status"])
	if issue.Fields.Status.Name == "" {
		var st struct {
			Name json.RawMessage `json:"name"`
		}
		if json.Unmarshal(fields["status"], &st) == nil {
			issue.Fields.Status.Name = text(st.Name)
		}
	}
	return issue
}

// text returns the string form of a JSON value: strings as is, and for
// rich-text documents (objects or arrays) the concatenated "text" nodes.
// Anything else yields "".
func text(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case map[string]any, []any:
		var b strings.Builder
		collectText(v, &b)
		return b.String()
	}
	return ""
}

func collectText(v any, b *strings.Builder) {
	switch v := v.(type) {
	case map[string]any:
		if s, ok := v["text"].(string); ok {
			b.WriteString(s)
		}
		if content, ok := v["content"]; ok {
			collectText(content, b)
		}
	case []any:
		for _, c := range v {
			collectText(c, b)
		}
	}
}
