// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"jtask/internal/service"
)

const (
	// TasksHeader is printed once above a non-empty task list.
	TasksHeader = "--- Your Jira Tasks ---"

	// NoTasks is printed instead of the list when there are no tasks.
	NoTasks = "No tasks found."
)

// Format selects how a task list is rendered.
type Format string

const (
	// Text is the default: a header line and one "Task: KEY - summary" line per issue.
	Text Format = "text"
	// Table renders key, status and summary columns.
	Table Format = "table"
	// JSON prints the issues exactly as the tracker returned them.
	JSON Format = "json"
	// YAML prints key, status and summary per issue.
	YAML Format = "yaml"
)

// Formats lists the supported formats in help order.
var Formats = []Format{Text, Table, JSON, YAML}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format: %s", s)
}

// PrintTasks writes the plain text task list:
// one header line and one "Task: KEY - summary" line per issue,
// or a single NoTasks line when issues is empty.
func PrintTasks(w io.Writer, issues []service.Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, NoTasks)
		return
	}
	fmt.Fprintln(w, TasksHeader)
	for _, issue := range issues {
		FormatTask(w, issue)
	}
}

// FormatTask formats a single task line.
// Format: "Task: {KEY} - {SUMMARY}\n"
func FormatTask(w io.Writer, issue service.Issue) {
	fmt.Fprintf(w, "Task: %s - %s\n", issue.Key, normalizeSummary(issue.Fields.Summary))
}

// Render writes issues in format f.
func Render(w io.Writer, f Format, issues []service.Issue) error {
	switch f {
	case Text, "":
		PrintTasks(w, issues)
		return nil
	case Table:
		return renderTable(w, issues)
	case JSON:
		return renderJSON(w, issues)
	case YAML:
		return renderYAML(w, issues)
	default:
		return fmt.Errorf("invalid format: %s", f)
	}
}

func renderTable(w io.Writer, issues []service.Issue) error {
	if len(issues) == 0 {
		_, err := fmt.Fprintln(w, NoTasks)
		return err
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"KEY", "STATUS", "SUMMARY"})
	for _, issue := range issues {
		t.AppendRow(table.Row{issue.Key, issue.Fields.Status.Name, normalizeSummary(issue.Fields.Summary)})
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// renderJSON writes the issues as the tracker returned them.
func renderJSON(w io.Writer, issues []service.Issue) error {
	raws := make([]json.RawMessage, 0, len(issues))
	for _, issue := range issues {
		raw := issue.Raw
		if raw == nil {
			var err error
			if raw, err = json.Marshal(issue); err != nil {
				return err
			}
		}
		raws = append(raws, raw)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(raws)
}

type yamlTask struct {
	Key     string `yaml:"key"`
	Status  string `yaml:"status,omitempty"`
	Summary string `yaml:"summary"`
}

func renderYAML(w io.Writer, issues []service.Issue) error {
	tasks := make([]yamlTask, 0, len(issues))
	for _, issue := range issues {
		tasks = append(tasks, yamlTask{
			Key:     issue.Key,
			Status:  issue.Fields.Status.Name,
			Summary: issue.Fields.Summary,
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tasks); err != nil {
		return err
	}
	return enc.Close()
}

// PrintFailure writes the diagnostic for a failed search: the status line,
// the raw body, then one indented line per message the tracker reported.
func PrintFailure(w io.Writer, r service.Result) {
	switch r.Kind {
	case service.Success:
		return
	case service.TransportFailure:
		fmt.Fprintf(w, "Failed to fetch tasks: %v\n", r.Err)
		return
	}
	fmt.Fprintf(w, "Failed to fetch tasks. Status code: %d\n", r.StatusCode)
	if r.Body != "" {
		fmt.Fprintln(w, strings.TrimRight(r.Body, "\n"))
	}
	for _, msg := range r.Messages {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
	if r.Kind == service.AuthFailure {
		fmt.Fprintln(w, "Check JIRA_EMAIL and JIRA_API_TOKEN (or JIRA_ACCESS_TOKEN).")
	}
}

// normalizeSummary normalizes a summary for display.
// - Empty or whitespace-only summaries become "(untitled)"
// - Newlines are replaced with spaces
func normalizeSummary(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")

	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return s
}
