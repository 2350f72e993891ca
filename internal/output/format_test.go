package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"jtask/internal/output"
	"jtask/internal/service"
	"jtask/internal/testutil"
)

func sampleIssues() []service.Issue {
	return []service.Issue{
		testutil.NewIssue("PROJ-1", "Fix login", "To Do"),
		testutil.NewIssue("PROJ-2", "Write docs\nfor the v2 API", "In Progress"),
		testutil.NewIssue("OPS-7", "  ", "Done"),
	}
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestPrintTasks_Golden(t *testing.T) {
	var buf bytes.Buffer
	output.PrintTasks(&buf, sampleIssues())
	testutil.Golden(t, "tasks_text", buf.String())
}

func TestPrintTasks_Empty(t *testing.T) {
	var buf bytes.Buffer
	output.PrintTasks(&buf, nil)

	assert.Equal(t, []string{output.NoTasks}, lines(buf.String()))
	testutil.Golden(t, "tasks_empty", buf.String())
}

func TestPrintTasks_OneLinePerTask(t *testing.T) {
	for _, m := range []int{1, 2, 10} {
		var issues []service.Issue
		for i := 0; i < m; i++ {
			issues = append(issues, testutil.NewIssue("K-"+strings.Repeat("1", i+1), "summary", "To Do"))
		}

		var buf bytes.Buffer
		output.PrintTasks(&buf, issues)
		got := lines(buf.String())

		require.Len(t, got, m+1)
		assert.Equal(t, output.TasksHeader, got[0])
		for i, issue := range issues {
			assert.Contains(t, got[i+1], issue.Key)
			assert.Contains(t, got[i+1], issue.Fields.Summary)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want output.Format
	}{
		{"text", output.Text},
		{"TABLE", output.Table},
		{"json", output.JSON},
		{"yaml", output.YAML},
	} {
		got, err := output.ParseFormat(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := output.ParseFormat("xml")
	assert.EqualError(t, err, "invalid format: xml")
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, output.Text, sampleIssues()))
	testutil.Golden(t, "tasks_text", buf.String())
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, output.Table, sampleIssues()))

	got := buf.String()
	for _, want := range []string{"KEY", "STATUS", "SUMMARY", "PROJ-1", "In Progress", "Fix login", "(untitled)"} {
		assert.Contains(t, got, want)
	}
}

func TestRender_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, output.Table, nil))
	assert.Equal(t, output.NoTasks+"\n", buf.String())
}

func TestRender_JSONKeepsRawIssues(t *testing.T) {
	issues := []service.Issue{{
		Key: "PROJ-9",
		Raw: json.RawMessage(`{"id":"10009","key":"PROJ-9","self":"https://example.atlassian.net/rest/api/3/issue/10009","fields":{"summary":"Keep me"}}`),
	}}

	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, output.JSON, issues))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "10009", got[0]["id"])
	assert.Equal(t, "https://example.atlassian.net/rest/api/3/issue/10009", got[0]["self"])
}

func TestRender_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, output.JSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, output.YAML, sampleIssues()[:2]))

	type task struct {
		Key     string `yaml:"key"`
		Status  string `yaml:"status"`
		Summary string `yaml:"summary"`
	}
	var got []task
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	want := []task{
		{Key: "PROJ-1", Status: "To Do", Summary: "Fix login"},
		{Key: "PROJ-2", Status: "In Progress", Summary: "Write docs\nfor the v2 API"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("yaml mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, output.Render(&buf, output.Format("xml"), nil))
}

func TestPrintFailure_HTTP(t *testing.T) {
	var buf bytes.Buffer
	output.PrintFailure(&buf, service.Result{
		Kind:       service.HTTPFailure,
		StatusCode: 500,
		Body:       "internal error\n",
	})

	assert.Equal(t, "Failed to fetch tasks. Status code: 500\ninternal error\n", buf.String())
}

func TestPrintFailure_ErrorMessages(t *testing.T) {
	var buf bytes.Buffer
	output.PrintFailure(&buf, service.Result{
		Kind:       service.HTTPFailure,
		StatusCode: 400,
		Body:       `{"errorMessages":["Error in the JQL Query"],"errors":{"jql":"bad"}}`,
		Messages:   []string{"Error in the JQL Query", "jql: bad"},
	})

	want := "Failed to fetch tasks. Status code: 400\n" +
		`{"errorMessages":["Error in the JQL Query"],"errors":{"jql":"bad"}}` + "\n" +
		"  - Error in the JQL Query\n" +
		"  - jql: bad\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintFailure_Auth(t *testing.T) {
	var buf bytes.Buffer
	output.PrintFailure(&buf, service.Result{
		Kind:       service.AuthFailure,
		StatusCode: 401,
		Body:       "Client must be authenticated to access this resource.",
	})
	testutil.Golden(t, "failure_auth", buf.String())
}

func TestPrintFailure_Transport(t *testing.T) {
	var buf bytes.Buffer
	output.PrintFailure(&buf, service.Result{
		Kind: service.TransportFailure,
		Err:  errors.New("dial tcp: connection refused"),
	})

	assert.Equal(t, "Failed to fetch tasks: dial tcp: connection refused\n", buf.String())
}

func TestPrintFailure_Success(t *testing.T) {
	var buf bytes.Buffer
	output.PrintFailure(&buf, service.Result{Kind: service.Success})
	assert.Empty(t, buf.String())
}
