// Package jira implements the service.Service interface against the Jira Cloud REST API.
package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/julieqiu/derrors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"jtask/internal/config"
	"jtask/internal/service"
)

const (
	// SearchPath is the issue search endpoint.
	SearchPath = "/rest/api/3/search"

	// MyselfPath returns the authenticated account.
	MyselfPath = "/rest/api/3/myself"

	// APITimeout is the timeout for API calls.
	APITimeout = 30 * time.Second
)

// Client implements service.Service using the Jira REST API.
type Client struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger

	// basic auth credentials; unused when the http client carries a bearer token
	basic  bool
	email  string
	secret string
}

// New creates a Jira client from cfg.
// If cfg.AccessToken is set the client authenticates with an OAuth 2.0 bearer
// token, otherwise with basic auth using cfg.Email and cfg.Secret.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) *Client {
	if cfg.AccessToken == "" {
		return NewWithHTTPClient(cfg, http.DefaultClient, log)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken})
	c := NewWithHTTPClient(cfg, oauth2.NewClient(ctx, ts), log)
	c.basic = false
	return c
}

// NewWithHTTPClient creates a basic auth client with a custom HTTP client (for testing).
func NewWithHTTPClient(cfg *config.Config, httpClient *http.Client, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     log,
		basic:   true,
		email:   cfg.Email,
		secret:  cfg.Secret,
	}
}

// FetchAssignedTasks runs the assigned-to-me query once against the tracker
// described by cfg.
func FetchAssignedTasks(ctx context.Context, cfg *config.Config, log *zap.Logger) service.Result {
	return New(ctx, cfg, log).SearchIssues(ctx, service.AssignedQuery())
}

// SearchIssues runs q against the search endpoint.
// HTTP 200 yields the issues exactly as listed in the response body.
func (c *Client) SearchIssues(ctx context.Context, q service.Query) service.Result {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	params := url.Values{}
	params.Set("jql", q.Filter)
	for _, f := range q.Fields {
		params.Add("fields", f)
	}

	req, err := c.newRequest(ctx, SearchPath, params)
	if err != nil {
		return transportFailure(err)
	}
	c.log.Debug("searching issues", zap.String("url", req.URL.String()))

	res, err := c.http.Do(req)
	if err != nil {
		return transportFailure(wrapError(err))
	}
	defer res.Body.Close()
	c.log.Debug("search response", zap.Int("status", res.StatusCode))

	if res.StatusCode != http.StatusOK {
		return failure(res)
	}

	var body struct {
		Issues []json.RawMessage `json:"issues"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return transportFailure(fmt.Errorf("decoding search response: %w", wrapError(err)))
	}
	if body.Issues == nil {
		return transportFailure(errors.New("search response has no issues list"))
	}

	issues := make([]service.Issue, 0, len(body.Issues))
	for i, raw := range body.Issues {
		issue := service.DecodeIssue(raw)
		if issue.Key == "" {
			c.log.Debug("issue without a readable key", zap.Int("index", i))
		}
		issues = append(issues, issue)
	}
	c.log.Debug("search decoded", zap.Int("issues", len(issues)))

	return service.Result{
		Kind:       service.Success,
		Issues:     issues,
		StatusCode: res.StatusCode,
	}
}

// Myself returns the account the client authenticates as.
func (c *Client) Myself(ctx context.Context) (_ service.User, err error) {
	defer derrors.Wrap(&err, "Myself")

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	req, err := c.newRequest(ctx, MyselfPath, nil)
	if err != nil {
		return service.User{}, err
	}
	c.log.Debug("fetching account", zap.String("url", req.URL.String()))

	res, err := c.http.Do(req)
	if err != nil {
		return service.User{}, wrapError(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return service.User{}, failure(res).Err
	}

	var u service.User
	if err := json.NewDecoder(res.Body).Decode(&u); err != nil {
		return service.User{}, fmt.Errorf("decoding account: %w", err)
	}
	return u, nil
}

func (c *Client) newRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.basic {
		req.SetBasicAuth(c.email, c.secret)
	}
	return req, nil
}

// failure classifies a non-200 response. The body is consumed.
func failure(res *http.Response) service.Result {
	var gerr *googleapi.Error
	if !errors.As(googleapi.CheckResponse(res), &gerr) {
		// CheckResponse accepts every 2xx; anything but 200 is still a failure here.
		slurp, _ := io.ReadAll(res.Body)
		gerr = &googleapi.Error{Code: res.StatusCode, Body: string(slurp), Header: res.Header}
	}

	r := service.Result{
		Kind:       service.HTTPFailure,
		StatusCode: res.StatusCode,
		Body:       gerr.Body,
		Messages:   errorMessages(gerr.Body),
		Err:        gerr,
	}
	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		r.Kind = service.AuthFailure
		r.Err = fmt.Errorf("%w: %w", service.ErrUnauthorized, gerr)
	}
	return r
}

func transportFailure(err error) service.Result {
	return service.Result{Kind: service.TransportFailure, Err: err}
}

// errorMessages extracts the messages from a Jira error body:
//
//	{"errorMessages": ["..."], "errors": {"field": "..."}}
func errorMessages(body string) []string {
	var e struct {
		ErrorMessages []string          `json:"errorMessages"`
		Errors        map[string]string `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		return nil
	}
	msgs := e.ErrorMessages
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		msgs = append(msgs, k+": "+e.Errors[k])
	}
	return msgs
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out after %s: %w", APITimeout, err)
	}
	return err
}
