// Package apify is a minimal client for the Apify v2 API: start an actor
// run, wait for it to finish, and read its default dataset.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/lead-scout/internal/resilience"
)

const (
	defaultBaseURL      = "https://api.apify.com/v2"
	defaultPollInterval = 5 * time.Second
	// waitForFinishSecs is the server-side long-poll window per status call.
	waitForFinishSecs = 60
)

// Run statuses reported by the platform.
const (
	StatusReady     = "READY"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusAborting  = "ABORTING"
	StatusAborted   = "ABORTED"
	StatusTimingOut = "TIMING-OUT"
	StatusTimedOut  = "TIMED-OUT"
)

// ErrRunNotSucceeded is returned by WaitForRun when the run reached a
// terminal status other than SUCCEEDED.
var ErrRunNotSucceeded = eris.New("apify: run did not succeed")

// Client performs Apify API operations.
type Client interface {
	StartRun(ctx context.Context, actorID string, input any) (*Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	WaitForRun(ctx context.Context, runID string) (*Run, error)
	DatasetItems(ctx context.Context, datasetID string) ([]map[string]any, error)
}

// Run is an actor run as described by the API.
type Run struct {
	ID               string     `json:"id"`
	ActID            string     `json:"actId"`
	Status           string     `json:"status"`
	StatusMessage    string     `json:"statusMessage,omitempty"`
	DefaultDatasetID string     `json:"defaultDatasetId"`
	StartedAt        time.Time  `json:"startedAt"`
	FinishedAt       *time.Time `json:"finishedAt,omitempty"`
}

// Terminal reports whether the run will not change status again.
func (r *Run) Terminal() bool {
	switch r.Status {
	case StatusSucceeded, StatusFailed, StatusAborted, StatusTimedOut:
		return true
	}
	return false
}

type runEnvelope struct {
	Data Run `json:"data"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithPollInterval sets the minimum spacing between run status calls.
func WithPollInterval(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.poll = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	poll    *rate.Limiter
}

// NewClient creates an Apify API client authenticated with token.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: (waitForFinishSecs + 30) * time.Second,
		},
		poll: rate.NewLimiter(rate.Every(defaultPollInterval), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// actorPath encodes an actor reference for use in a URL path. The API
// accepts "user~name" in place of "user/name".
func actorPath(actorID string) string {
	return url.PathEscape(strings.ReplaceAll(actorID, "/", "~"))
}

func (c *httpClient) StartRun(ctx context.Context, actorID string, input any) (*Run, error) {
	if actorID == "" {
		return nil, eris.New("apify: actor id is required")
	}
	body, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal input")
	}

	var env runEnvelope
	path := "/acts/" + actorPath(actorID) + "/runs"
	if err := c.do(ctx, http.MethodPost, path, nil, body, &env); err != nil {
		return nil, eris.Wrapf(err, "apify: start run of %s", actorID)
	}
	return &env.Data, nil
}

func (c *httpClient) GetRun(ctx context.Context, runID string) (*Run, error) {
	return c.getRun(ctx, runID, 0)
}

func (c *httpClient) getRun(ctx context.Context, runID string, waitSecs int) (*Run, error) {
	q := url.Values{}
	if waitSecs > 0 {
		q.Set("waitForFinish", fmt.Sprint(waitSecs))
	}

	var env runEnvelope
	if err := c.do(ctx, http.MethodGet, "/actor-runs/"+url.PathEscape(runID), q, nil, &env); err != nil {
		return nil, eris.Wrapf(err, "apify: get run %s", runID)
	}
	return &env.Data, nil
}

// WaitForRun polls until the run is terminal or ctx is done. A run that ends
// in any status but SUCCEEDED is returned along with ErrRunNotSucceeded.
func (c *httpClient) WaitForRun(ctx context.Context, runID string) (*Run, error) {
	for {
		if err := c.poll.Wait(ctx); err != nil {
			return nil, eris.Wrapf(err, "apify: wait for run %s", runID)
		}

		run, err := c.getRun(ctx, runID, waitForFinishSecs)
		if err != nil {
			if resilience.IsTransient(err) && ctx.Err() == nil {
				continue
			}
			return nil, err
		}
		if !run.Terminal() {
			continue
		}
		if run.Status != StatusSucceeded {
			return run, eris.Wrapf(ErrRunNotSucceeded, "apify: run %s ended %s", runID, run.Status)
		}
		return run, nil
	}
}

func (c *httpClient) DatasetItems(ctx context.Context, datasetID string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("clean", "true")
	q.Set("format", "json")

	var items []map[string]any
	if err := c.do(ctx, http.MethodGet, "/datasets/"+url.PathEscape(datasetID)+"/items", q, nil, &items); err != nil {
		return nil, eris.Wrapf(err, "apify: dataset items %s", datasetID)
	}
	if items == nil {
		items = []map[string]any{}
	}
	return items, nil
}

// do sends one request and decodes a 2xx JSON body into out. Retryable
// statuses come back as resilience.TransientError.
func (c *httpClient) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := eris.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(respBody, 512))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return statusErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
