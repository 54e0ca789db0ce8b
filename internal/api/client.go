package api

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

	"projectforge-cli/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client talks to the projectforge backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	hc      *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRateLimit caps outgoing requests; perSecond <= 0 disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 5 * time.Minute},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

type searchResponse struct {
	JobSearchID model.ID `json:"job_search_id"`
}

// SubmitSearch sends the entry form and returns the new search identifier.
func (c *Client) SubmitSearch(ctx context.Context, p model.SearchParameters) (model.ID, error) {
	var out searchResponse
	if err := c.do(ctx, OpSubmitSearch, http.MethodPost, "/api/scrape_locations", p, &out); err != nil {
		return "", err
	}
	if out.JobSearchID == "" {
		return "", &Error{Op: OpSubmitSearch, Status: http.StatusOK, Message: "response missing job_search_id"}
	}
	return out.JobSearchID, nil
}

func (c *Client) RecentSearches(ctx context.Context) ([]model.RecentSearch, error) {
	var out []model.RecentSearch
	if err := c.do(ctx, OpRecentSearches, http.MethodGet, "/api/recent-searches", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateIdeas returns the idea set for a search. The backend caches by search id, so repeat
// calls for the same search return the same set.
func (c *Client) GenerateIdeas(ctx context.Context, searchID model.ID) (model.IdeaSet, error) {
	var out model.IdeaSet
	body := map[string]string{"job_search_id": searchID.String()}
	if err := c.do(ctx, OpGenerateIdeas, http.MethodPost, "/api/project-ideas", body, &out); err != nil {
		return model.IdeaSet{}, err
	}
	if out.ID == "" {
		return model.IdeaSet{}, &Error{Op: OpGenerateIdeas, Status: http.StatusOK, Message: "response missing idea set id"}
	}
	return out, nil
}

func (c *Client) ProjectEvidence(ctx context.Context, ideaSetID model.ID) ([]model.EvidenceRecord, error) {
	var out []model.EvidenceRecord
	body := map[string]string{"id": ideaSetID.String()}
	if err := c.do(ctx, OpEvidence, http.MethodPost, "/api/project-evidence", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SavedEntries(ctx context.Context) ([]model.SavedEntry, error) {
	var out []model.SavedEntry
	if err := c.do(ctx, OpSavedList, http.MethodGet, "/api/fetch-saved-projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save persists an idea set. Older backends answer {"success": true} without the entry; the
// zero entry is returned in that case and callers reconcile by re-fetching the list.
func (c *Client) Save(ctx context.Context, ideaSetID model.ID) (model.SavedEntry, error) {
	var out model.SavedEntry
	body := map[string]string{"save_project": ideaSetID.String()}
	if err := c.do(ctx, OpSave, http.MethodPost, "/api/save", body, &out); err != nil {
		return model.SavedEntry{}, err
	}
	return out, nil
}

func (c *Client) DeleteSaved(ctx context.Context, id model.ID) error {
	return c.do(ctx, OpDelete, http.MethodDelete, "/api/delete-saved-project/"+url.PathEscape(id.String()), nil, nil)
}

func (c *Client) SavedProject(ctx context.Context, id model.ID) (model.SavedProject, error) {
	var out model.SavedProject
	if err := c.do(ctx, OpSavedProject, http.MethodGet, "/api/fetch-saved-project/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return model.SavedProject{}, err
	}
	return out, nil
}

func (c *Client) SavedEvidence(ctx context.Context, id model.ID) ([]model.EvidenceRecord, error) {
	var out []model.EvidenceRecord
	if err := c.do(ctx, OpSavedEvidence, http.MethodGet, "/api/fetch-saved-project-evidence/"+url.PathEscape(id.String()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, op Op, method, path string, in any, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug().Str("op", string(op)).Str("method", method).Str("path", path).Err(err).Msg("request failed")
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	c.log.Debug().
		Str("op", string(op)).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request")
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := op.Fallback()
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && strings.TrimSpace(eb.Error) != "" {
			msg = eb.Error
		}
		return &Error{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
