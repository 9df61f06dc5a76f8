package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the Drive v3 files collection.
const DefaultEndpoint = "https://www.googleapis.com/drive/v3"

// TokenSource supplies a bearer token for remote calls. Token acquisition and
// refresh live outside this package.
type TokenSource interface {
	Token() (string, error)
}

// StaticTokenSource returns a fixed token. Use in tests.
type StaticTokenSource string

func (s StaticTokenSource) Token() (string, error) { return string(s), nil }

// FileTokenSource reads the token from a file on every call, so an external
// refresher can rotate it without restarting the process.
type FileTokenSource struct {
	Path string
}

func (f FileTokenSource) Token() (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.Path)
	}
	return token, nil
}

// HTTPClient talks to the remote listing API over its REST surface.
// It performs no retries of its own; transient handling is left to callers.
type HTTPClient struct {
	endpoint string
	tokens   TokenSource
	client   *http.Client
}

// NewHTTPClient creates a client against the given endpoint (empty means the
// public Drive v3 endpoint).
func NewHTTPClient(endpoint string, tokens TokenSource) *HTTPClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		tokens:   tokens,
		client:   &http.Client{Timeout: 2 * time.Minute},
	}
}

// listResponse is the wire shape of a files.list page.
type listResponse struct {
	Files         []RawItem `json:"files"`
	NextPageToken string    `json:"nextPageToken"`
}

// ListPage fetches one page of listing results.
func (c *HTTPClient) ListPage(ctx context.Context, q ListQuery) (*Page, error) {
	params := url.Values{}
	if expr := buildQuery(q); expr != "" {
		params.Set("q", expr)
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.PageToken != "" {
		params.Set("pageToken", q.PageToken)
	}
	if q.OrderBy != "" {
		params.Set("orderBy", q.OrderBy)
	}
	params.Set("fields", fmt.Sprintf("nextPageToken, files(%s)", ItemFields))

	var resp listResponse
	if err := c.get(ctx, "files.list", "/files?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return &Page{Items: resp.Files, NextPageToken: resp.NextPageToken}, nil
}

// GetItem fetches a single item with the minimal projection the path resolver
// needs.
func (c *HTTPClient) GetItem(ctx context.Context, id string) (*RawItem, error) {
	params := url.Values{}
	params.Set("fields", "id, name, parents")

	var item RawItem
	if err := c.get(ctx, "files.get", "/files/"+url.PathEscape(id)+"?"+params.Encode(), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Authenticate verifies the session by fetching a single-item page.
func (c *HTTPClient) Authenticate(ctx context.Context) error {
	_, err := c.ListPage(ctx, ListQuery{PageSize: 1})
	return err
}

func (c *HTTPClient) get(ctx context.Context, op, path string, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// buildQuery assembles the remote query expression for a page request.
func buildQuery(q ListQuery) string {
	var parts []string
	if q.ParentID != "" {
		parts = append(parts, fmt.Sprintf("'%s' in parents", q.ParentID))
	}
	if q.FoldersOnly {
		parts = append(parts, fmt.Sprintf("mimeType='%s'", FolderMimeType))
	}
	if !q.IncludeTrashed {
		parts = append(parts, "trashed = false")
	}
	return strings.Join(parts, " and ")
}
