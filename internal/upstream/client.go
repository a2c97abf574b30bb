// Package upstream is the shared HTTP plumbing for the CMS clients: retrying
// GETs, payload guards, WordPress-style error bodies and pagination headers.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/yourorg/listings-api/internal/logger"
)

const maxPayload = 8 << 20

// ErrNotFound matches any upstream 404.
var ErrNotFound = errors.New("upstream resource not found")

// APIError carries the upstream status and the message from a WordPress-style
// error body ({"code": ..., "message": ..., "data": {"status": ...}}).
type APIError struct {
	Upstream string
	Status   int
	Code     string
	Message  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("HTTP Error %d", e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s error %d (%s): %s", e.Upstream, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("%s error %d: %s", e.Upstream, e.Status, msg)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type Response struct {
	Body   []byte
	Header http.Header
}

type Client struct {
	name    string
	baseURL string
	params  url.Values
	http    *retryablehttp.Client
}

// New returns a client rooted at baseURL. Params are appended to every request,
// which is how WooCommerce consumer credentials travel.
func New(name, baseURL string, params url.Values, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = logger.NewLeveled(log.Named(name))

	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		params:  params,
		http:    rc,
	}
}

func (c *Client) Name() string    { return c.name }
func (c *Client) BaseURL() string { return c.baseURL }

// SetRetryMax tunes the retry budget; tests use 0.
func (c *Client) SetRetryMax(n int) { c.http.RetryMax = n }

func (c *Client) Get(ctx context.Context, path string, q url.Values) (*Response, error) {
	merged := url.Values{}
	for k, vs := range c.params {
		merged[k] = append([]string(nil), vs...)
	}
	for k, vs := range q {
		merged[k] = append(merged[k], vs...)
	}
	u := c.baseURL + path
	if enc := merged.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%s request %s: %w", c.name, path, err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request %s: %w", c.name, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeError(c.name, resp)
	}
	body, err := ReadAllLimit(resp.Body, maxPayload)
	if err != nil {
		return nil, fmt.Errorf("%s read %s: %w", c.name, path, err)
	}
	return &Response{Body: body, Header: resp.Header}, nil
}

func decodeError(name string, resp *http.Response) error {
	apiErr := &APIError{Upstream: name, Status: resp.StatusCode}
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	raw, _ := ReadAllLimit(resp.Body, 64<<10)
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}

func ReadAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}

type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PerPage     int `json:"perPage"`
}

// ParsePagination reads X-WP-Total and X-WP-TotalPages, which both WordPress
// and WooCommerce send on collection responses.
func ParsePagination(h http.Header, page, perPage int) Pagination {
	p := Pagination{TotalItems: 0, TotalPages: 1, CurrentPage: page, PerPage: perPage}
	if v, err := strconv.Atoi(h.Get("X-WP-Total")); err == nil && v >= 0 {
		p.TotalItems = v
	}
	if v, err := strconv.Atoi(h.Get("X-WP-TotalPages")); err == nil && v > 0 {
		p.TotalPages = v
	}
	return p
}

func Itoa(v int64) string { return strconv.FormatInt(v, 10) }
