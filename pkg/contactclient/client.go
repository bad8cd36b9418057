package contactclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Detail  string // server-side error text, 5xx only
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("contact api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return e.Message
}

// Client talks to the contact API rooted at BaseURL (e.g.
// http://localhost:8080/api).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns an http.Client with pooled keep-alive connections
// and bounded dial, TLS and response timeouts.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

// New creates a client. A nil httpClient gets NewHTTPClient(30s).
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(30 * time.Second)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) List(ctx context.Context) ([]Contact, error) {
	var out []wireContact
	if err := c.do(ctx, http.MethodGet, "/contacts", nil, &out); err != nil {
		return nil, err
	}
	contacts := make([]Contact, 0, len(out))
	for _, w := range out {
		contacts = append(contacts, fromWire(w))
	}
	return contacts, nil
}

func (c *Client) Get(ctx context.Context, id int64) (Contact, error) {
	var out wireContact
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/contacts/%d", id), nil, &out); err != nil {
		return Contact{}, err
	}
	return fromWire(out), nil
}

// Create posts contact; its ID is sent as zero.
func (c *Client) Create(ctx context.Context, contact Contact) (Contact, error) {
	contact.ID = 0
	var out wireContact
	if err := c.do(ctx, http.MethodPost, "/contacts", toWire(contact), &out); err != nil {
		return Contact{}, err
	}
	return fromWire(out), nil
}

// Update replaces contact id; the payload carries the same id.
func (c *Client) Update(ctx context.Context, id int64, contact Contact) (Contact, error) {
	contact.ID = id
	var out wireContact
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/contacts/%d", id), toWire(contact), &out); err != nil {
		return Contact{}, err
	}
	return fromWire(out), nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/contacts/%d", id), nil, nil)
}

// Export downloads every contact as format (xlsx or csv) limited to
// columns (wire names; empty for all). It returns the file body and the
// server's suggested filename.
func (c *Client) Export(ctx context.Context, format string, columns []string) ([]byte, string, error) {
	if format == "" {
		format = "xlsx"
	}
	q := url.Values{"format": {format}}
	if len(columns) > 0 {
		q.Set("columns", strings.Join(columns, ","))
	}
	path := "/contacts/export?" + q.Encode()

	var resp *http.Response
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	filename := "contacts." + format
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		filename = params["filename"]
	}
	return data, filename, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	// Raw responses are handed to the caller unread.
	if raw, ok := out.(**http.Response); ok && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		*raw = resp
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&eb) == nil {
			apiErr.Message = eb.Message
			apiErr.Detail = eb.Error
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
