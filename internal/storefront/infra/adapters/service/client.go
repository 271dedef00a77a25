package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/jcmexdev/storefront/internal/pkg/interceptors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 64 << 10

// Client talks JSON to the backend REST API. Bearer token, request id and
// idempotency key are copied from the request context on every call.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("service: invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("service: backend url %q needs scheme and host", baseURL)
	}
	transport := otelhttp.NewTransport(
		interceptors.NewPropagatingTransport(http.DefaultTransport),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "backend " + r.Method + " " + r.URL.Path
		}),
	)
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// doJSON sends in as JSON (when non-nil) and decodes the response into out
// (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("service: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("service: build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

// doMultipart sends one JSON part named jsonField plus a file part per upload.
func (c *Client) doMultipart(ctx context.Context, method, path, jsonField string, in any, fileField string, files []fileUpload, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("service: encode %s part: %w", jsonField, err)
	}
	if err := mw.WriteField(jsonField, string(payload)); err != nil {
		return fmt.Errorf("service: write %s part: %w", jsonField, err)
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, f.name))
		ct := f.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		pw, err := mw.CreatePart(h)
		if err != nil {
			return fmt.Errorf("service: create file part: %w", err)
		}
		if _, err := pw.Write(f.data); err != nil {
			return fmt.Errorf("service: write file part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("service: close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), &buf)
	if err != nil {
		return fmt.Errorf("service: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return c.send(req, out)
}

type fileUpload struct {
	name        string
	contentType string
	data        []byte
}

func (c *Client) send(req *http.Request, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("service: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return newError(res.StatusCode, b)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("service: read %s %s: %w", req.Method, req.URL.Path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("service: decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// Ping checks that the backend answers at all; any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/products", nil), nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("service: backend unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return res.Body.Close()
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
