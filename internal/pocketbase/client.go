// Package pocketbase is a small client for a PocketBase-compatible
// record-collection API.
package pocketbase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	http    *resty.Client
	auth    *AuthStore
}

type Option func(*resty.Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// WithTransport routes requests through rt, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *resty.Client) { c.SetTransport(rt) }
}

func New(baseURL string, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	hc := resty.New().
		SetBaseURL(base).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultTimeout)
	for _, opt := range opts {
		opt(hc)
	}
	return &Client{baseURL: base, http: hc, auth: &AuthStore{}}
}

// Session returns a client that shares c's connection pool but owns a fresh
// auth store. Create one per user session and drop it on logout.
func (c *Client) Session() *Client {
	return &Client{baseURL: c.baseURL, http: c.http, auth: &AuthStore{}}
}

func (c *Client) AuthStore() *AuthStore { return c.auth }

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx).SetError(&ResponseError{})
	if token := c.auth.Token(); token != "" {
		req.SetHeader("Authorization", token)
	}
	return req
}

func execute(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		re, _ := resp.Error().(*ResponseError)
		if re == nil {
			re = &ResponseError{}
		}
		re.Status = resp.StatusCode()
		return re
	}
	return nil
}

func (c *Client) List(ctx context.Context, collection string, page, perPage int, opts ListOptions) (*ListResult, error) {
	var out ListResult
	req := c.request(ctx).
		SetPathParam("collection", collection).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("perPage", strconv.Itoa(perPage)).
		SetResult(&out)
	if opts.Sort != "" {
		req.SetQueryParam("sort", opts.Sort)
	}
	if err := execute(req, http.MethodGet, "/api/collections/{collection}/records"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOne(ctx context.Context, collection, id string) (*Record, error) {
	var out Record
	req := c.request(ctx).
		SetPathParam("collection", collection).
		SetPathParam("id", id).
		SetResult(&out)
	if err := execute(req, http.MethodGet, "/api/collections/{collection}/records/{id}"); err != nil {
		return nil, err
	}
	return &out, nil
}

// File is an upload attached to a Create or Update call.
type File struct {
	Field  string
	Name   string
	Reader io.Reader
}

func (c *Client) Create(ctx context.Context, collection string, body map[string]any, files ...File) (*Record, error) {
	var out Record
	req := c.request(ctx).SetPathParam("collection", collection).SetResult(&out)
	if err := setBody(req, body, files); err != nil {
		return nil, err
	}
	if err := execute(req, http.MethodPost, "/api/collections/{collection}/records"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, collection, id string, body map[string]any, files ...File) (*Record, error) {
	var out Record
	req := c.request(ctx).
		SetPathParam("collection", collection).
		SetPathParam("id", id).
		SetResult(&out)
	if err := setBody(req, body, files); err != nil {
		return nil, err
	}
	if err := execute(req, http.MethodPatch, "/api/collections/{collection}/records/{id}"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	req := c.request(ctx).
		SetPathParam("collection", collection).
		SetPathParam("id", id)
	return execute(req, http.MethodDelete, "/api/collections/{collection}/records/{id}")
}

// AuthWithPassword authenticates against an auth collection and saves the
// returned token in the client's auth store.
func (c *Client) AuthWithPassword(ctx context.Context, collection, identity, password string) (string, error) {
	var out struct {
		Token  string  `json:"token"`
		Record *Record `json:"record"`
	}
	req := c.request(ctx).
		SetPathParam("collection", collection).
		SetBody(map[string]string{"identity": identity, "password": password}).
		SetResult(&out)
	if err := execute(req, http.MethodPost, "/api/collections/{collection}/auth-with-password"); err != nil {
		return "", err
	}
	c.auth.Save(out.Token, out.Record)
	return out.Token, nil
}

// FileURL returns the absolute URL of a file stored on record. It returns ""
// when record or filename is empty.
func (c *Client) FileURL(record *Record, filename string) string {
	if record == nil || record.ID == "" || filename == "" {
		return ""
	}
	collection := record.CollectionName
	if collection == "" {
		collection = record.CollectionID
	}
	return c.baseURL + "/api/files/" + url.PathEscape(collection) + "/" +
		url.PathEscape(record.ID) + "/" + url.PathEscape(filename)
}

// setBody sends body as JSON, or as multipart form data when files are present.
// Non-string values are JSON-encoded in multipart mode.
func setBody(req *resty.Request, body map[string]any, files []File) error {
	if len(files) == 0 {
		if body == nil {
			body = map[string]any{}
		}
		req.SetBody(body)
		return nil
	}
	form := make(map[string]string, len(body))
	for k, v := range body {
		if s, ok := v.(string); ok {
			form[k] = s
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode field %q: %w", k, err)
		}
		form[k] = string(raw)
	}
	req.SetMultipartFormData(form)
	for _, f := range files {
		req.SetFileReader(f.Field, f.Name, f.Reader)
	}
	return nil
}
