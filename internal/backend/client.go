// Package backend is the typed client for the barbershop REST API.
package backend

import (
	"bytes"
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

	"github.com/rs/zerolog"
)

// ErrUnavailable wraps every transport failure: refused connections,
// timeouts, cancelled contexts.
var ErrUnavailable = errors.New("backend unavailable")

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, status int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == status
}

const maxErrorBody = 512

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Location *time.Location
}

type Client struct {
	baseURL string
	http    *http.Client
	loc     *time.Location
	log     zerolog.Logger
}

func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		loc:     loc,
		log:     log.With().Str("component", "backend").Logger(),
	}
}

// Location is the zone wall-clock timestamps are read in.
func (c *Client) Location() *time.Location { return c.loc }

// do sends one request. A 2xx answer whose body is empty or malformed leaves
// out untouched and is logged, never returned as an error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("backend request failed")
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		c.log.Warn().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("backend rejected request")
		return statusErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("backend body unreadable")
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("backend body malformed, using empty payload")
	}
	return nil
}

func idPath(collection string, id int64, tail ...string) string {
	path := "/" + collection + "/" + strconv.FormatInt(id, 10)
	for _, part := range tail {
		path += "/" + url.PathEscape(part)
	}
	return path
}
