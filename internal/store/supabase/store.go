// Package supabase implements the store contract against a PostgREST-style
// HTTP API. The gateway is stateless: every operation is one or more HTTP
// requests with fixed identification headers, and connect/disconnect hold no
// resources.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mkurbatov/coach-assistant/internal/config"
	"mkurbatov/coach-assistant/internal/store"
)

const defaultTimeout = 10 * time.Second

// Store implements store.Store over the REST gateway.
type Store struct {
	baseURL string
	key     string
	http    *http.Client
}

var _ store.Store = (*Store)(nil)

// New creates a gateway store. The key is attached to every request as both
// the apikey header and the bearer credential.
func New(cfg config.SupabaseConfig) *Store {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{
		baseURL: strings.TrimRight(cfg.URL, "/") + "/rest/v1",
		key:     cfg.Key,
		http:    &http.Client{Timeout: timeout},
	}
}

// Connect verifies the gateway answers; there is no pool to establish.
func (s *Store) Connect(ctx context.Context) error {
	if err := s.Ping(ctx); err != nil {
		return fmt.Errorf("reach REST gateway: %w", err)
	}
	return nil
}

// Close is a no-op; safe without a prior Connect.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Ping issues a minimal read against the coaches resource.
func (s *Store) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("limit", "1")
	q.Set("select", "id")
	_, err := s.do(ctx, http.MethodGet, "/coaches?"+q.Encode(), nil)
	return err
}

// apiError is a non-2xx gateway response.
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gateway responded %d: %s", e.status, e.body)
}

// do performs one request and returns the raw body. Non-2xx responses come
// back as *apiError; callers decide whether that means "no rows" or a real
// failure.
func (s *Store) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Content-Type", "application/json")
	// Ask for the affected representation back so inserts return the
	// generated id in the same round trip.
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apiError{status: resp.StatusCode, body: strings.TrimSpace(string(payload))}
	}
	return payload, nil
}

// fetch runs a GET and decodes the row list into out. Any failure is treated
// as "no rows": logged, out left empty, nil returned. Read operations over
// the gateway never propagate errors.
func (s *Store) fetch(ctx context.Context, path string, out any) error {
	payload, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		log.Printf("WARN: gateway read %s failed: %v", path, err)
		return nil
	}
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		log.Printf("WARN: gateway read %s returned undecodable body: %v", path, err)
	}
	return nil
}

// insert runs a POST and decodes the returned representation. Failures
// propagate; primary create operations must surface them.
func (s *Store) insert(ctx context.Context, path string, body, out any) error {
	payload, err := s.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("decode insert response: %w", err)
		}
	}
	return nil
}

// patch runs a partial update scoped by the path's filter and returns the
// affected representation, so callers can tell a matched update from a
// filter that hit nothing.
func (s *Store) patch(ctx context.Context, path string, body any) ([]byte, error) {
	return s.do(ctx, http.MethodPatch, path, body)
}

// hasRows reports whether a returned representation holds at least one row.
func hasRows(payload []byte) bool {
	var rows []json.RawMessage
	if err := json.Unmarshal(payload, &rows); err != nil {
		return false
	}
	return len(rows) > 0
}

// delete removes rows matched by the path's filter.
func (s *Store) delete(ctx context.Context, path string) error {
	_, err := s.do(ctx, http.MethodDelete, path, nil)
	return err
}

// eq builds a single-column equality path: /table?column=eq.value.
func eq(table, column string, value any) string {
	q := url.Values{}
	q.Set(column, fmt.Sprintf("eq.%v", value))
	return "/" + table + "?" + q.Encode()
}

// inList renders ids as an in.(...) membership predicate value.
func inList(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "in.(" + strings.Join(parts, ",") + ")"
}

// nowStamp is the timestamp format the gateway stores for created/updated
// columns.
func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
