package supabase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"mkurbatov/coach-assistant/internal/config"
)

const testKey = "test-service-key"

// row is one stored record in the fake gateway.
type row map[string]any

// fakeGateway is an in-process PostgREST stand-in: in-memory tables, the
// eq./in.(...) filter grammar, order and limit, and representation-returning
// writes. Tables marked failing answer 404, which is how a deployment without
// the relation table behaves.
type fakeGateway struct {
	t *testing.T

	mu       sync.Mutex
	tables   map[string][]row
	nextID   map[string]int64
	failing  map[string]bool
	requests int

	server *httptest.Server
}

func newFakeGateway(t *testing.T) *fakeGateway {
	g := &fakeGateway{
		t:       t,
		tables:  make(map[string][]row),
		nextID:  map[string]int64{"coaches": 1, "clients": 1, "workouts": 1, "trainer_client": 1},
		failing: make(map[string]bool),
	}
	g.server = httptest.NewServer(http.HandlerFunc(g.handle))
	t.Cleanup(g.server.Close)
	return g
}

func newTestStore(t *testing.T) (*Store, *fakeGateway) {
	g := newFakeGateway(t)
	st := New(config.SupabaseConfig{
		URL:     g.server.URL,
		Key:     testKey,
		Timeout: 2 * time.Second,
	})
	return st, g
}

// seed inserts a row directly, bypassing HTTP, and returns its id.
func (g *fakeGateway) seed(table string, r row) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := r["id"]; !ok {
		r["id"] = g.nextID[table]
		g.nextID[table]++
	}
	g.tables[table] = append(g.tables[table], r)
	return r["id"].(int64)
}

func (g *fakeGateway) fail(table string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing[table] = true
}

func (g *fakeGateway) requestCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests
}

// tableRows returns a copy of a table's rows for assertions.
func (g *fakeGateway) tableRows(table string) []row {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]row(nil), g.tables[table]...)
}

func (g *fakeGateway) handle(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests++

	if r.Header.Get("apikey") != testKey {
		g.t.Errorf("missing or wrong apikey header: %q", r.Header.Get("apikey"))
	}
	if r.Header.Get("Authorization") != "Bearer "+testKey {
		g.t.Errorf("missing or wrong Authorization header: %q", r.Header.Get("Authorization"))
	}

	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	if table == r.URL.Path || strings.Contains(table, "/") {
		http.Error(w, `{"message":"unknown path"}`, http.StatusNotFound)
		return
	}
	if g.failing[table] {
		http.Error(w, fmt.Sprintf(`{"message":"relation \"public.%s\" does not exist"}`, table), http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	switch r.Method {
	case http.MethodGet:
		g.respond(w, http.StatusOK, g.selectRows(table, query))
	case http.MethodPost:
		g.insertRow(w, r, table)
	case http.MethodPatch:
		var patch row
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
			return
		}
		var updated []row
		for _, rec := range g.tables[table] {
			if matches(rec, query) {
				for k, v := range patch {
					rec[k] = v
				}
				updated = append(updated, rec)
			}
		}
		g.respond(w, http.StatusOK, updated)
	case http.MethodDelete:
		var kept, removed []row
		for _, rec := range g.tables[table] {
			if matches(rec, query) {
				removed = append(removed, rec)
			} else {
				kept = append(kept, rec)
			}
		}
		g.tables[table] = kept
		g.respond(w, http.StatusOK, removed)
	default:
		http.Error(w, `{"message":"method not allowed"}`, http.StatusMethodNotAllowed)
	}
}

func (g *fakeGateway) insertRow(w http.ResponseWriter, r *http.Request, table string) {
	var rec row
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, `{"message":"bad body"}`, http.StatusBadRequest)
		return
	}

	if table == "coaches" {
		for _, existing := range g.tables[table] {
			if cell(existing, "telegram_id") == cell(rec, "telegram_id") {
				http.Error(w, `{"message":"duplicate key value violates unique constraint \"coaches_telegram_id_key\""}`, http.StatusConflict)
				return
			}
		}
	}

	rec["id"] = g.nextID[table]
	g.nextID[table]++
	g.tables[table] = append(g.tables[table], rec)
	g.respond(w, http.StatusCreated, []row{rec})
}

func (g *fakeGateway) selectRows(table string, query url.Values) []row {
	var out []row
	for _, rec := range g.tables[table] {
		if matches(rec, query) {
			out = append(out, rec)
		}
	}

	if order := query.Get("order"); order != "" {
		col := strings.TrimSuffix(order, ".desc")
		desc := strings.HasSuffix(order, ".desc")
		sort.SliceStable(out, func(i, j int) bool {
			a, b := cell(out[i], col), cell(out[j], col)
			if desc {
				return a > b
			}
			return a < b
		})
	}

	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit < len(out) {
			out = out[:limit]
		}
	}
	if out == nil {
		out = []row{}
	}
	return out
}

func (g *fakeGateway) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.t.Errorf("encode response: %v", err)
	}
}

// cell renders a column value for comparisons. Timestamps in tests are all
// RFC3339 UTC, so lexical order matches chronological order.
func cell(rec row, column string) string {
	v, ok := rec[column]
	if !ok || v == nil {
		return ""
	}
	if f, isFloat := v.(float64); isFloat && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%v", v)
}

// matches applies the query's filter parameters (eq. and in.(...)) to a row.
func matches(rec row, query url.Values) bool {
	for column, exprs := range query {
		switch column {
		case "order", "limit", "select":
			continue
		}
		expr := exprs[0]
		value := cell(rec, column)
		switch {
		case strings.HasPrefix(expr, "eq."):
			if value != strings.TrimPrefix(expr, "eq.") {
				return false
			}
		case strings.HasPrefix(expr, "in.(") && strings.HasSuffix(expr, ")"):
			found := false
			for _, candidate := range strings.Split(expr[len("in.("):len(expr)-1], ",") {
				if value == candidate {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// captureLog redirects the standard logger into a buffer for the duration
// of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

// stamp returns a deterministic RFC3339 timestamp offset from a fixed base.
func stamp(minutes int) string {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339)
}
