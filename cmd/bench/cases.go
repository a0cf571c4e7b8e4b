// README: Benchmark cases for the freight API; includes HTTP, DB, Redis, and performance checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const sessionHeader = "X-Session-ID"

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

// bodyCheck inspects a decoded JSON response and returns a failure note, or
// "" when the body is acceptable.
type bodyCheck func(body map[string]any) string

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		if !r.cfg.selected(tc.Name) {
			continue
		}
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	resolve := func(date string) string {
		return base + "/api/tariffs/resolve?date=" + url.QueryEscape(date)
	}
	quote := map[string]any{
		"date":                 "15/08/2024",
		"origin":               "São Paulo, SP",
		"destination":          "Rio de Janeiro, RJ",
		"difficulty_surcharge": "50",
		"per_km_surcharge":     "1.5",
	}

	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "tariff store reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "session and route memo store reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply migration SQL",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables declared in the migration exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Tariff: rows seeded",
			Focus: "tariff_entries has rows when the postgres source is used",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				var n int
				if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM tariff_entries").Scan(&n); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: "PENDING", Note: "table empty; start the API with tariff.seed=true"}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("rows=%d", n)}
			},
		},
		{
			Name:  "API: server reachable",
			Focus: "health endpoint responds",
			Run: func(ctx context.Context, r *Runner) Result {
				start := time.Now()
				resp, err := r.httpc.Get(base + "/health")
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				_ = resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					return Result{Status: "FAIL", Latency: time.Since(start), Note: fmt.Sprintf("status=%d", resp.StatusCode)}
				}
				return Result{Status: "PASS", Latency: time.Since(start)}
			},
		},

		// Tariff table
		httpCaseCheck("Tariff: list table", http.MethodGet, base+"/api/tariffs", nil, []int{200}, nil, func(body map[string]any) string {
			entries, _ := body["entries"].([]any)
			if len(entries) == 0 {
				return "no entries"
			}
			return ""
		}),
		httpCaseCheck("Tariff: resolve in effect", http.MethodGet, resolve("15/08/2024"), nil, []int{200}, nil, func(body map[string]any) string {
			if body["label"] != "RESOLUÇÃO Nº 6.046, DE 11 DE JULHO DE 2024" {
				return fmt.Sprintf("label=%v", body["label"])
			}
			return ""
		}),
		httpCaseMethod("Tariff: resolve unparseable date -> 400", http.MethodGet, resolve("31/02/2024"), nil, []int{400}, nil),
		httpCaseMethod("Tariff: resolve missing date -> 400", http.MethodGet, base+"/api/tariffs/resolve", nil, []int{400}, nil),
		httpCaseMethod("Tariff: resolve before first tariff -> 404", http.MethodGet, resolve("01/01/1990"), nil, []int{404}, nil),

		// Quote
		httpCaseCheck("Quote: form request", http.MethodPost, base+"/api/freight/quote", quote, []int{200}, nil, func(body map[string]any) string {
			switch body["outcome"] {
			case "full":
				return ""
			case "fixed_only":
				// No maps key configured on the server; the route step degrades.
				return ""
			default:
				return fmt.Sprintf("outcome=%v", body["outcome"])
			}
		}),
		httpCaseMethod("Quote: missing date -> 400", http.MethodPost, base+"/api/freight/quote", map[string]any{
			"origin":      "São Paulo, SP",
			"destination": "Rio de Janeiro, RJ",
		}, []int{400}, nil),
		httpCaseMethod("Quote: unparseable date -> 400", http.MethodPost, base+"/api/freight/quote", map[string]any{
			"date": "2024-08-15",
		}, []int{400}, nil),
		httpCaseMethod("Quote: negative surcharge -> 400", http.MethodPost, base+"/api/freight/quote", map[string]any{
			"date":                 "15/08/2024",
			"difficulty_surcharge": "-1",
		}, []int{400}, nil),
		httpCaseCheck("Quote: date before first tariff", http.MethodPost, base+"/api/freight/quote", map[string]any{
			"date": "01/01/1990",
		}, []int{200}, nil, func(body map[string]any) string {
			if body["outcome"] != "no_tariff" {
				return fmt.Sprintf("outcome=%v", body["outcome"])
			}
			return ""
		}),
		httpCaseMethod("Quote: free text", http.MethodPost, base+"/api/freight/quote/text", map[string]any{
			"message": "Quanto custa um frete de São Paulo para Curitiba hoje?",
		}, []int{200, 422}, []int{503}),

		manualCase("Maps: rate limit disables collaborator", "exhaust the maps quota and check the session log reports it once"),
		manualCase("Error: Redis down", "stop Redis and check start-up fails with a clear error"),
		manualCase("Error: malformed tariff row", "insert a row with a bad date and check it appears under skipped"),

		// Concurrency
		{
			Name:  "Concurrency: quotes on one session",
			Focus: "concurrent quotes keep the session id stable",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentSession(ctx, r, base+"/api/freight/quote", quote)
			},
		},

		// Performance
		{
			Name:  "Perf: resolve throughput",
			Focus: "memoized tariff lookups",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, http.MethodGet, resolve("15/08/2024"), nil)
			},
		},
		{
			Name:  "Perf: quote throughput",
			Focus: "route memo hit path",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, http.MethodPost, base+"/api/freight/quote", quote)
			},
		},
	}
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseCheck(name, method, url, body, okStatuses, pendingStatuses, nil)
}

func httpCaseCheck(name, method, url string, body any, okStatuses, pendingStatuses []int, check bodyCheck) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			req, err := newRequest(ctx, method, url, body)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			raw, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			latency := time.Since(start)
			note := fmt.Sprintf("status=%d", resp.StatusCode)

			if contains(okStatuses, resp.StatusCode) {
				if check != nil && resp.StatusCode == http.StatusOK {
					var decoded map[string]any
					if err := json.Unmarshal(raw, &decoded); err != nil {
						return Result{Status: "FAIL", Latency: latency, Note: "invalid json: " + err.Error()}
					}
					if msg := check(decoded); msg != "" {
						return Result{Status: "FAIL", Latency: latency, Note: msg}
					}
				}
				return Result{Status: "PASS", Latency: latency, Note: note}
			}
			if contains(pendingStatuses, resp.StatusCode) {
				return Result{Status: "PENDING", Latency: latency, Note: note}
			}
			return Result{Status: "FAIL", Latency: latency, Note: note}
		},
	}
}

func manualCase(name, note string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Manual",
		Run: func(ctx context.Context, r *Runner) Result {
			return Result{Status: "SKIP", Note: note}
		},
	}
}

func newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// concurrentSession opens a session with one request, then fires
// Concurrency quotes carrying its id and expects every response to echo it.
func concurrentSession(ctx context.Context, r *Runner, url string, payload any) Result {
	req, err := newRequest(ctx, http.MethodPost, url, payload)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	id := resp.Header.Get(sessionHeader)
	if id == "" {
		return Result{Status: "FAIL", Note: "no session header"}
	}

	wg := sync.WaitGroup{}
	mismatched, failed := 0, 0
	mu := sync.Mutex{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := newRequest(ctx, http.MethodPost, url, payload)
			if err != nil {
				return
			}
			req.Header.Set(sessionHeader, id)
			resp, err := r.httpc.Do(req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				failed++
			} else if resp.Header.Get(sessionHeader) != id {
				mismatched++
			}
		}()
	}
	wg.Wait()

	if failed > 0 || mismatched > 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("failed=%d mismatched=%d", failed, mismatched)}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("requests=%d", r.cfg.Concurrency)}
}

func perfLoad(ctx context.Context, r *Runner, method, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				req, err := newRequest(ctx, method, url, payload)
				if err != nil {
					return
				}
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					if ctx.Err() != nil {
						return
					}
					continue
				}
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				if resp.StatusCode >= 500 {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	cleaned := strings.Join(filtered, "\n")
	parts := strings.Split(cleaned, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
