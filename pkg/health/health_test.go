package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dd0wney/cluso-docgraph/pkg/activity"
	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

func fixed(status Status) CheckFunc {
	return func(context.Context) Check { return Check{Status: status} }
}

func TestCheckStatusAggregation(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"one unhealthy", []Status{StatusHealthy, StatusUnhealthy}, StatusUnhealthy},
		{"degraded and unhealthy", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
		{"no checks", nil, StatusHealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(time.Now())
			for i, s := range tt.statuses {
				c.Register(string(rune('a'+i)), fixed(s))
			}
			if got := c.Check(context.Background()).Status; got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProbeSetsAreSeparate(t *testing.T) {
	c := NewChecker(time.Now())
	c.Register("general", fixed(StatusHealthy))
	c.RegisterReadiness("ready", fixed(StatusHealthy))
	c.RegisterLiveness("live", fixed(StatusHealthy))

	ctx := context.Background()
	for name, resp := range map[string]Response{
		"general": c.Check(ctx),
		"ready":   c.CheckReadiness(ctx),
		"live":    c.CheckLiveness(ctx),
	} {
		if len(resp.Checks) != 1 {
			t.Errorf("%s: %d checks, want 1", name, len(resp.Checks))
		}
		if _, ok := resp.Checks[name]; !ok {
			t.Errorf("%s: missing its own check", name)
		}
	}
}

func TestCheckFillsNameAndTiming(t *testing.T) {
	c := NewChecker(time.Now().Add(-time.Minute))
	c.Register("slow", func(context.Context) Check {
		time.Sleep(5 * time.Millisecond)
		return Check{Status: StatusHealthy}
	})

	resp := c.Check(context.Background())
	check := resp.Checks["slow"]
	if check.Name != "slow" {
		t.Errorf("name = %q, want slow", check.Name)
	}
	if check.Duration < 5*time.Millisecond {
		t.Errorf("duration %v shorter than the probe", check.Duration)
	}
	if resp.Uptime < 60 {
		t.Errorf("uptime = %v, want at least 60s", resp.Uptime)
	}
}

func TestProbeTimeout(t *testing.T) {
	c := NewChecker(time.Now())
	c.SetTimeout(10 * time.Millisecond)
	c.Register("blocked", func(ctx context.Context) Check {
		<-ctx.Done()
		return Check{Status: StatusUnhealthy, Message: ctx.Err().Error()}
	})

	start := time.Now()
	resp := c.Check(context.Background())
	if time.Since(start) > time.Second {
		t.Fatal("probe deadline not applied")
	}
	if resp.Status != StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", resp.Status)
	}
}

func testStore() *documents.MemoryStore {
	return documents.NewMemoryStore([]documents.Document{
		{ID: "doc_1", Text: "Budget", Category: "Finance"},
		{ID: "doc_2", Text: "Lease", Category: "Legal", Tags: []string{"Draft"}},
	}, documents.StoreOptions{})
}

func TestStoreCheck(t *testing.T) {
	check := StoreCheck(testStore())(context.Background())
	if check.Status != StatusHealthy {
		t.Fatalf("status = %s (%s), want healthy", check.Status, check.Message)
	}
	if check.Details["documents"] != 2 {
		t.Errorf("documents = %v, want 2", check.Details["documents"])
	}
}

func TestStoreCheckCancelled(t *testing.T) {
	store := documents.NewMemoryStore(nil, documents.StoreOptions{
		Latency: documents.Latencies{Stats: time.Hour},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	check := StoreCheck(store)(ctx)
	if check.Status != StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", check.Status)
	}
}

func TestActivityCheck(t *testing.T) {
	rec := activity.NewRecorder(16)
	probe := ActivityCheck(rec, 4)

	if got := probe(context.Background()).Status; got != StatusHealthy {
		t.Errorf("empty feed: status = %s, want healthy", got)
	}

	rec.Record(&activity.Event{Action: activity.ActionUpload, Status: activity.StatusSuccess})
	rec.Record(&activity.Event{Action: activity.ActionUpload, Status: activity.StatusFailure})
	if got := probe(context.Background()).Status; got != StatusHealthy {
		t.Errorf("half failed: status = %s, want healthy", got)
	}

	rec.Record(&activity.Event{Action: activity.ActionQuery, Status: activity.StatusFailure})
	check := probe(context.Background())
	if check.Status != StatusDegraded {
		t.Errorf("most failed: status = %s, want degraded", check.Status)
	}
	if check.Details["recent_failures"] != 2 {
		t.Errorf("recent_failures = %v, want 2", check.Details["recent_failures"])
	}
}

func TestSimulationCheck(t *testing.T) {
	var sim *visualization.Simulator
	probe := SimulationCheck(func() *visualization.Simulator { return sim })

	if check := probe(context.Background()); check.Message != "No graph" {
		t.Errorf("message = %q, want No graph", check.Message)
	}

	docs, _ := testStore().List(context.Background())
	var err error
	sim, err = visualization.NewSimulator(visualization.BuildGraph(docs), visualization.SimulatorOptions{
		Config: visualization.DefaultLayoutConfig(visualization.Viewport{Width: 800, Height: 600}),
	})
	if err != nil {
		t.Fatal(err)
	}
	sim.RunUntilCold(3000)

	check := probe(context.Background())
	if check.Status != StatusHealthy || check.Message != "cold" {
		t.Errorf("check = %s %q, want healthy cold", check.Status, check.Message)
	}
	if check.Details["nodes"] != 5 {
		t.Errorf("nodes = %v, want 5", check.Details["nodes"])
	}
}

func TestMemoryCheck(t *testing.T) {
	if got := MemoryCheck(0)(context.Background()).Status; got != StatusHealthy {
		t.Errorf("no limit: status = %s, want healthy", got)
	}
	if got := MemoryCheck(1)(context.Background()).Status; got != StatusDegraded {
		t.Errorf("tiny limit: status = %s, want degraded", got)
	}
}

func TestHandlers(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		path   string
		want   int
	}{
		{"health healthy", StatusHealthy, "/healthz", http.StatusOK},
		{"health degraded", StatusDegraded, "/healthz", http.StatusOK},
		{"health unhealthy", StatusUnhealthy, "/healthz", http.StatusServiceUnavailable},
		{"ready healthy", StatusHealthy, "/readyz", http.StatusOK},
		{"ready degraded", StatusDegraded, "/readyz", http.StatusServiceUnavailable},
		{"live healthy", StatusHealthy, "/livez", http.StatusOK},
		{"live unhealthy", StatusUnhealthy, "/livez", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(time.Now())
			c.Register("probe", fixed(tt.status))
			c.RegisterReadiness("probe", fixed(tt.status))
			c.RegisterLiveness("probe", fixed(tt.status))
			mux := http.NewServeMux()
			c.Mount(mux)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.want {
				t.Errorf("code = %d, want %d", rec.Code, tt.want)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}
			var resp Response
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.status {
				t.Errorf("body status = %s, want %s", resp.Status, tt.status)
			}
		})
	}
}

func TestConcurrentRegistration(t *testing.T) {
	c := NewChecker(time.Now())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Register(string(rune('a'+i)), func(context.Context) Check {
				return Check{Status: StatusHealthy}
			})
		}(i)
		go func() {
			defer wg.Done()
			c.Check(context.Background())
		}()
	}
	wg.Wait()

	if n := len(c.Check(context.Background()).Checks); n != 20 {
		t.Errorf("%d checks registered, want 20", n)
	}
}
