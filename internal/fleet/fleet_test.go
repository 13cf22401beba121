package fleet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSession struct {
	name string
	run  func(ctx context.Context) error
}

func (s *fakeSession) Name() string                  { return s.name }
func (s *fakeSession) Run(ctx context.Context) error { return s.run(ctx) }

func accounts(names ...string) []domain.Account {
	out := make([]domain.Account, 0, len(names))
	for _, n := range names {
		out = append(out, domain.Account{Name: n, InitData: "hash=" + n})
	}
	return out
}

func instantSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func TestProxiesAssignedRoundRobin(t *testing.T) {
	var mu sync.Mutex
	assigned := map[string]string{}

	factory := func(account domain.Account, proxyURL string) (Session, error) {
		mu.Lock()
		assigned[account.Name] = proxyURL
		mu.Unlock()
		return &fakeSession{name: account.Name, run: func(ctx context.Context) error { return nil }}, nil
	}

	r := New(accounts("a", "b", "c"), factory, Config{Proxies: []string{"p1", "p2"}}, testLogger())
	r.sleep = instantSleep
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := map[string]string{"a": "p1", "b": "p2", "c": "p1"}
	for name, proxy := range want {
		if assigned[name] != proxy {
			t.Errorf("account %s got proxy %q, want %q", name, assigned[name], proxy)
		}
	}
}

func TestEmptyProxyPool(t *testing.T) {
	var got string
	factory := func(account domain.Account, proxyURL string) (Session, error) {
		got = proxyURL
		return &fakeSession{name: account.Name, run: func(ctx context.Context) error { return nil }}, nil
	}

	r := New(accounts("a"), factory, Config{}, testLogger())
	r.sleep = instantSleep
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "" {
		t.Errorf("proxy = %q, want empty", got)
	}
}

func TestFatalSessionDoesNotCancelSiblings(t *testing.T) {
	var mu sync.Mutex
	finished := map[string]bool{}

	factory := func(account domain.Account, proxyURL string) (Session, error) {
		name := account.Name
		return &fakeSession{name: name, run: func(ctx context.Context) error {
			if name == "doomed" {
				return errors.New("fatal auth error")
			}
			select {
			case <-time.After(50 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
			mu.Lock()
			finished[name] = true
			mu.Unlock()
			return nil
		}}, nil
	}

	r := New(accounts("doomed", "survivor"), factory, Config{}, testLogger())
	r.sleep = instantSleep
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !finished["survivor"] {
		t.Fatal("sibling session was cancelled by a fatal session error")
	}
}

func TestFactoryErrorIsIsolated(t *testing.T) {
	var started bool
	factory := func(account domain.Account, proxyURL string) (Session, error) {
		if account.Name == "broken" {
			return nil, errors.New("bad credential")
		}
		return &fakeSession{name: account.Name, run: func(ctx context.Context) error {
			started = true
			return nil
		}}, nil
	}

	r := New(accounts("broken", "fine"), factory, Config{}, testLogger())
	r.sleep = instantSleep
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !started {
		t.Fatal("healthy session never ran")
	}
}

func TestStaggerAccumulates(t *testing.T) {
	r := New(accounts("a", "b", "c"), func(account domain.Account, proxyURL string) (Session, error) {
		return &fakeSession{name: account.Name, run: func(ctx context.Context) error { return nil }}, nil
	}, Config{StaggerMin: 10 * time.Second, StaggerMax: 20 * time.Second}, testLogger())

	// Capture the delay each goroutine would sleep before starting.
	var mu sync.Mutex
	var delays []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		return ctx.Err()
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(delays) != 3 {
		t.Fatalf("captured %d delays, want 3", len(delays))
	}
	var zero int
	max := time.Duration(0)
	for _, d := range delays {
		if d == 0 {
			zero++
		}
		if d > max {
			max = d
		}
	}
	if zero != 1 {
		t.Errorf("%d accounts started without stagger, want exactly the first", zero)
	}
	if max < 20*time.Second {
		t.Errorf("largest cumulative stagger %v, want at least two minimum delays", max)
	}
}
