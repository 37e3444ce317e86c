package metrics

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vinayprograms/gracekit/shutdown"
)

type nopSource struct{}

func (nopSource) Notify(c chan<- os.Signal, sig ...os.Signal) {}

func newRegistered(t *testing.T) (*Collector, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	c := New("test")
	if err := c.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return c, reg
}

func TestRegisterTwiceFails(t *testing.T) {
	c, reg := newRegistered(t)
	if err := c.Register(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestObserveWorker(t *testing.T) {
	c, _ := newRegistered(t)

	c.ObserveWorker(shutdown.WorkerResult{ID: "a", Duration: 10 * time.Millisecond})
	c.ObserveWorker(shutdown.WorkerResult{ID: "b", Err: errors.New("boom")})
	c.ObserveWorker(shutdown.WorkerResult{ID: "c", Err: errors.New("boom")})

	if got := testutil.ToFloat64(c.exits.WithLabelValues(OutcomeOK)); got != 1 {
		t.Errorf("expected 1 ok exit, got %v", got)
	}
	if got := testutil.ToFloat64(c.exits.WithLabelValues(OutcomeFailed)); got != 2 {
		t.Errorf("expected 2 failed exits, got %v", got)
	}
	if got := testutil.CollectAndCount(c.workerSeconds); got != 1 {
		t.Errorf("expected one histogram series, got %d", got)
	}
}

func TestObserveComplete(t *testing.T) {
	c, _ := newRegistered(t)

	c.ObserveComplete(&shutdown.ShutdownResult{TotalDuration: time.Second})
	if got := testutil.ToFloat64(c.timeouts); got != 0 {
		t.Errorf("expected no timeouts, got %v", got)
	}

	c.ObserveComplete(&shutdown.ShutdownResult{TotalDuration: time.Second, Stragglers: 4})
	if got := testutil.ToFloat64(c.timeouts); got != 1 {
		t.Errorf("expected 1 timeout, got %v", got)
	}
	if got := testutil.ToFloat64(c.stragglers); got != 4 {
		t.Errorf("expected 4 stragglers, got %v", got)
	}

	// nil is ignored
	c.ObserveComplete(nil)
}

func TestInstrumentCoordinator(t *testing.T) {
	c, _ := newRegistered(t)

	var userProgress int
	cfg := c.Instrument(shutdown.Config{
		Timeout:    100 * time.Millisecond,
		Source:     nopSource{},
		OnProgress: func(shutdown.WorkerResult) { userProgress++ },
	})

	coord, err := shutdown.NewCoordinator(cfg)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}

	coord.RegisterFunc("ok", func(stop <-chan struct{}) error { <-stop; return nil })
	coord.RegisterFunc("bad", func(stop <-chan struct{}) error { <-stop; return errors.New("bad") })
	coord.RegisterFunc("stuck", func(stop <-chan struct{}) error { <-stop; time.Sleep(time.Second); return nil })
	coord.Trigger()

	errs := coord.Wait()
	if len(errs) != 2 {
		t.Fatalf("expected worker error and timeout, got %v", errs)
	}

	if got := testutil.ToFloat64(c.registered); got != 3 {
		t.Errorf("expected 3 registrations, got %v", got)
	}
	if got := testutil.ToFloat64(c.exits.WithLabelValues(OutcomeFailed)); got != 1 {
		t.Errorf("expected 1 failed exit, got %v", got)
	}
	if got := testutil.ToFloat64(c.stragglers); got != 1 {
		t.Errorf("expected 1 straggler, got %v", got)
	}
	if userProgress != 2 {
		t.Errorf("expected existing OnProgress to still run twice, got %d", userProgress)
	}
}

func TestHandler(t *testing.T) {
	c, reg := newRegistered(t)
	c.ObserveRegister("a")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_workers_registered_total 1") {
		t.Fatalf("expected registration counter in output:\n%s", rec.Body.String())
	}
}

func TestServerWorker(t *testing.T) {
	_, reg := newRegistered(t)

	// Reserve a free port, then release it for the worker.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	w := Server("metrics", addr, reg)
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.Run(stop) }()

	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get("http://" + addr + "/metrics")
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("metrics server never came up: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "test_shutdown_timeouts_total") {
		t.Fatalf("unexpected body:\n%s", body)
	}

	close(stop)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean stop, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server worker did not stop")
	}
}

func TestServerWorkerListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	w := Server("metrics", ln.Addr().String(), prometheus.NewRegistry())
	stop := make(chan struct{})
	defer close(stop)

	done := make(chan error, 1)
	go func() { done <- w.Run(stop) }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected listen error for a port in use")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected worker to fail fast")
	}
}
