package shutdown

import (
	"encoding/json"
	"testing"
	"time"

	kiterrors "github.com/vinayprograms/gracekit/errors"
)

type reportJSON struct {
	CycleID    string         `json:"cycle_id"`
	Status     string         `json:"status"`
	Registered int            `json:"registered"`
	Reported   int            `json:"reported"`
	Stragglers int            `json:"stragglers"`
	Counts     map[string]int `json:"counts"`
	Errors     []struct {
		Code     string            `json:"code"`
		Category string            `json:"category"`
		Message  string            `json:"message"`
		Cause    string            `json:"cause"`
		WorkerID string            `json:"worker_id"`
		Metadata map[string]string `json:"metadata"`
	} `json:"errors"`
}

func TestReportCleanCycle(t *testing.T) {
	coord, _ := newTestCoordinator(t, time.Second)
	coord.Register(&testWorker{id: "ok"})
	coord.Trigger()
	waitWithGuard(t, coord, 2*time.Second)

	rep := coord.Result().Report()
	if rep.Status != "clean" {
		t.Fatalf("expected clean status, got %q", rep.Status)
	}
	if rep.Registered != 1 || rep.Reported != 1 {
		t.Fatalf("unexpected counts: %+v", rep)
	}
	if len(rep.Errors) != 0 || rep.Counts != nil {
		t.Fatalf("expected no errors in clean report, got %+v", rep)
	}
}

func TestReportJSON(t *testing.T) {
	coord, _ := newTestCoordinator(t, 100*time.Millisecond)

	coord.Register(&testWorker{id: "db", fail: true})
	coord.RegisterFunc("panicky", func(stop <-chan struct{}) error {
		<-stop
		panic("flush exploded")
	})
	coord.Register(&testWorker{id: "stuck", delay: time.Second})
	coord.Trigger()
	waitWithGuard(t, coord, 2*time.Second)

	data, err := json.Marshal(coord.Result().Report())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got reportJSON
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Status != "failed" || got.CycleID == "" {
		t.Fatalf("unexpected header: %s", data)
	}
	if got.Registered != 3 || got.Reported != 2 || got.Stragglers != 1 {
		t.Fatalf("unexpected totals: %s", data)
	}
	if got.Counts[string(kiterrors.ErrCodeWorkerFailed)] != 2 || got.Counts[string(kiterrors.ErrCodeTimeout)] != 1 {
		t.Fatalf("unexpected counts: %v", got.Counts)
	}
	if len(got.Errors) != 3 {
		t.Fatalf("expected 3 report errors, got %s", data)
	}

	byWorker := map[string]string{}
	for _, e := range got.Errors[:2] {
		byWorker[e.WorkerID] = e.Code
	}
	if byWorker["db"] != string(kiterrors.ErrCodeWorkerFailed) {
		t.Errorf("expected db to report WORKER_FAILED, got %v", byWorker)
	}
	if byWorker["panicky"] != string(kiterrors.ErrCodePanic) {
		t.Errorf("expected panicky to report PANIC, got %v", byWorker)
	}

	last := got.Errors[2]
	if last.Code != string(kiterrors.ErrCodeTimeout) || last.Category != string(kiterrors.CategoryTransient) {
		t.Errorf("expected transient TIMEOUT last, got %+v", last)
	}
	if last.Metadata["remaining"] != "1" {
		t.Errorf("expected remaining=1, got %v", last.Metadata)
	}
}

func TestReportChannelError(t *testing.T) {
	rep := (&ShutdownResult{
		Errors: []error{&ChannelError{Op: "receive signal", Err: ErrSignalChannelClosed}},
	}).Report()

	if len(rep.Errors) != 1 || rep.Errors[0].Code() != kiterrors.ErrCodeChannel {
		t.Fatalf("expected CHANNEL report error, got %+v", rep.Errors)
	}
}
