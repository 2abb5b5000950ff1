package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/subcue/subcue/internal/subtitle"
)

// test harness around a store-backed scheduler with a controllable save func
type saveRecorder struct {
	mu      sync.Mutex
	calls   int32
	saved   [][]subtitle.Subtitle
	err     error
	block   chan struct{} // when set, saves block until closed
	started chan struct{} // signalled when a save begins
}

func (r *saveRecorder) save(ctx context.Context, cues []subtitle.Subtitle) error {
	atomic.AddInt32(&r.calls, 1)
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.saved = append(r.saved, cues)
	err := r.err
	r.mu.Unlock()
	return err
}

func (r *saveRecorder) callCount() int {
	return int(atomic.LoadInt32(&r.calls))
}

func (r *saveRecorder) lastSaved() []subtitle.Subtitle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return nil
	}
	return r.saved[len(r.saved)-1]
}

func newTestScheduler(
	t *testing.T,
	delay time.Duration,
	rec *saveRecorder,
) (*subtitle.Store, *Scheduler) {
	t.Helper()
	store := subtitle.NewStore()
	sched := NewScheduler(delay, store.Snapshot, rec.save, nil)
	store.SetOnChange(sched.NotifyChange)
	t.Cleanup(sched.Close)
	return store, sched
}

func TestDebounceCoalescesRapidEdits(t *testing.T) {
	rec := &saveRecorder{}
	store, _ := newTestScheduler(t, 60*time.Millisecond, rec)

	id, _ := store.Insert(1, 2, "v0")
	for i, text := range []string{"v1", "v2", "v3"} {
		time.Sleep(15 * time.Millisecond)
		_ = i
		s := text
		if err := store.Update(id, subtitle.Patch{SourceText: &s}); err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}

	time.Sleep(150 * time.Millisecond)

	if got := rec.callCount(); got != 1 {
		t.Fatalf("save calls = %d, want exactly 1 for coalesced edits", got)
	}
	saved := rec.lastSaved()
	if len(saved) != 1 || saved[0].SourceText != "v3" {
		t.Errorf("saved payload should carry the last edit, got %+v", saved)
	}
}

func TestNoOpSuppression(t *testing.T) {
	rec := &saveRecorder{}
	store, sched := newTestScheduler(t, 10*time.Millisecond, rec)

	store.Insert(1, 2, "a")
	time.Sleep(60 * time.Millisecond)
	if rec.callCount() != 1 {
		t.Fatalf("expected first save, got %d calls", rec.callCount())
	}

	// same content fingerprint: no further network call
	if err := sched.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow failed: %v", err)
	}
	sched.NotifyChange()
	time.Sleep(60 * time.Millisecond)

	if rec.callCount() != 1 {
		t.Errorf("unchanged content must not be saved again, got %d calls", rec.callCount())
	}
}

func TestSingleInFlightSave(t *testing.T) {
	rec := &saveRecorder{
		block:   make(chan struct{}),
		started: make(chan struct{}, 2),
	}
	store, sched := newTestScheduler(t, 20*time.Millisecond, rec)

	store.Insert(1, 2, "a")
	<-rec.started // first save is now in flight

	// edit while saving: must not spawn a concurrent save
	text := "b"
	store.Update(store.Snapshot()[0].ID, subtitle.Patch{SourceText: &text})
	time.Sleep(60 * time.Millisecond)

	if got := rec.callCount(); got != 1 {
		t.Fatalf("concurrent save spawned: %d calls while one in flight", got)
	}
	if sched.State() != StateSaving {
		t.Fatalf("state = %v, want saving", sched.State())
	}

	close(rec.block)
	<-rec.started // the follow-up save after settle
	time.Sleep(30 * time.Millisecond)

	if got := rec.callCount(); got != 2 {
		t.Fatalf("expected exactly one follow-up save, got %d total", got)
	}
	saved := rec.lastSaved()
	if len(saved) != 1 || saved[0].SourceText != "b" {
		t.Errorf("follow-up save should carry the newest state, got %+v", saved)
	}
}

func TestFailedSaveKeepsStateDirty(t *testing.T) {
	rec := &saveRecorder{err: errors.New("backend down")}
	store, sched := newTestScheduler(t, 10*time.Millisecond, rec)

	var failed int32
	sched.OnSaveFailed = func(err error) { atomic.AddInt32(&failed, 1) }

	store.Insert(1, 2, "a")
	time.Sleep(60 * time.Millisecond)

	if rec.callCount() != 1 {
		t.Fatalf("expected one failed save, got %d", rec.callCount())
	}
	if atomic.LoadInt32(&failed) != 1 {
		t.Error("OnSaveFailed not reported")
	}

	// clear the error; an explicit save must retry because the fingerprint
	// never advanced
	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()

	if err := sched.SaveNow(context.Background()); err != nil {
		t.Fatalf("retry save failed: %v", err)
	}
	if rec.callCount() != 2 {
		t.Errorf("dirty state after failure must retry, got %d calls", rec.callCount())
	}
}

func TestSaveNowBypassesDebounce(t *testing.T) {
	rec := &saveRecorder{}
	store, sched := newTestScheduler(t, time.Hour, rec)

	store.Insert(1, 2, "a")
	if rec.callCount() != 0 {
		t.Fatal("debounce should still be pending")
	}

	if err := sched.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow failed: %v", err)
	}
	if rec.callCount() != 1 {
		t.Errorf("SaveNow should fire immediately, got %d calls", rec.callCount())
	}
	if sched.State() != StateIdle {
		t.Errorf("state after SaveNow = %v, want idle", sched.State())
	}
}

func TestMarkSavedSuppressesBulkLoadEcho(t *testing.T) {
	rec := &saveRecorder{}
	store, sched := newTestScheduler(t, 10*time.Millisecond, rec)

	server := []subtitle.Subtitle{{ID: "s1", StartTime: 1, EndTime: 2, SourceText: "x"}}
	sched.MarkSaved(server)
	store.ReplaceAll(server)
	time.Sleep(50 * time.Millisecond)

	if rec.callCount() != 0 {
		t.Errorf("server-origin bulk load must not be saved back, got %d calls", rec.callCount())
	}
}

func TestCloseCancelsPendingTimer(t *testing.T) {
	rec := &saveRecorder{}
	store, sched := newTestScheduler(t, 20*time.Millisecond, rec)

	store.Insert(1, 2, "a")
	sched.Close()
	time.Sleep(60 * time.Millisecond)

	if rec.callCount() != 0 {
		t.Errorf("closed scheduler must not fire saves, got %d calls", rec.callCount())
	}

	// notifications after close are ignored
	sched.NotifyChange()
	time.Sleep(40 * time.Millisecond)
	if rec.callCount() != 0 {
		t.Error("notification after close armed a save")
	}
}

func TestFingerprintIgnoresVolatileFields(t *testing.T) {
	base := []subtitle.Subtitle{{ID: "a", StartTime: 1, EndTime: 2, SourceText: "x"}}

	withConfidence := []subtitle.Subtitle{{ID: "a", StartTime: 1, EndTime: 2, SourceText: "x", Confidence: 0.7}}
	if Fingerprint(base) != Fingerprint(withConfidence) {
		t.Error("confidence is display-only and must not affect the fingerprint")
	}

	withEdit := []subtitle.Subtitle{{ID: "a", StartTime: 1, EndTime: 2, SourceText: "y"}}
	if Fingerprint(base) == Fingerprint(withEdit) {
		t.Error("text edits must change the fingerprint")
	}

	withStyle := []subtitle.Subtitle{{ID: "a", StartTime: 1, EndTime: 2, SourceText: "x",
		Styling: subtitle.Styling{Bold: true}}}
	if Fingerprint(base) == Fingerprint(withStyle) {
		t.Error("styling changes must change the fingerprint")
	}
}
