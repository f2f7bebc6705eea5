package pending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"wanderer/internal/models"
)

type removeRecorder struct {
	mu    sync.Mutex
	calls []removeCall
	err   error
}

type removeCall struct {
	systemID string
	eveIDs   []string
}

func (r *removeRecorder) remove(_ context.Context, systemID string, sigs []models.Signature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(sigs))
	for _, s := range sigs {
		ids = append(ids, s.EveID)
	}
	r.calls = append(r.calls, removeCall{systemID: systemID, eveIDs: ids})
	return r.err
}

func (r *removeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func whSig(eveID string) models.Signature {
	return models.Signature{SystemID: "31000005", EveID: eveID, Group: "wormhole"}
}

func TestTracker_UndoRevertsAdditions(t *testing.T) {
	rec := &removeRecorder{}
	tr := &Tracker{Delay: time.Hour, Remove: rec.remove}
	defer tr.Stop()

	tr.TrackAdditions("31000005", []models.Signature{whSig("ABC-123"), whSig("DEF-456")})
	if tr.PendingCount() != 2 {
		t.Fatalf("pending=%d", tr.PendingCount())
	}

	res, err := tr.Undo(context.Background())
	if err != nil {
		t.Fatalf("undo err=%v", err)
	}
	if len(res.Additions) != 2 {
		t.Fatalf("additions=%+v", res.Additions)
	}
	if rec.count() != 1 {
		t.Fatalf("remove calls=%d, want one batched call", rec.count())
	}
	if len(rec.calls[0].eveIDs) != 2 || rec.calls[0].systemID != "31000005" {
		t.Fatalf("call=%+v", rec.calls[0])
	}
	if tr.PendingCount() != 0 {
		t.Fatalf("pending=%d after undo", tr.PendingCount())
	}
}

func TestTracker_UndoClearsDeletionsLocally(t *testing.T) {
	rec := &removeRecorder{}
	tr := &Tracker{Delay: time.Hour, Remove: rec.remove}
	defer tr.Stop()

	tr.TrackDeletions("31000005", []models.Signature{whSig("ABC-123")})
	res, err := tr.Undo(context.Background())
	if err != nil {
		t.Fatalf("undo err=%v", err)
	}
	if len(res.Deletions) != 1 {
		t.Fatalf("deletions=%+v", res.Deletions)
	}
	// The record was never destroyed, so no compensating write happens.
	if rec.count() != 0 {
		t.Fatalf("remove calls=%d, want 0", rec.count())
	}
	if tr.PendingCount() != 0 {
		t.Fatalf("pending=%d", tr.PendingCount())
	}
}

func TestTracker_DeletionFinalizesAfterDelay(t *testing.T) {
	done := make(chan removeCall, 1)
	tr := &Tracker{
		Delay: 10 * time.Millisecond,
		Remove: func(_ context.Context, systemID string, sigs []models.Signature) error {
			ids := make([]string, 0, len(sigs))
			for _, s := range sigs {
				ids = append(ids, s.EveID)
			}
			done <- removeCall{systemID: systemID, eveIDs: ids}
			return nil
		},
	}
	defer tr.Stop()

	tr.TrackDeletions("31000005", []models.Signature{whSig("ABC-123")})

	select {
	case call := <-done:
		if call.systemID != "31000005" || len(call.eveIDs) != 1 || call.eveIDs[0] != "ABC-123" {
			t.Fatalf("call=%+v", call)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("deletion never finalized")
	}
	deadline := time.Now().Add(time.Second)
	for tr.PendingCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("pending=%d after finalize", tr.PendingCount())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestTracker_AdditionSettlesWithoutRemove(t *testing.T) {
	rec := &removeRecorder{}
	tr := &Tracker{Delay: 10 * time.Millisecond, Remove: rec.remove}
	defer tr.Stop()

	tr.TrackAdditions("31000005", []models.Signature{whSig("ABC-123")})
	deadline := time.Now().Add(time.Second)
	for tr.PendingCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("addition never settled")
		}
		time.Sleep(time.Millisecond)
	}
	if rec.count() != 0 {
		t.Fatalf("remove calls=%d, settled addition must not remove", rec.count())
	}
}

func TestTracker_UndoSurfacesStale(t *testing.T) {
	rec := &removeRecorder{err: fmt.Errorf("remove 0 of 1: %w", ErrStaleUndo)}
	tr := &Tracker{Delay: time.Hour, Remove: rec.remove}
	defer tr.Stop()

	tr.TrackAdditions("31000005", []models.Signature{whSig("ABC-123")})
	_, err := tr.Undo(context.Background())
	if !errors.Is(err, ErrStaleUndo) {
		t.Fatalf("err=%v, want ErrStaleUndo", err)
	}
	if tr.PendingCount() != 0 {
		t.Fatalf("pending=%d, flags must clear even on failure", tr.PendingCount())
	}
}

func TestTracker_UndoSnapshotExcludesLaterTracks(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	rec := &removeRecorder{}
	tr := &Tracker{
		Delay: time.Hour,
		Remove: func(ctx context.Context, systemID string, sigs []models.Signature) error {
			close(entered)
			<-release
			return rec.remove(ctx, systemID, sigs)
		},
	}
	defer tr.Stop()

	tr.TrackAdditions("31000005", []models.Signature{whSig("ABC-123")})

	done := make(chan UndoResult, 1)
	go func() {
		res, _ := tr.Undo(context.Background())
		done <- res
	}()

	// Track a fresh addition while the undo's compensating write is in
	// flight. It postdates the snapshot and must survive the undo.
	<-entered
	tr.TrackAdditions("31000005", []models.Signature{whSig("DEF-456")})
	close(release)

	res := <-done
	if len(res.Additions) != 1 || res.Additions[0].EveID != "ABC-123" {
		t.Fatalf("additions=%+v, want only the pre-undo signature", res.Additions)
	}
	if rec.count() != 1 || len(rec.calls[0].eveIDs) != 1 || rec.calls[0].eveIDs[0] != "ABC-123" {
		t.Fatalf("calls=%+v", rec.calls)
	}
	states := tr.States("31000005")
	if st, ok := states["DEF-456"]; !ok || st.Op != OpAddition {
		t.Fatalf("states=%+v, later addition must stay pending", states)
	}
}

func TestTracker_RetrackReplacesEntry(t *testing.T) {
	tr := &Tracker{Delay: time.Hour}
	defer tr.Stop()

	tr.TrackAdditions("31000005", []models.Signature{whSig("ABC-123")})
	tr.TrackDeletions("31000005", []models.Signature{whSig("ABC-123")})
	if tr.PendingCount() != 1 {
		t.Fatalf("pending=%d", tr.PendingCount())
	}
	states := tr.States("31000005")
	st, ok := states["ABC-123"]
	if !ok {
		t.Fatalf("states=%+v", states)
	}
	if st.Op != OpDeletion {
		t.Fatalf("op=%v, want deletion after re-track", st.Op)
	}
	if !st.Until.After(time.Now()) {
		t.Fatalf("until=%v not in the future", st.Until)
	}
}

func TestTracker_StatesScopedBySystem(t *testing.T) {
	tr := &Tracker{Delay: time.Hour}
	defer tr.Stop()

	a := whSig("ABC-123")
	b := models.Signature{SystemID: "31000042", EveID: "DEF-456", Group: "wormhole"}
	tr.TrackAdditions("31000005", []models.Signature{a})
	tr.TrackAdditions("31000042", []models.Signature{b})

	if got := tr.States("31000005"); len(got) != 1 {
		t.Fatalf("states=%+v", got)
	}
	if got := tr.States("31000099"); len(got) != 0 {
		t.Fatalf("states=%+v, want empty", got)
	}
}
