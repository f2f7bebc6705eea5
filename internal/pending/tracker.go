package pending

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"wanderer/internal/models"
)

// Op is the kind of pending operation wrapped around a signature.
type Op int

const (
	OpAddition Op = iota + 1
	OpDeletion
)

// ErrStaleUndo reports that an undo tried to compensate a signature the
// expiration policy (or another writer) had already destroyed. Callers must
// see this as a distinct failure, never as silent success.
var ErrStaleUndo = errors.New("pending: undo targeted signatures already removed")

// State is the client-observable pending flag set for one signature. It is
// never persisted; the tracker alone owns it and views join it in at read
// time.
type State struct {
	Op    Op
	Until time.Time
}

// RemoveFunc performs a destructive signature removal (persistence write plus
// broadcast). Implementations report ErrStaleUndo, wrapped, when some of the
// records no longer exist.
type RemoveFunc func(ctx context.Context, systemID string, sigs []models.Signature) error

// UndoResult summarizes one snapshot undo.
type UndoResult struct {
	Additions []models.Signature
	Deletions []models.Signature
}

// Tracker is the pending-state machine: every tracked addition or deletion
// owns an independent finalization timer keyed by system and eve id. Timer
// expiry and undo share a single take-then-settle path so a timer firing
// mid-undo can never duplicate a destructive call.
type Tracker struct {
	Delay  time.Duration
	Remove RemoveFunc
	Logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	op       Op
	systemID string
	sig      models.Signature
	until    time.Time
	timer    *time.Timer
}

func key(systemID, eveID string) string {
	return systemID + "|" + eveID
}

// TrackAdditions marks freshly added signatures as pending. When the timer
// fires the flag simply dissolves and the record is Active; until then an
// undo reverts the addition with a compensating removal.
func (t *Tracker) TrackAdditions(systemID string, sigs []models.Signature) {
	t.track(OpAddition, systemID, sigs)
}

// TrackDeletions marks signatures for lazy deletion. The record stays in the
// store until the timer fires; only then does the destructive removal run.
func (t *Tracker) TrackDeletions(systemID string, sigs []models.Signature) {
	t.track(OpDeletion, systemID, sigs)
}

func (t *Tracker) track(op Op, systemID string, sigs []models.Signature) {
	if t == nil || len(sigs) == 0 {
		return
	}
	delay := t.Delay
	if delay <= 0 {
		delay = 30 * time.Second
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entries == nil {
		t.entries = map[string]*entry{}
	}
	now := time.Now().UTC()
	for _, sig := range sigs {
		k := key(systemID, sig.EveID)
		if prev, ok := t.entries[k]; ok {
			prev.timer.Stop()
		}
		e := &entry{
			op:       op,
			systemID: systemID,
			sig:      sig,
			until:    now.Add(delay),
		}
		e.timer = time.AfterFunc(delay, func() { t.finalize(k) })
		t.entries[k] = e
	}
}

// take removes and returns one entry, stopping its timer. It is the single
// exit path shared by natural finalization and undo.
func (t *Tracker) take(k string) *entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[k]
	if !ok {
		return nil
	}
	e.timer.Stop()
	delete(t.entries, k)
	return e
}

// finalize runs on timer expiry. Additions settle to Active with no work;
// deletions trigger the destructive removal.
func (t *Tracker) finalize(k string) {
	e := t.take(k)
	if e == nil {
		return // undone first
	}
	if e.op != OpDeletion || t.Remove == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := t.Remove(ctx, e.systemID, []models.Signature{e.sig}); err != nil && t.Logger != nil {
		t.Logger.Warn("pending deletion finalize failed",
			zap.String("system_id", e.systemID),
			zap.String("eve_id", e.sig.EveID),
			zap.Error(err))
	}
}

// Undo reverts every pending operation captured at invocation time: it
// snapshots the pending set and cancels all timers before issuing any write,
// so operations tracked after the snapshot are untouched and no timer can
// race the compensation. Additions are reverted with a compensating removal;
// deletions only need their local flag cleared since the record was never
// destroyed. A failed compensating call is logged and not retried; the
// pending flags are cleared regardless. ErrStaleUndo surfaces when any
// compensated record was already gone.
func (t *Tracker) Undo(ctx context.Context) (UndoResult, error) {
	if t == nil {
		return UndoResult{}, nil
	}
	t.mu.Lock()
	snapshot := t.entries
	t.entries = map[string]*entry{}
	t.mu.Unlock()

	var res UndoResult
	additionsBySystem := map[string][]models.Signature{}
	for _, e := range snapshot {
		e.timer.Stop()
		switch e.op {
		case OpAddition:
			res.Additions = append(res.Additions, e.sig)
			additionsBySystem[e.systemID] = append(additionsBySystem[e.systemID], e.sig)
		case OpDeletion:
			res.Deletions = append(res.Deletions, e.sig)
		}
	}

	var undoErr error
	for systemID, sigs := range additionsBySystem {
		if t.Remove == nil {
			continue
		}
		err := t.Remove(ctx, systemID, sigs)
		if err == nil {
			continue
		}
		if t.Logger != nil {
			t.Logger.Warn("undo compensating removal failed",
				zap.String("system_id", systemID),
				zap.Int("signatures", len(sigs)),
				zap.Error(err))
		}
		if errors.Is(err, ErrStaleUndo) || undoErr == nil {
			undoErr = err
		}
	}
	return res, undoErr
}

// States returns the pending flags for one system, for joining into a
// signature listing at read time.
func (t *Tracker) States(systemID string) map[string]State {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := map[string]State{}
	for _, e := range t.entries {
		if e.systemID != systemID {
			continue
		}
		out[e.sig.EveID] = State{Op: e.op, Until: e.until}
	}
	return out
}

// PendingCount returns the number of tracked operations.
func (t *Tracker) PendingCount() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Stop cancels every timer without settling anything. Shutdown only.
func (t *Tracker) Stop() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, e := range t.entries {
		e.timer.Stop()
		delete(t.entries, k)
	}
}
