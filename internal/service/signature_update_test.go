package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wanderer/internal/broadcast"
	"wanderer/internal/config"
	"wanderer/internal/models"
	"wanderer/internal/pending"
	"wanderer/internal/signature"
)

func probeLine(eveID, groupToken, name string) string {
	return eveID + "\tCosmic Signature\t" + groupToken + "\t" + name + "\t0.0%\t4.07 AU"
}

func updateFixture(repo *stubRepo, cfg config.SignaturesConfig) *SignatureUpdateService {
	return &SignatureUpdateService{Repo: repo, Config: cfg}
}

func seedSig(repo *stubRepo, systemID string, sig models.Signature) {
	sig.SystemID = systemID
	if sig.UpdatedAt.IsZero() {
		sig.UpdatedAt = time.Now().UTC()
	}
	repo.sigs[systemID] = append(repo.sigs[systemID], sig)
}

func TestApplyPaste_AddsNew(t *testing.T) {
	repo := newStubRepo()
	svc := updateFixture(repo, config.SignaturesConfig{})

	raw := probeLine("ABC-123", "Wormhole", "K162") + "\n" + probeLine("DEF-456", "Data Site", "Transponder")
	res, err := svc.ApplyPaste(context.Background(), "31000005", raw, PasteOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Added != 2 || res.Updated != 0 || res.Removed != 0 {
		t.Fatalf("res=%+v", res)
	}
	if len(res.Signatures) != 2 {
		t.Fatalf("signatures=%+v", res.Signatures)
	}
	for _, sig := range res.Signatures {
		if sig.SystemID != "31000005" {
			t.Fatalf("system_id=%q", sig.SystemID)
		}
	}
}

func TestApplyPaste_ReplaceRemovesMissing(t *testing.T) {
	repo := newStubRepo()
	seedSig(repo, "31000005", models.Signature{EveID: "ABC-123", Group: signature.GroupDataSite, Name: "site"})
	seedSig(repo, "31000005", models.Signature{EveID: "DEF-456", Group: signature.GroupRelicSite, Name: "ruins"})
	svc := updateFixture(repo, config.SignaturesConfig{})

	res, err := svc.ApplyPaste(context.Background(), "31000005", probeLine("ABC-123", "Data Site", "site"), PasteOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Removed != 1 {
		t.Fatalf("res=%+v", res)
	}
	left, _ := repo.ListSignaturesBySystem(context.Background(), "31000005")
	if len(left) != 1 || left[0].EveID != "ABC-123" {
		t.Fatalf("left=%+v", left)
	}
}

func TestApplyPaste_UpdateOnlyKeepsMissing(t *testing.T) {
	repo := newStubRepo()
	seedSig(repo, "31000005", models.Signature{EveID: "ABC-123", Group: signature.GroupDataSite})
	seedSig(repo, "31000005", models.Signature{EveID: "DEF-456", Group: signature.GroupRelicSite})
	svc := updateFixture(repo, config.SignaturesConfig{})

	res, err := svc.ApplyPaste(context.Background(), "31000005", probeLine("ABC-123", "Data Site", "site"), PasteOptions{UpdateOnly: true})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Removed != 0 {
		t.Fatalf("res=%+v", res)
	}
	left, _ := repo.ListSignaturesBySystem(context.Background(), "31000005")
	if len(left) != 2 {
		t.Fatalf("left=%+v", left)
	}
}

func TestApplyPaste_GroupUpgradePreservesIdentity(t *testing.T) {
	repo := newStubRepo()
	inserted := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	seedSig(repo, "31000005", models.Signature{
		ID:         7,
		EveID:      "ABC-123",
		Group:      signature.GroupCosmicSignature,
		InsertedAt: inserted,
	})
	svc := updateFixture(repo, config.SignaturesConfig{})

	res, err := svc.ApplyPaste(context.Background(), "31000005", probeLine("ABC-123", "Wormhole", "K162"), PasteOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Updated != 1 || res.Added != 0 {
		t.Fatalf("res=%+v", res)
	}
	left, _ := repo.ListSignaturesBySystem(context.Background(), "31000005")
	if len(left) != 1 {
		t.Fatalf("left=%+v", left)
	}
	got := left[0]
	if got.Group != signature.GroupWormhole || got.Name != "K162" {
		t.Fatalf("upgrade not applied: %+v", got)
	}
	if got.ID != 7 || !got.InsertedAt.Equal(inserted) {
		t.Fatalf("identity lost: %+v", got)
	}
}

func TestApplyPaste_SupersededPartialReplaced(t *testing.T) {
	repo := newStubRepo()
	seedSig(repo, "31000005", models.Signature{EveID: "ERU", Group: signature.GroupWormhole, Name: "ERU"})
	svc := updateFixture(repo, config.SignaturesConfig{})

	res, err := svc.ApplyPaste(context.Background(), "31000005", probeLine("ERU-123", "Wormhole", "K162"), PasteOptions{UpdateOnly: true})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Added != 1 || res.Removed != 1 {
		t.Fatalf("res=%+v", res)
	}
	left, _ := repo.ListSignaturesBySystem(context.Background(), "31000005")
	if len(left) != 1 || left[0].EveID != "ERU-123" {
		t.Fatalf("left=%+v, want only the canonical id", left)
	}
}

func TestApplyPaste_BookmarkNeverDuplicatesFull(t *testing.T) {
	repo := newStubRepo()
	seedSig(repo, "31000005", models.Signature{EveID: "ERU-123", Group: signature.GroupWormhole, Name: "K162"})
	svc := updateFixture(repo, config.SignaturesConfig{})

	res, err := svc.ApplyPaste(context.Background(), "31000005", "123-ERU 2 E\tWormhole\t-", PasteOptions{UpdateOnly: true})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Added != 0 {
		t.Fatalf("res=%+v, partial must fold into the stored full id", res)
	}
	left, _ := repo.ListSignaturesBySystem(context.Background(), "31000005")
	if len(left) != 1 || left[0].EveID != "ERU-123" {
		t.Fatalf("left=%+v", left)
	}
}

func TestApplyPaste_LazyDeleteFlagsPending(t *testing.T) {
	repo := newStubRepo()
	seedSig(repo, "31000005", models.Signature{EveID: "ABC-123", Group: signature.GroupDataSite})
	seedSig(repo, "31000005", models.Signature{EveID: "DEF-456", Group: signature.GroupRelicSite})
	svc := updateFixture(repo, config.SignaturesConfig{LazyDelete: true})
	tracker := &pending.Tracker{Delay: time.Hour, Remove: svc.RemoveNow}
	svc.Tracker = tracker
	defer tracker.Stop()

	res, err := svc.ApplyPaste(context.Background(), "31000005", probeLine("ABC-123", "Data Site", "site"), PasteOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Removed != 0 || res.PendingDeletions != 1 {
		t.Fatalf("res=%+v", res)
	}
	left, _ := repo.ListSignaturesBySystem(context.Background(), "31000005")
	if len(left) != 2 {
		t.Fatalf("left=%+v, lazy delete must not destroy yet", left)
	}
	states := tracker.States("31000005")
	st, ok := states["DEF-456"]
	if !ok || st.Op != pending.OpDeletion {
		t.Fatalf("states=%+v", states)
	}
}

func TestUndo_RevertsPendingAddition(t *testing.T) {
	repo := newStubRepo()
	svc := updateFixture(repo, config.SignaturesConfig{LazyDelete: true})
	tracker := &pending.Tracker{Delay: time.Hour, Remove: svc.RemoveNow}
	svc.Tracker = tracker
	defer tracker.Stop()

	if _, err := svc.ApplyPaste(context.Background(), "31000005", probeLine("ABC-123", "Wormhole", "K162"), PasteOptions{}); err != nil {
		t.Fatalf("paste err=%v", err)
	}
	res, err := svc.Undo(context.Background())
	if err != nil {
		t.Fatalf("undo err=%v", err)
	}
	if len(res.Additions) != 1 {
		t.Fatalf("res=%+v", res)
	}
	left, _ := repo.ListSignaturesBySystem(context.Background(), "31000005")
	if len(left) != 0 {
		t.Fatalf("left=%+v, undone addition must be removed", left)
	}
}

func TestUndo_StaleWhenRecordAlreadyGone(t *testing.T) {
	repo := newStubRepo()
	svc := updateFixture(repo, config.SignaturesConfig{LazyDelete: true})
	tracker := &pending.Tracker{Delay: time.Hour, Remove: svc.RemoveNow}
	svc.Tracker = tracker
	defer tracker.Stop()

	if _, err := svc.ApplyPaste(context.Background(), "31000005", probeLine("ABC-123", "Wormhole", "K162"), PasteOptions{}); err != nil {
		t.Fatalf("paste err=%v", err)
	}
	// Another writer destroys the record before the undo lands.
	if _, err := repo.DeleteSignaturesByEveIDs(context.Background(), "31000005", []string{"ABC-123"}); err != nil {
		t.Fatalf("delete err=%v", err)
	}

	_, err := svc.Undo(context.Background())
	if !errors.Is(err, pending.ErrStaleUndo) {
		t.Fatalf("err=%v, want ErrStaleUndo", err)
	}
	if tracker.PendingCount() != 0 {
		t.Fatalf("pending=%d", tracker.PendingCount())
	}
}

func TestApplyPaste_SuppressesUntouchedBroadcast(t *testing.T) {
	repo := newStubRepo()
	hub := broadcast.NewHub(nil)
	_, events := hub.Subscribe(8)
	svc := updateFixture(repo, config.SignaturesConfig{SuppressUntouchedBroadcast: true})
	svc.Hub = hub

	raw := probeLine("ABC-123", "Wormhole", "K162")
	if _, err := svc.ApplyPaste(context.Background(), "31000005", raw, PasteOptions{}); err != nil {
		t.Fatalf("err=%v", err)
	}
	select {
	case <-events:
	default:
		t.Fatalf("first paste must broadcast")
	}

	// Re-pasting identical content re-asserts but changes nothing.
	if _, err := svc.ApplyPaste(context.Background(), "31000005", raw, PasteOptions{}); err != nil {
		t.Fatalf("err=%v", err)
	}
	select {
	case ev := <-events:
		t.Fatalf("unexpected broadcast %+v for untouched paste", ev)
	default:
	}
}

func TestDeleteSignature_Direct(t *testing.T) {
	repo := newStubRepo()
	seedSig(repo, "31000005", models.Signature{EveID: "ABC-123", Group: signature.GroupDataSite})
	hub := broadcast.NewHub(nil)
	_, events := hub.Subscribe(4)
	svc := updateFixture(repo, config.SignaturesConfig{})
	svc.Hub = hub

	if err := svc.DeleteSignature(context.Background(), "31000005", "ABC-123"); err != nil {
		t.Fatalf("err=%v", err)
	}
	left, _ := repo.ListSignaturesBySystem(context.Background(), "31000005")
	if len(left) != 0 {
		t.Fatalf("left=%+v", left)
	}
	select {
	case <-events:
	default:
		t.Fatalf("direct delete must broadcast")
	}
}

func TestDeleteSignature_NotFound(t *testing.T) {
	repo := newStubRepo()
	svc := updateFixture(repo, config.SignaturesConfig{})
	if err := svc.DeleteSignature(context.Background(), "31000005", "NOP-000"); err == nil {
		t.Fatalf("expected error for unknown signature")
	}
}

func TestRemoveNow_ShortfallIsStale(t *testing.T) {
	repo := newStubRepo()
	seedSig(repo, "31000005", models.Signature{EveID: "ABC-123", Group: signature.GroupDataSite})
	svc := updateFixture(repo, config.SignaturesConfig{})

	err := svc.RemoveNow(context.Background(), "31000005", []models.Signature{
		{EveID: "ABC-123"}, {EveID: "GONE-99"},
	})
	if !errors.Is(err, pending.ErrStaleUndo) {
		t.Fatalf("err=%v, want ErrStaleUndo", err)
	}
	left, _ := repo.ListSignaturesBySystem(context.Background(), "31000005")
	if len(left) != 0 {
		t.Fatalf("left=%+v, existing record must still be removed", left)
	}
}
