package platform

import (
	"errors"
	"testing"
)

func TestAuditEventShapes(t *testing.T) {
	paste := PasteLog("31000005", 3, 1, 2, 1)
	if paste.Agent != DefaultAgent || paste.Action != ActionSignaturePaste || paste.Level != "info" {
		t.Fatalf("paste=%+v", paste)
	}
	if paste.Details["system_id"] != "31000005" || paste.Details["pending_deletions"] != 1 {
		t.Fatalf("paste details=%+v", paste.Details)
	}

	del := DeleteLog("31000005", "ABC-123")
	if del.Action != ActionSignatureDelete || del.Details["eve_id"] != "ABC-123" {
		t.Fatalf("delete=%+v", del)
	}

	undo := UndoLog(2, 1)
	if undo.Details["reverted_additions"] != 2 || undo.Details["reverted_deletions"] != 1 {
		t.Fatalf("undo details=%+v", undo.Details)
	}

	gc := GCFailedLog(errors.New("db down"))
	if gc.Level != "warn" || gc.Details["error"] != "db down" {
		t.Fatalf("gc=%+v", gc)
	}
}
