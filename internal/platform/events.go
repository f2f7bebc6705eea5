package platform

// DefaultAgent identifies this service in platform audit logs.
const DefaultAgent = "wanderer-mapd"

// Audit actions recorded against the platform. The platform indexes logs by
// action, so these strings are part of the contract.
const (
	ActionSignaturePaste   = "wanderer_signature_paste"
	ActionSignatureDelete  = "wanderer_signature_delete"
	ActionSignatureUndo    = "wanderer_signature_undo"
	ActionSignatureGCFail  = "wanderer_signature_gc_failed"
	ActionSystemUpsert     = "wanderer_system_upsert"
	ActionConnectionUpsert = "wanderer_connection_upsert"
)

func newLog(action, level string, details map[string]any) CreateLogRequest {
	return CreateLogRequest{
		Agent:    DefaultAgent,
		Action:   action,
		Level:    level,
		Details:  details,
		Metadata: map[string]any{},
	}
}

// PasteLog records one reconciliation pass over a system's signature set.
func PasteLog(systemID string, added, updated, removed, pendingDeletions int) CreateLogRequest {
	return newLog(ActionSignaturePaste, "info", map[string]any{
		"system_id":         systemID,
		"added":             added,
		"updated":           updated,
		"removed":           removed,
		"pending_deletions": pendingDeletions,
	})
}

// DeleteLog records a single user-initiated signature removal.
func DeleteLog(systemID, eveID string) CreateLogRequest {
	return newLog(ActionSignatureDelete, "info", map[string]any{
		"system_id": systemID,
		"eve_id":    eveID,
	})
}

// UndoLog records a snapshot undo and how much it reverted.
func UndoLog(revertedAdditions, revertedDeletions int) CreateLogRequest {
	return newLog(ActionSignatureUndo, "info", map[string]any{
		"reverted_additions": revertedAdditions,
		"reverted_deletions": revertedDeletions,
	})
}

// GCFailedLog records a failed periodic expiration sweep.
func GCFailedLog(err error) CreateLogRequest {
	return newLog(ActionSignatureGCFail, "warn", map[string]any{
		"error": err.Error(),
	})
}

// SystemUpsertLog records a system create or update.
func SystemUpsertLog(systemID string) CreateLogRequest {
	return newLog(ActionSystemUpsert, "info", map[string]any{
		"system_id": systemID,
	})
}

// ConnectionUpsertLog records a connection create or update.
func ConnectionUpsertLog(source, target string) CreateLogRequest {
	return newLog(ActionConnectionUpsert, "info", map[string]any{
		"source": source,
		"target": target,
	})
}
