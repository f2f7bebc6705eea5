package signature

import (
	"encoding/json"

	"gorm.io/datatypes"

	"wanderer/internal/models"
)

// CustomInfo keys. Every parse/merge pass guarantees "dest" is present.
const (
	InfoDest   = "dest"
	InfoFullID = "full_id"
	InfoEOL    = "isEOL"
	InfoCrit   = "isCrit"
)

// CustomInfoMap decodes a signature's custom info blob. A missing or
// malformed blob yields nil, not an error; callers fall back via
// EnsureCustomInfo.
func CustomInfoMap(sig models.Signature) map[string]any {
	if len(sig.CustomInfo) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(sig.CustomInfo, &m); err != nil {
		return nil
	}
	return m
}

func encodeCustomInfo(m map[string]any) datatypes.JSON {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// EnsureCustomInfo enforces the custom-info invariant on a single record: if
// the blob is absent, malformed, or lacks a dest key, it is replaced with the
// safe fallback {dest: eve_id, full_id: eve_id}.
func EnsureCustomInfo(sig *models.Signature) {
	m := CustomInfoMap(*sig)
	if m != nil {
		if _, ok := m[InfoDest]; ok {
			return
		}
	}
	sig.CustomInfo = encodeCustomInfo(map[string]any{
		InfoDest:   sig.EveID,
		InfoFullID: sig.EveID,
	})
}

// mergeCustomInfo shallow-merges extra's keys over base, later values winning
// on collision. Either side may be empty or malformed; malformed blobs
// contribute nothing.
func mergeCustomInfo(base, extra datatypes.JSON) datatypes.JSON {
	var bm, em map[string]any
	if len(base) > 0 {
		_ = json.Unmarshal(base, &bm)
	}
	if len(extra) > 0 {
		_ = json.Unmarshal(extra, &em)
	}
	if bm == nil && em == nil {
		return base
	}
	if bm == nil {
		bm = map[string]any{}
	}
	for k, v := range em {
		bm[k] = v
	}
	return encodeCustomInfo(bm)
}
