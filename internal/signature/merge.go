package signature

import (
	"strings"

	"wanderer/internal/models"
)

// IsFullID reports whether an eve id is the canonical 7-character dashed
// probe-scanner shape (e.g. "ABC-123") rather than a 3-character bookmark
// prefix.
func IsFullID(eveID string) bool {
	return len(eveID) == 7 && strings.Contains(eveID, "-")
}

// Prefix returns the uppercased 3-character wormhole prefix of an eve id.
func Prefix(eveID string) string {
	if len(eveID) < 3 {
		return strings.ToUpper(eveID)
	}
	return strings.ToUpper(eveID[:3])
}

// Merge deduplicates a candidate list: the existing set concatenated with
// freshly parsed candidates, in that order. Candidate order is significant:
// later values win every field collision, which makes the tie-break the
// paste order rather than map iteration order.
//
// Non-wormhole records pass through keyed by eve id, last write winning.
// Wormhole records are grouped by 3-character prefix; each group collapses
// onto a canonical base (the first full dashed id, else the first member),
// with the other members overriding non-empty fields and shallow-merging
// their custom info. Once a full dashed record exists for a prefix, any
// remaining 3-character partial for that prefix is dropped. Every output
// record leaves with a custom info blob containing a dest key.
func Merge(candidates []models.Signature) []models.Signature {
	type slot struct {
		whPrefix string // non-empty marks a wormhole group slot
		sig      models.Signature
	}

	var (
		order      []slot
		plainIndex = map[string]int{}
		whGroups   = map[string][]models.Signature{}
	)

	for _, cand := range candidates {
		if cand.Group == GroupWormhole {
			prefix := Prefix(cand.EveID)
			if _, seen := whGroups[prefix]; !seen {
				order = append(order, slot{whPrefix: prefix})
			}
			whGroups[prefix] = append(whGroups[prefix], cand)
			continue
		}
		if idx, seen := plainIndex[cand.EveID]; seen {
			order[idx].sig = cand
			continue
		}
		plainIndex[cand.EveID] = len(order)
		order = append(order, slot{sig: cand})
	}

	merged := make([]models.Signature, 0, len(order))
	for _, s := range order {
		if s.whPrefix == "" {
			merged = append(merged, s.sig)
			continue
		}
		merged = append(merged, resolveWormholeGroup(whGroups[s.whPrefix]))
	}

	// A partial bookmark dies once its canonical counterpart is known.
	fullByPrefix := map[string]bool{}
	for _, sig := range merged {
		if sig.Group == GroupWormhole && IsFullID(sig.EveID) {
			fullByPrefix[Prefix(sig.EveID)] = true
		}
	}
	out := merged[:0]
	for _, sig := range merged {
		if sig.Group == GroupWormhole && !IsFullID(sig.EveID) && fullByPrefix[Prefix(sig.EveID)] {
			continue
		}
		EnsureCustomInfo(&sig)
		out = append(out, sig)
	}
	return out
}

// resolveWormholeGroup collapses the members of one prefix group onto the
// canonical base in their original order.
func resolveWormholeGroup(members []models.Signature) models.Signature {
	baseIdx := 0
	for i, m := range members {
		if IsFullID(m.EveID) {
			baseIdx = i
			break
		}
	}
	base := members[baseIdx]
	for i, m := range members {
		if i == baseIdx {
			continue
		}
		if m.Group != "" {
			base.Group = m.Group
		}
		if m.Name != "" {
			base.Name = m.Name
		}
		if m.Description != "" {
			base.Description = m.Description
		}
		base.CustomInfo = mergeCustomInfo(base.CustomInfo, m.CustomInfo)
		if base.InsertedAt.IsZero() && !m.InsertedAt.IsZero() {
			base.InsertedAt = m.InsertedAt
		}
	}
	return base
}
