package signature

import "wanderer/internal/models"

// DiffOptions control the two behavior axes of a diff pass.
type DiffOptions struct {
	// UpdateOnly suppresses removals of old records missing from the
	// incoming set (the superseded-bookmark rule still removes).
	UpdateOnly bool
	// SkipUntouched omits no-op re-asserts from the update batch.
	SkipUntouched bool
}

// DiffResult partitions the outcome of comparing the authoritative set
// against a merged incoming set. The three lists feed one persistence write.
type DiffResult struct {
	Added   []models.Signature
	Updated []models.Signature
	Removed []models.Signature
}

// Empty reports whether the diff carries no work at all.
func (r DiffResult) Empty() bool {
	return len(r.Added) == 0 && len(r.Updated) == 0 && len(r.Removed) == 0
}

// Diff compares old (current authoritative set) against incoming (freshly
// merged set). A 3-character wormhole bookmark whose full dashed counterpart
// appears in incoming is removed outright, since the canonical record supersedes
// it. Exact eve-id matches update in place, taking the incoming group and
// name only when the incoming group strictly outranks the old one; the
// updated record always keeps the old identity. Incoming records with no old
// counterpart are added.
func Diff(old, incoming []models.Signature, opts DiffOptions) DiffResult {
	incomingByID := make(map[string]models.Signature, len(incoming))
	fullPrefixes := map[string]bool{}
	for _, sig := range incoming {
		incomingByID[sig.EveID] = sig
		if sig.Group == GroupWormhole && IsFullID(sig.EveID) {
			fullPrefixes[Prefix(sig.EveID)] = true
		}
	}

	var res DiffResult
	oldIDs := make(map[string]bool, len(old))
	for _, prev := range old {
		oldIDs[prev.EveID] = true

		if prev.Group == GroupWormhole && !IsFullID(prev.EveID) && fullPrefixes[Prefix(prev.EveID)] {
			res.Removed = append(res.Removed, prev)
			continue
		}

		next, ok := incomingByID[prev.EveID]
		if !ok {
			if !opts.UpdateOnly {
				res.Removed = append(res.Removed, prev)
			}
			continue
		}
		if GroupOutranks(next.Group, prev.Group) {
			upgraded := prev
			upgraded.Group = next.Group
			upgraded.Name = next.Name
			res.Updated = append(res.Updated, upgraded)
			continue
		}
		if !opts.SkipUntouched {
			res.Updated = append(res.Updated, prev)
		}
	}

	for _, sig := range incoming {
		if !oldIDs[sig.EveID] {
			res.Added = append(res.Added, sig)
		}
	}
	return res
}

// Touched counts the updates that actually changed a field against the old
// set, so callers can suppress broadcasts for pure re-asserts.
func Touched(old []models.Signature, res DiffResult) int {
	oldByID := make(map[string]models.Signature, len(old))
	for _, sig := range old {
		oldByID[sig.EveID] = sig
	}
	n := len(res.Added) + len(res.Removed)
	for _, upd := range res.Updated {
		prev, ok := oldByID[upd.EveID]
		if !ok || prev.Group != upd.Group || prev.Name != upd.Name {
			n++
		}
	}
	return n
}
