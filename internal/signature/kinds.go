package signature

import "strings"

// Recognized signature kinds (the scanner's classification column).
const (
	KindCosmicSignature = "cosmic_signature"
	KindCosmicAnomaly   = "cosmic_anomaly"
	KindStructure       = "structure"
	KindStarbase        = "starbase"
	KindShip            = "ship"
	KindDrone           = "drone"
	KindDeployable      = "deployable"
)

// Recognized signature groups (site types). Groups form a strict rank order;
// the diff engine only ever moves a signature's group upward in it.
const (
	GroupCosmicSignature = "cosmic_signature"
	GroupCombatSite      = "combat_site"
	GroupGasSite         = "gas_site"
	GroupOreSite         = "ore_site"
	GroupDataSite        = "data_site"
	GroupRelicSite       = "relic_site"
	GroupWormhole        = "wormhole"
)

// groupRank orders groups from least to most specific identification. A
// bare cosmic signature is the weakest claim; a confirmed wormhole the
// strongest.
var groupRank = map[string]int{
	GroupCosmicSignature: 0,
	GroupCombatSite:      1,
	GroupGasSite:         2,
	GroupOreSite:         3,
	GroupDataSite:        4,
	GroupRelicSite:       5,
	GroupWormhole:        6,
}

// GroupOutranks reports whether group a ranks strictly higher than group b.
// Unknown groups rank lowest.
func GroupOutranks(a, b string) bool {
	return groupRank[a] > groupRank[b]
}

// kindNames translates the probe-scanner kind column to a recognized kind.
var kindNames = map[string]string{
	"cosmic signature": KindCosmicSignature,
	"cosmic anomaly":   KindCosmicAnomaly,
	"structure":        KindStructure,
	"starbase":         KindStarbase,
	"ship":             KindShip,
	"drone":            KindDrone,
	"deployable":       KindDeployable,
}

// groupNames translates the probe-scanner group column to a recognized group.
var groupNames = map[string]string{
	"wormhole":         GroupWormhole,
	"relic site":       GroupRelicSite,
	"data site":        GroupDataSite,
	"ore site":         GroupOreSite,
	"gas site":         GroupGasSite,
	"combat site":      GroupCombatSite,
	"cosmic signature": GroupCosmicSignature,
}

// RecognizedKinds is the default caller-supplied kind set for ParsePaste.
func RecognizedKinds() map[string]bool {
	return map[string]bool{
		KindCosmicSignature: true,
		KindCosmicAnomaly:   true,
		KindStructure:       true,
		KindStarbase:        true,
		KindShip:            true,
		KindDrone:           true,
		KindDeployable:      true,
	}
}

// translateKind maps a scanner kind token through the kind-name table. Tokens
// that translate to a kind outside the recognized set, and tokens the table
// does not know, both fall back to the generic cosmic signature kind.
func translateKind(token string, recognized map[string]bool) string {
	kind, ok := kindNames[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return KindCosmicSignature
	}
	if len(recognized) > 0 && !recognized[kind] {
		return KindCosmicSignature
	}
	return kind
}

func translateGroup(token string) string {
	group, ok := groupNames[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return GroupCosmicSignature
	}
	return group
}
