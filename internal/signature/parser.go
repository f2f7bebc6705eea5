package signature

import (
	"regexp"
	"strings"
	"time"

	"wanderer/internal/models"
)

// LineKind tags every tokenized paste row with the shape it matched, so that
// "silently skipped" is an explicit, test-visible outcome instead of an
// implicit fallthrough.
type LineKind int

const (
	LineUnrecognized LineKind = iota
	LineProbeScanner
	LineBookmarkWormhole
	LineBookmarkSite
)

// ParsedLine is one tokenized row of a paste. Signature is nil exactly when
// Kind is LineUnrecognized.
type ParsedLine struct {
	Kind      LineKind
	Raw       string
	Signature *models.Signature
}

// ParseOptions carries the caller-supplied recognized kind set for the probe
// scanner shape. An empty set means all table kinds are accepted.
type ParseOptions struct {
	RecognizedKinds map[string]bool
}

const (
	probeScannerFields = 6
	bookmarkFields     = 3
)

var (
	// "123-ERU 2 E": bookmark number, 3-letter code, optional destination
	// hint, optional EOL/crit flags.
	wormholeNumberedRe = regexp.MustCompile(`^(\d+)-([A-Za-z]{3})(?:\s+(\d+))?(?:\s*([EeCc]{1,2}))?$`)
	// "K162-ABC NS E": leading name, 3-letter code, security token ("NS",
	// "hs"), flags.
	wormholeNamedRe = regexp.MustCompile(`^([A-Za-z0-9]+)-([A-Za-z]{3})\s+((?:NS)|(?:[A-Za-z]{1,2}))\s*([EeCc]{1,2})?$`)
	// Full legacy "ABC-123 Forgotten Perimeter Gateway" site line.
	legacySiteRe = regexp.MustCompile(`^([A-Za-z]{3}-\d+)\s+(.+)$`)
)

// WormholeLine is the decoded wormhole bookmark syntax.
type WormholeLine struct {
	Signature   string
	Name        string
	Description string
	EOL         bool
	Crit        bool
}

// ParseWormholeLine tries the two wormhole bookmark shapes in order. The
// second return value is false when neither matches; such lines yield no
// signature code and are dropped by the caller.
func ParseWormholeLine(line string) (WormholeLine, bool) {
	line = strings.TrimSpace(line)
	if m := wormholeNumberedRe.FindStringSubmatch(line); m != nil {
		wl := WormholeLine{
			Signature:   strings.ToUpper(m[2]),
			Description: m[3],
		}
		wl.Name = wl.Signature
		wl.EOL, wl.Crit = parseFlags(m[4])
		return wl, true
	}
	if m := wormholeNamedRe.FindStringSubmatch(line); m != nil {
		wl := WormholeLine{
			Name:        m[1],
			Signature:   strings.ToUpper(m[2]),
			Description: m[3],
		}
		wl.EOL, wl.Crit = parseFlags(m[4])
		return wl, true
	}
	return WormholeLine{}, false
}

func parseFlags(flags string) (eol, crit bool) {
	for _, r := range flags {
		switch r {
		case 'E', 'e':
			eol = true
		case 'C', 'c':
			crit = true
		}
	}
	return eol, crit
}

// ParsePaste tokenizes a raw multi-line paste and classifies every row. The
// output preserves paste order, which the merge engine relies on as its
// last-write-wins tie-break.
func ParsePaste(raw string, opts ParseOptions) []ParsedLine {
	lines := SplitLines(raw)
	out := make([]ParsedLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, parseLine(line, opts))
	}
	return out
}

// Signatures filters a parsed paste down to the rows that produced a record.
func Signatures(lines []ParsedLine) []models.Signature {
	out := make([]models.Signature, 0, len(lines))
	for _, pl := range lines {
		if pl.Signature == nil {
			continue
		}
		out = append(out, *pl.Signature)
	}
	return out
}

func parseLine(line string, opts ParseOptions) ParsedLine {
	fields := SplitFields(line)
	switch len(fields) {
	case probeScannerFields:
		return parseProbeScanner(line, fields, opts)
	case bookmarkFields:
		return parseBookmark(line, fields)
	default:
		return ParsedLine{Kind: LineUnrecognized, Raw: line}
	}
}

// parseProbeScanner maps the 6-field scanner shape directly:
// [eve_id, kind, group, name, _, _].
func parseProbeScanner(line string, fields []string, opts ParseOptions) ParsedLine {
	eveID := strings.ToUpper(fields[0])
	sig := &models.Signature{
		EveID: eveID,
		Kind:  translateKind(fields[1], opts.RecognizedKinds),
		Group: translateGroup(fields[2]),
		Name:  fields[3],
		CustomInfo: encodeCustomInfo(map[string]any{
			InfoDest:   eveID,
			InfoFullID: eveID,
		}),
	}
	return ParsedLine{Kind: LineProbeScanner, Raw: line, Signature: sig}
}

// parseBookmark handles the 3-field shape: [raw_value, type, timestamp].
func parseBookmark(line string, fields []string) ParsedLine {
	rawValue := fields[0]
	typeToken := fields[1]
	tsToken := fields[2]

	lower := strings.ToLower(rawValue)
	if strings.HasPrefix(lower, "xx") || strings.HasPrefix(lower, "zz") {
		return ParsedLine{Kind: LineUnrecognized, Raw: line}
	}
	if strings.Contains(strings.ToUpper(typeToken), "LTURN") {
		return ParsedLine{Kind: LineUnrecognized, Raw: line}
	}

	insertedAt := parseLooseTimestamp(tsToken)

	if strings.HasPrefix(lower, "z") {
		return parseSiteBookmark(line, rawValue, insertedAt)
	}

	wl, ok := ParseWormholeLine(rawValue)
	if !ok {
		return ParsedLine{Kind: LineUnrecognized, Raw: line}
	}
	sig := wormholeSignature(wl, GroupWormhole)
	sig.InsertedAt = insertedAt
	return ParsedLine{Kind: LineBookmarkWormhole, Raw: line, Signature: sig}
}

// parseSiteBookmark decodes the "z" prefix: one site-type letter followed by
// either a full legacy site line or wormhole-line syntax.
func parseSiteBookmark(line, rawValue string, insertedAt time.Time) ParsedLine {
	if len(rawValue) < 2 {
		return ParsedLine{Kind: LineUnrecognized, Raw: line}
	}
	group := siteLetterGroup(rawValue[1])
	remainder := strings.TrimSpace(rawValue[2:])

	if m := legacySiteRe.FindStringSubmatch(remainder); m != nil {
		eveID := strings.ToUpper(m[1])
		sig := &models.Signature{
			EveID: eveID,
			Kind:  KindCosmicSignature,
			Group: group,
			Name:  m[2],
			CustomInfo: encodeCustomInfo(map[string]any{
				InfoDest:   eveID,
				InfoFullID: eveID,
			}),
			InsertedAt: insertedAt,
		}
		return ParsedLine{Kind: LineBookmarkSite, Raw: line, Signature: sig}
	}

	wl, ok := ParseWormholeLine(remainder)
	if !ok {
		return ParsedLine{Kind: LineUnrecognized, Raw: line}
	}
	sig := wormholeSignature(wl, group)
	sig.InsertedAt = insertedAt
	return ParsedLine{Kind: LineBookmarkSite, Raw: line, Signature: sig}
}

func siteLetterGroup(letter byte) string {
	switch letter {
	case 'R', 'r':
		return GroupRelicSite
	case 'D', 'd':
		return GroupDataSite
	case 'G', 'g':
		return GroupGasSite
	default:
		return GroupCosmicSignature
	}
}

func wormholeSignature(wl WormholeLine, group string) *models.Signature {
	dest := wl.Description
	if dest == "" {
		dest = wl.Signature
	}
	info := map[string]any{
		InfoDest:   dest,
		InfoFullID: wl.Signature,
	}
	if group == GroupWormhole {
		info[InfoEOL] = wl.EOL
		info[InfoCrit] = wl.Crit
	}
	return &models.Signature{
		EveID:       wl.Signature,
		Kind:        KindCosmicSignature,
		Group:       group,
		Name:        wl.Name,
		Description: wl.Description,
		CustomInfo:  encodeCustomInfo(info),
	}
}

// parseLooseTimestamp accepts the bookmark tool's loosely-formatted date-time
// ("2024.03.01 12:30"): dots become dashes in the date part, the separating
// space becomes T, and seconds are appended. "-", blanks, and anything that
// still fails to parse yield the zero time.
func parseLooseTimestamp(token string) time.Time {
	token = strings.TrimSpace(token)
	if token == "" || token == "-" {
		return time.Time{}
	}
	parts := strings.SplitN(token, " ", 2)
	stamp := strings.ReplaceAll(parts[0], ".", "-")
	if len(parts) == 2 {
		stamp += "T" + strings.TrimSpace(parts[1]) + ":00"
	} else {
		stamp += "T00:00:00"
	}
	t, err := time.Parse("2006-01-02T15:04:05", stamp)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
