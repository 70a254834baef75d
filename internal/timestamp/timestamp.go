// Package timestamp extracts clock-like values from assistant text, merges
// them with the backend's structured timestamp strings, and turns them into
// seekable navigation targets.
package timestamp

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
)

// Origin records which extraction path produced a timestamp.
type Origin string

const (
	// OriginText means the value was parsed out of free message text.
	OriginText Origin = "text"
	// OriginStructured means the value came from the backend's timestamps field.
	OriginStructured Origin = "structured"
)

// Timestamp is one navigation target. SourceText is the substring it was
// parsed from, brackets included when present.
type Timestamp struct {
	SourceText   string
	TotalSeconds int
	Origin       Origin
}

// Matches [MM:SS], (MM:SS), MM:SS and the HH:MM:SS variants of each.
var clockPattern = regexp.MustCompile(`[\[(]?(?:(\d{1,2}):)?(\d{1,2}):(\d{2})[\])]?`)

const (
	maxSeconds = 86400 // 24 hours

	// Two timestamps closer than this are the same navigation target. The
	// free-text and structured extraction paths routinely disagree by a few
	// seconds about the same moment, so dedup is by distance, not equality.
	mergeTolerance = 5
)

// Parse scans text for clock-like substrings and returns them in order of
// appearance. Values outside [0, 24h] are dropped. No deduplication happens
// here; Merge owns that.
func Parse(text string) []Timestamp {
	if text == "" {
		return nil
	}

	var out []Timestamp
	for _, m := range clockPattern.FindAllStringSubmatch(text, -1) {
		hours := 0
		if m[1] != "" {
			hours, _ = strconv.Atoi(m[1])
		}
		minutes, _ := strconv.Atoi(m[2])
		seconds, _ := strconv.Atoi(m[3])

		total := hours*3600 + minutes*60 + seconds
		if total < 0 || total > maxSeconds {
			continue
		}
		out = append(out, Timestamp{
			SourceText:   m[0],
			TotalSeconds: total,
			Origin:       OriginText,
		})
	}
	return out
}

// Merge combines timestamps parsed from message text with the backend's
// structured strings (each of which may itself contain several clock values),
// sorts ascending, and collapses near-duplicates: after sorting, an entry is
// dropped when it lands within the tolerance of the previously kept one.
func Merge(text []Timestamp, structured []string) []Timestamp {
	merged := make([]Timestamp, 0, len(text))
	merged = append(merged, text...)

	for _, s := range structured {
		for _, ts := range Parse(s) {
			ts.Origin = OriginStructured
			merged = append(merged, ts)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].TotalSeconds < merged[j].TotalSeconds
	})

	var out []Timestamp
	for _, ts := range merged {
		if len(out) > 0 && ts.TotalSeconds-out[len(out)-1].TotalSeconds < mergeTolerance {
			continue
		}
		out = append(out, ts)
	}
	return out
}

// Format renders seconds as M:SS with unbounded minutes. Negative or
// non-numeric input renders as "0:00" rather than failing.
func Format(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
