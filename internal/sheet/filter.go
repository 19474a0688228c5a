package sheet

import "strings"

// Filter narrows the sheet down to the accounts a run may touch. It is
// applied once, before the run orchestrator sees the list; the orchestrator
// itself does no further filtering.
type Filter struct {
	// Status must match the record's status exactly.
	Status string
	// Source, when non-empty, must match the record's source tag.
	Source string
	// Max caps how many records survive filtering. Zero means no cap.
	Max int
}

// Apply returns the eligible records in sheet order: exact status match,
// optional source match, deduplicated by username with the first occurrence
// winning, capped at Max.
func (f Filter) Apply(records []AccountRecord) []AccountRecord {
	seen := make(map[string]struct{}, len(records))
	var out []AccountRecord
	for _, rec := range records {
		if rec.Username == "" {
			continue
		}
		if rec.Status != f.Status {
			continue
		}
		if f.Source != "" && !strings.EqualFold(rec.Source, f.Source) {
			continue
		}
		if _, dup := seen[rec.Username]; dup {
			continue
		}
		seen[rec.Username] = struct{}{}
		out = append(out, rec)
		if f.Max > 0 && len(out) >= f.Max {
			break
		}
	}
	return out
}
