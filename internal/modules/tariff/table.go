// README: Versioned tariff table and the floor lookup that picks the entry in force.
package tariff

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Table is the read-only set of regulatory entries, sorted by effective date.
// It is safe for concurrent use once built.
type Table struct {
	entries []Entry
	skipped []string
	version string
}

// NewTable builds a table from raw rows. Rows whose effective date does not
// parse are skipped and reported by Skipped. Duplicate or empty labels and
// negative amounts make the whole table invalid.
func NewTable(rows []Row) (*Table, error) {
	seen := make(map[string]struct{}, len(rows))
	entries := make([]Entry, 0, len(rows))
	var skipped []string

	for _, r := range rows {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			return nil, fmt.Errorf("%w: empty label", ErrMalformedTable)
		}
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrMalformedTable, label)
		}
		seen[label] = struct{}{}

		if r.Coefficient.IsNegative() || r.FixedFee.IsNegative() {
			return nil, fmt.Errorf("%w: negative amount in %q", ErrMalformedTable, label)
		}

		day, err := ParseDate(r.EffectiveDate)
		if err != nil {
			skipped = append(skipped, label)
			continue
		}
		entries = append(entries, Entry{
			Label:         label,
			EffectiveDate: day,
			Coefficient:   r.Coefficient,
			FixedFee:      r.FixedFee,
		})
	}

	// Stable: entries sharing a date keep their source order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].EffectiveDate.Before(entries[j].EffectiveDate)
	})

	return &Table{entries: entries, skipped: skipped, version: versionOf(entries)}, nil
}

// ParseDate parses a day/month/year string into a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(parseLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Resolve returns the entry with the latest effective date on or before date.
// It reports false for an empty table or a date before the first regulation.
// When several entries share the winning date the last one in source order is
// returned; that tie-break is not a product rule, see Collisions.
func (t *Table) Resolve(date time.Time) (Entry, bool) {
	day := truncateDay(date)
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].EffectiveDate.After(day)
	})
	if i == 0 {
		return Entry{}, false
	}
	return t.entries[i-1], true
}

// ResolveDate parses s and resolves it. It returns ErrInvalidDate when s does
// not parse and ErrNoTariffInEffect when no entry governs the date.
func (t *Table) ResolveDate(s string) (Entry, error) {
	day, err := ParseDate(s)
	if err != nil {
		return Entry{}, err
	}
	e, ok := t.Resolve(day)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNoTariffInEffect, day.Format(DateLayout))
	}
	return e, nil
}

// Entries returns a copy of the entries in ascending effective-date order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Table) Len() int { return len(t.entries) }

// Skipped lists labels of rows dropped because their date did not parse.
func (t *Table) Skipped() []string {
	out := make([]string, len(t.skipped))
	copy(out, t.skipped)
	return out
}

// Collisions lists effective dates shared by more than one entry.
func (t *Table) Collisions() []time.Time {
	var out []time.Time
	for i := 1; i < len(t.entries); i++ {
		if !t.entries[i].EffectiveDate.Equal(t.entries[i-1].EffectiveDate) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Equal(t.entries[i].EffectiveDate) {
			continue
		}
		out = append(out, t.entries[i].EffectiveDate)
	}
	return out
}

// Version is a content hash of the table, stable across processes.
func (t *Table) Version() string { return t.version }

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func versionOf(entries []Entry) string {
	h := fnv.New64a()
	for _, e := range entries {
		fmt.Fprintf(h, "%s|%s|%s|%s\n",
			e.Label, e.EffectiveDate.Format(DateLayout), e.Coefficient.String(), e.FixedFee.String())
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
