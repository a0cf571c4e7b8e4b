package tariff

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDefaultTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(DefaultRows())
	require.NoError(t, err)
	return tbl
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDefaultRows_AllParse(t *testing.T) {
	tbl := mustDefaultTable(t)
	assert.Equal(t, 23, tbl.Len())
	assert.Empty(t, tbl.Skipped())
	assert.Empty(t, tbl.Collisions())

	entries := tbl.Entries()
	assert.Equal(t, "RESOLUÇÃO Nº 5.890, DE 26 DE MAIO DE 2020", entries[0].Label)
	assert.Equal(t, "PORTARIA Nº 3, DE 7 DE fevereiro DE 2025", entries[len(entries)-1].Label)
	for i := 1; i < len(entries); i++ {
		assert.False(t, entries[i].EffectiveDate.Before(entries[i-1].EffectiveDate), "entries out of order at %d", i)
	}
}

func TestResolveDate_LatestBeforeRequest(t *testing.T) {
	tbl := mustDefaultTable(t)

	e, err := tbl.ResolveDate("01/09/2024")
	require.NoError(t, err)
	assert.Equal(t, "RESOLUÇÃO Nº 6.046, DE 11 DE JULHO DE 2024", e.Label)
	assert.True(t, e.Coefficient.Equal(decimal.RequireFromString("7.486")))
	assert.True(t, e.FixedFee.Equal(decimal.RequireFromString("675.050")))
	assert.Equal(t, day(2024, time.July, 11), e.EffectiveDate)
}

func TestResolveDate_BeforeFirstRegulation(t *testing.T) {
	tbl := mustDefaultTable(t)

	_, err := tbl.ResolveDate("01/01/2019")
	assert.ErrorIs(t, err, ErrNoTariffInEffect)
	assert.False(t, errors.Is(err, ErrInvalidDate))
}

func TestResolveDate_InvalidDate(t *testing.T) {
	tbl := mustDefaultTable(t)

	for _, in := range []string{"", "2024-09-01", "31/02/2024", "abc", "01/13/2024"} {
		_, err := tbl.ResolveDate(in)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %q", in)
		assert.False(t, errors.Is(err, ErrNoTariffInEffect), "input %q", in)
	}
}

func TestResolve_Boundaries(t *testing.T) {
	tbl := mustDefaultTable(t)

	tests := []struct {
		name      string
		date      time.Time
		wantLabel string
		wantOK    bool
	}{
		{"day before first", day(2020, time.May, 25), "", false},
		{"first effective day", day(2020, time.May, 26), "RESOLUÇÃO Nº 5.890, DE 26 DE MAIO DE 2020", true},
		{"day before a change", day(2024, time.July, 10), "RESOLUÇÃO Nº 6.034, DE 18 DE JANEIRO DE 2024", true},
		{"change day", day(2024, time.July, 11), "RESOLUÇÃO Nº 6.046, DE 11 DE JULHO DE 2024", true},
		{"far future", day(2030, time.January, 1), "PORTARIA Nº 3, DE 7 DE fevereiro DE 2025", true},
		{"time of day ignored", time.Date(2024, time.July, 11, 23, 59, 0, 0, time.UTC), "RESOLUÇÃO Nº 6.046, DE 11 DE JULHO DE 2024", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := tbl.Resolve(tt.date)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLabel, e.Label)
		})
	}
}

func TestResolve_EmptyTable(t *testing.T) {
	tbl, err := NewTable(nil)
	require.NoError(t, err)

	_, ok := tbl.Resolve(day(2024, time.January, 1))
	assert.False(t, ok)

	_, err = tbl.ResolveDate("01/01/2024")
	assert.ErrorIs(t, err, ErrNoTariffInEffect)

	_, err = tbl.ResolveDate("not a date")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestResolve_Monotonic(t *testing.T) {
	tbl := mustDefaultTable(t)

	var prev *Entry
	for d := day(2020, time.January, 1); d.Before(day(2026, time.January, 1)); d = d.AddDate(0, 0, 3) {
		e, ok := tbl.Resolve(d)
		if !ok {
			require.Nil(t, prev, "lost a tariff at %s after having one", d)
			continue
		}
		if prev != nil {
			assert.False(t, e.EffectiveDate.Before(prev.EffectiveDate), "non-monotonic at %s", d)
		}
		assert.False(t, e.EffectiveDate.After(d))
		cur := e
		prev = &cur
	}
}

func TestResolve_Idempotent(t *testing.T) {
	tbl := mustDefaultTable(t)

	a, errA := tbl.ResolveDate("15/03/2023")
	b, errB := tbl.ResolveDate("15/03/2023")
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestNewTable_SkipsMalformedDates(t *testing.T) {
	rows := []Row{
		row("A", "1.000", "10", "01/01/2021"),
		row("broken", "2.000", "20", "2021-06-01"),
		row("B", "3.000", "30", "01/01/2022"),
	}
	tbl, err := NewTable(rows)
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"broken"}, tbl.Skipped())

	e, err := tbl.ResolveDate("01/07/2021")
	require.NoError(t, err)
	assert.Equal(t, "A", e.Label)
}

func TestNewTable_RejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
	}{
		{"duplicate label", []Row{row("A", "1", "1", "01/01/2021"), row("A", "2", "2", "01/01/2022")}},
		{"empty label", []Row{row("  ", "1", "1", "01/01/2021")}},
		{"negative coefficient", []Row{row("A", "-1", "1", "01/01/2021")}},
		{"negative fee", []Row{row("A", "1", "-0.01", "01/01/2021")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.rows)
			assert.ErrorIs(t, err, ErrMalformedTable)
		})
	}
}

func TestResolve_SharedDateKeepsSourceOrder(t *testing.T) {
	rows := []Row{
		row("first", "1", "1", "01/01/2021"),
		row("second", "2", "2", "01/01/2021"),
	}
	tbl, err := NewTable(rows)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(2021, time.January, 1)}, tbl.Collisions())

	e1, _ := tbl.Resolve(day(2021, time.February, 1))
	e2, _ := tbl.Resolve(day(2021, time.February, 1))
	assert.Equal(t, e1, e2)
	assert.Equal(t, "second", e1.Label)
}

func TestParseDate_AcceptsUnpaddedDayMonth(t *testing.T) {
	d, err := ParseDate("1/9/2024")
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.September, 1), d)

	d, err = ParseDate(" 01/09/2024 ")
	require.NoError(t, err)
	assert.Equal(t, day(2024, time.September, 1), d)
}

func TestVersion_ChangesWithContent(t *testing.T) {
	a := mustDefaultTable(t)
	b := mustDefaultTable(t)
	assert.Equal(t, a.Version(), b.Version())

	rows := DefaultRows()
	rows[0].Coefficient = decimal.RequireFromString("7.640")
	c, err := NewTable(rows)
	require.NoError(t, err)
	assert.NotEqual(t, a.Version(), c.Version())
}
