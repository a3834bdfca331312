package report

import (
	"errors"
	"testing"

	"contas/internal/core"
)

func TestParseYearMonth(t *testing.T) {
	cases := []struct {
		in   string
		want YearMonth
		ok   bool
	}{
		{"2024-06", YearMonth{2024, 6}, true},
		{"2024-01", YearMonth{2024, 1}, true},
		{" 2024-12 ", YearMonth{2024, 12}, true},
		{"2024-13", YearMonth{}, false},
		{"2024-00", YearMonth{}, false},
		{"2024", YearMonth{}, false},
		{"2024-06-01", YearMonth{}, false},
		{"abcd-06", YearMonth{}, false},
	}
	for _, tc := range cases {
		got, err := ParseYearMonth(tc.in)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q: expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
		} else if !errors.Is(err, core.ErrInvalidDateFormat) {
			t.Fatalf("%q: expected ErrInvalidDateFormat, got %v", tc.in, err)
		}
	}
}

func TestYearMonthAddMonths(t *testing.T) {
	cases := []struct {
		start YearMonth
		n     int
		want  YearMonth
	}{
		{YearMonth{2024, 1}, 0, YearMonth{2024, 1}},
		{YearMonth{2024, 1}, 11, YearMonth{2024, 12}},
		{YearMonth{2024, 1}, 12, YearMonth{2025, 1}},
		{YearMonth{2024, 11}, 3, YearMonth{2025, 2}},
		{YearMonth{2024, 11}, 26, YearMonth{2027, 1}},
		{YearMonth{2024, 3}, -3, YearMonth{2023, 12}},
		{YearMonth{2024, 1}, -13, YearMonth{2022, 12}},
	}
	for i, tc := range cases {
		if got := tc.start.AddMonths(tc.n); got != tc.want {
			t.Fatalf("case %d: %v.AddMonths(%d) = %v, want %v", i, tc.start, tc.n, got, tc.want)
		}
	}
}

func TestYearMonthOrdering(t *testing.T) {
	a := YearMonth{2023, 12}
	b := YearMonth{2024, 1}
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected %v < %v", a, b)
	}
	if !b.After(a) {
		t.Fatalf("expected %v > %v", b, a)
	}
	if a.Compare(a) != 0 {
		t.Fatalf("expected %v == %v", a, a)
	}
	if got := b.MonthsSince(a); got != 1 {
		t.Fatalf("MonthsSince = %d, want 1", got)
	}
	if got := (YearMonth{2024, 6}).MonthsSince(YearMonth{2024, 1}); got != 5 {
		t.Fatalf("MonthsSince = %d, want 5", got)
	}
}

func TestYearMonthLabelAndString(t *testing.T) {
	if got := (YearMonth{2024, 2}).Label(); got != "fev" {
		t.Fatalf("Label = %q, want fev", got)
	}
	if got := (YearMonth{2024, 6}).String(); got != "2024-06" {
		t.Fatalf("String = %q, want 2024-06", got)
	}
}
