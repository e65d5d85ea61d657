package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"75", 7500, true},
		{"12.344", 1234, true},
		{"12.345", 1235, true},
		{"12.346", 1235, true},
		{".5", 50, true},
		{"", 0, false},
		{"-3", 0, false},
		{"+3", 0, false},
		{"0", 0, false},
		{"0.00", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		m, err := ParseAmount(tc.in)
		if tc.ok && err != nil {
			t.Errorf("ParseAmount(%q) unexpected error %v", tc.in, err)
			continue
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("ParseAmount(%q) expected error", tc.in)
			}
			continue
		}
		if m.Cents != tc.want {
			t.Errorf("ParseAmount(%q) = %d cents, want %d", tc.in, m.Cents, tc.want)
		}
	}
}

func TestMoneyText(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{7500, "75"},
		{1250, "12.5"},
		{1234, "12.34"},
		{250000, "2500"},
		{5, "0.05"},
		{-1250, "-12.5"},
		{0, "0"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Text(); got != tc.want {
			t.Errorf("Money{%d}.Text() = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestMoneyFloat(t *testing.T) {
	if got := (Money{Cents: 1234}).Float(); got != 12.34 {
		t.Fatalf("Float() = %v, want 12.34", got)
	}
}
