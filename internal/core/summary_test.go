package core

import "testing"

func TestMonthlyTotalsOnePerMonth(t *testing.T) {
	// Twelve records, one per month, 100 each: every bucket reads 100.
	var records []Record
	for m := 1; m <= 12; m++ {
		records = append(records, Record{
			Date:     NewDate(2025, m, 15),
			Amount:   Money{Cents: 10000},
			Category: CategoryExpense,
		})
	}
	totals := MonthlyTotals(records)
	for i, b := range totals {
		if b.Cents != 10000 {
			t.Fatalf("bucket %d = %d cents, want 10000", i, b.Cents)
		}
	}
}

func TestMonthlyTotalsConservation(t *testing.T) {
	records := []Record{
		{Date: NewDate(2024, 3, 1), Amount: Money{Cents: 1000}},
		{Date: NewDate(2025, 3, 20), Amount: Money{Cents: 2500}},
		{Date: NewDate(2025, 7, 4), Amount: Money{Cents: 99}},
		{Amount: Money{Cents: 77777}}, // zero date, skipped
	}
	totals := MonthlyTotals(records)

	var sum int64
	for _, b := range totals {
		sum += b.Cents
	}
	if sum != 1000+2500+99 {
		t.Fatalf("bucket sum = %d, want %d", sum, 1000+2500+99)
	}

	// Years collapse: March 2024 and March 2025 share bucket 2.
	if totals[2].Cents != 3500 {
		t.Fatalf("March bucket = %d, want 3500", totals[2].Cents)
	}
}

func TestMonthlyTotalsEmpty(t *testing.T) {
	totals := MonthlyTotals(nil)
	if len(totals) != 12 {
		t.Fatalf("expected 12 buckets, got %d", len(totals))
	}
	for i, b := range totals {
		if b.Cents != 0 {
			t.Fatalf("bucket %d = %d, want 0", i, b.Cents)
		}
	}
}
