package core

// MonthLabels are the chart axis labels matching the bucket order.
var MonthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// MonthlyTotals folds the full record set into twelve calendar-month
// buckets, index 0 = January. Bucketing uses the month of year only, so
// the same month across different years sums into one bucket. Records
// without a usable date are skipped; the aggregation never fails.
func MonthlyTotals(records []Record) [12]Money {
	var buckets [12]Money
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		buckets[r.Date.MonthIndex()].Cents += r.Amount.Cents
	}
	return buckets
}
