package analytics

import (
	"math"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func qty(v float64) *float64 { return &v }

func sampleTransactions() []Transaction {
	return []Transaction{
		{ID: 1, Type: TypeSale, Amount: 100, Quantity: qty(2), CreatedAt: day(2026, 3, 1), ArticleName: "A"},
		{ID: 2, Type: TypeSale, Amount: 50, Quantity: qty(1), CreatedAt: day(2026, 3, 2), ArticleName: "A"},
		{ID: 3, Type: TypeExpense, Amount: 30, CreatedAt: day(2026, 3, 2), ArticleName: "Rent"},
	}
}

func TestFilterInclusiveDayBounds(t *testing.T) {
	txs := []Transaction{
		{ID: 1, Type: TypeSale, Amount: 10, CreatedAt: time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC), ArticleName: "A"},
		{ID: 2, Type: TypeSale, Amount: 20, CreatedAt: time.Date(2026, 3, 5, 0, 0, 1, 0, time.UTC), ArticleName: "B"},
		{ID: 3, Type: TypeSale, Amount: 30, CreatedAt: day(2026, 3, 6), ArticleName: "C"},
	}
	got := FilterTransactions(txs, DayRange{Start: day(2026, 3, 1), End: day(2026, 3, 5)}, "")
	if len(got) != 2 {
		t.Fatalf("expected both boundary days kept, got %d rows", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected rows: %+v", got)
	}
}

func TestFilterStartAfterEndYieldsEmpty(t *testing.T) {
	got := FilterTransactions(sampleTransactions(), DayRange{Start: day(2026, 3, 10), End: day(2026, 3, 1)}, "")
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(got))
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	r := DayRange{Start: day(2026, 3, 1), End: day(2026, 3, 2)}
	once := FilterTransactions(sampleTransactions(), r, TypeSale)
	twice := FilterTransactions(once, r, TypeSale)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed the result: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("row %d differs after second pass", i)
		}
	}
}

func TestFilterTypeSelector(t *testing.T) {
	got := FilterTransactions(sampleTransactions(), DayRange{}, TypeExpense)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected only the expense row, got %+v", got)
	}
}

func TestGroupByArticlePreservesSumsAndOrder(t *testing.T) {
	txs := sampleTransactions()
	buckets := GroupByArticle(txs)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Key != "A" || buckets[1].Key != "Rent" {
		t.Fatalf("first-seen order violated: %+v", buckets)
	}
	if buckets[0].TotalAmount != 150 || buckets[0].TotalQuantity != 3 {
		t.Fatalf("bucket A totals wrong: %+v", buckets[0])
	}

	var inputTotal, bucketTotal float64
	for _, tx := range txs {
		inputTotal += tx.Amount
	}
	for _, b := range buckets {
		bucketTotal += b.TotalAmount
	}
	if inputTotal != bucketTotal {
		t.Fatalf("grouping lost amount: in %.2f out %.2f", inputTotal, bucketTotal)
	}
}

func TestGroupByArticleSkipsUnresolvedNames(t *testing.T) {
	txs := append(sampleTransactions(), Transaction{ID: 9, Type: TypeSale, Amount: 999, CreatedAt: day(2026, 3, 3)})
	buckets := GroupByArticle(txs)
	for _, b := range buckets {
		if b.Key == "" {
			t.Fatal("unresolved article leaked into buckets")
		}
	}
	if len(buckets) != 2 {
		t.Fatalf("expected unresolved row excluded, got %d buckets", len(buckets))
	}
}

func TestGroupByMissingQuantityCountsZero(t *testing.T) {
	buckets := GroupByArticle([]Transaction{
		{ID: 1, Type: TypeSale, Amount: 10, CreatedAt: day(2026, 3, 1), ArticleName: "A"},
		{ID: 2, Type: TypeSale, Amount: 10, Quantity: qty(4), CreatedAt: day(2026, 3, 1), ArticleName: "A"},
	})
	if buckets[0].TotalQuantity != 4 {
		t.Fatalf("missing quantity should count as zero, got %.2f", buckets[0].TotalQuantity)
	}
}

func TestTopNTruncatesAndKeepsTieOrder(t *testing.T) {
	buckets := []Bucket{
		{Key: "a", TotalAmount: 5},
		{Key: "b", TotalAmount: 3},
		{Key: "c", TotalAmount: 9},
		{Key: "d", TotalAmount: 1},
	}
	top := TopN(ByAmountDesc(buckets), 2)
	if len(top) != 2 || top[0].TotalAmount != 9 || top[1].TotalAmount != 5 {
		t.Fatalf("expected [9 5], got %+v", top)
	}

	ties := []Bucket{{Key: "x", TotalAmount: 7}, {Key: "y", TotalAmount: 7}}
	ordered := ByAmountDesc(ties)
	if ordered[0].Key != "x" || ordered[1].Key != "y" {
		t.Fatalf("tie order not preserved: %+v", ordered)
	}

	if got := TopN(buckets, 10); len(got) != 4 {
		t.Fatalf("overshoot should truncate silently, got %d", len(got))
	}
}

func TestPieSplitsSalesAndExpenses(t *testing.T) {
	pie := Pie(sampleTransactions())
	if pie.SalesTotal != 150 || pie.ExpensesTotal != 30 {
		t.Fatalf("expected 150/30, got %+v", pie)
	}
}

func TestSharesByTypeEmptyInput(t *testing.T) {
	shares := SharesByType(nil)
	if shares == nil || len(shares) != 0 {
		t.Fatalf("expected empty slice for empty input, got %+v", shares)
	}
}

func TestDailySeriesSortedAscending(t *testing.T) {
	series := DailySeries(sampleTransactions())
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if series[0].Date != "2026-03-01" || series[1].Date != "2026-03-02" {
		t.Fatalf("series out of order: %+v", series)
	}
	if series[1].Sales != 50 || series[1].Expenses != 30 {
		t.Fatalf("day totals wrong: %+v", series[1])
	}
}

func TestClassifyChangeVectors(t *testing.T) {
	inf := math.Inf(1)
	nan := math.NaN()
	v25 := 25.0
	vNeg25 := -25.0
	huge := 250000.0

	cases := []struct {
		name      string
		change    *float64
		previous  float64
		current   float64
		direction ChangeType
		wantText  string
		wantNew   bool
		wantDir   ChangeType
	}{
		{"nil change", nil, 10, 20, ChangeIncrease, "0.00", false, ChangeIncrease},
		{"nan change", &nan, 10, 20, ChangeIncrease, "0.00", false, ChangeIncrease},
		{"new via infinity", &inf, 0, 100, ChangeIncrease, "NEW", true, ChangeIncrease},
		{"new via magnitude", &huge, 0, 100, ChangeIncrease, "NEW", true, ChangeIncrease},
		{"zero previous with finite change", &v25, 0, 100, ChangeIncrease, "25.00", false, ChangeIncrease},
		{"decrease keeps absolute value", &vNeg25, 200, 150, ChangeDecrease, "25.00", false, ChangeDecrease},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			badge := ClassifyChange(tc.change, tc.previous, tc.current, tc.direction)
			if badge.Text != tc.wantText {
				t.Fatalf("text: want %q got %q", tc.wantText, badge.Text)
			}
			if badge.IsNew != tc.wantNew {
				t.Fatalf("is_new: want %v got %v", tc.wantNew, badge.IsNew)
			}
			if badge.Direction != tc.wantDir {
				t.Fatalf("direction: want %s got %s", tc.wantDir, badge.Direction)
			}
		})
	}
}

func TestCompareZeroPreviousEmitsNewSentinel(t *testing.T) {
	c := Compare(100, 0)
	if c.ChangeType != ChangeIncrease {
		t.Fatalf("expected increase, got %s", c.ChangeType)
	}
	badge := c.Classify()
	if !badge.IsNew || badge.Text != "NEW" {
		t.Fatalf("sentinel did not classify as NEW: %+v", badge)
	}
}

func TestCompareRegularPercent(t *testing.T) {
	c := Compare(150, 200)
	if c.Change != -25 || c.ChangeType != ChangeDecrease {
		t.Fatalf("expected -25%% decrease, got %+v", c)
	}
	badge := c.Classify()
	if badge.Text != "25.00" || badge.IsNew {
		t.Fatalf("unexpected badge: %+v", badge)
	}
}

func TestCompareBothZeroIsNeutral(t *testing.T) {
	c := Compare(0, 0)
	if c.Change != 0 || c.ChangeType != ChangeNeutral {
		t.Fatalf("expected neutral zero, got %+v", c)
	}
}

func TestPipelineScenario(t *testing.T) {
	txs := sampleTransactions()
	r := DayRange{Start: day(2026, 3, 1), End: day(2026, 3, 31)}

	sales := FilterTransactions(txs, r, TypeSale)
	buckets := GroupByArticle(sales)
	if len(buckets) != 1 || buckets[0].Key != "A" || buckets[0].TotalAmount != 150 {
		t.Fatalf("expected {A:150}, got %+v", buckets)
	}

	pie := Pie(FilterTransactions(txs, r, ""))
	if pie.SalesTotal != 150 || pie.ExpensesTotal != 30 {
		t.Fatalf("expected pie 150/30, got %+v", pie)
	}
}

func TestPipelineIsDeterministic(t *testing.T) {
	txs := sampleTransactions()
	r := DayRange{Start: day(2026, 3, 1), End: day(2026, 3, 31)}
	first := GroupByArticle(FilterTransactions(txs, r, ""))
	second := GroupByArticle(FilterTransactions(txs, r, ""))
	if len(first) != len(second) {
		t.Fatalf("runs disagree: %d vs %d buckets", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("bucket %d differs between runs", i)
		}
	}
}
