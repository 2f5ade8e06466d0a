package analytics

import "sort"

// PieSummary is the sale/expense split behind the dashboard pie chart.
type PieSummary struct {
	SalesTotal    float64 `json:"sales_total"`
	ExpensesTotal float64 `json:"expenses_total"`
}

// Pie sums sale and expense amounts over the snapshot.
func Pie(txs []Transaction) PieSummary {
	var p PieSummary
	for _, tx := range txs {
		switch tx.Type {
		case TypeSale:
			p.SalesTotal += tx.Amount
		case TypeExpense:
			p.ExpensesTotal += tx.Amount
		}
	}
	return p
}

// SeriesPoint is one chart-ready day of sales and expenses.
type SeriesPoint struct {
	Date     string  `json:"date"`
	Sales    float64 `json:"sales"`
	Expenses float64 `json:"expenses"`
}

// DailySeries maps transactions onto a date-ascending series with one point
// per day that saw activity.
func DailySeries(txs []Transaction) []SeriesPoint {
	byDay := make(map[string]*SeriesPoint)
	for _, tx := range txs {
		key := dayOf(tx.CreatedAt).Format("2006-01-02")
		point, ok := byDay[key]
		if !ok {
			point = &SeriesPoint{Date: key}
			byDay[key] = point
		}
		switch tx.Type {
		case TypeSale:
			point.Sales += tx.Amount
		case TypeExpense:
			point.Expenses += tx.Amount
		}
	}
	series := make([]SeriesPoint, 0, len(byDay))
	for _, point := range byDay {
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// TypeShare is one row of the sales-by-type breakdown.
type TypeShare struct {
	Type       TransactionType `json:"type"`
	Total      float64         `json:"total"`
	Percentage float64         `json:"percentage"`
}

// SharesByType computes the sale/expense totals and their share of the
// overall volume. An empty snapshot yields an empty slice.
func SharesByType(txs []Transaction) []TypeShare {
	if len(txs) == 0 {
		return []TypeShare{}
	}
	pie := Pie(txs)
	total := pie.SalesTotal + pie.ExpensesTotal
	return []TypeShare{
		{Type: TypeSale, Total: pie.SalesTotal, Percentage: safePercent(pie.SalesTotal, total)},
		{Type: TypeExpense, Total: pie.ExpensesTotal, Percentage: safePercent(pie.ExpensesTotal, total)},
	}
}

// TopProduct is one chart-ready top-products row.
type TopProduct struct {
	Name          string  `json:"name"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalAmount   float64 `json:"total_amount"`
}

// TopProductsByQuantity ranks article buckets by units sold.
func TopProductsByQuantity(txs []Transaction, n int) []TopProduct {
	return toProducts(TopN(ByQuantityDesc(GroupByArticle(txs)), n))
}

// TopProductsByAmount ranks article buckets by revenue.
func TopProductsByAmount(txs []Transaction, n int) []TopProduct {
	return toProducts(TopN(ByAmountDesc(GroupByArticle(txs)), n))
}

func toProducts(buckets []Bucket) []TopProduct {
	out := make([]TopProduct, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, TopProduct{Name: b.Key, TotalQuantity: b.TotalQuantity, TotalAmount: b.TotalAmount})
	}
	return out
}

func safePercent(value, total float64) float64 {
	if almostZero(total) {
		return 0
	}
	return value / total * 100
}

func almostZero(v float64) bool {
	return v > -0.0001 && v < 0.0001
}
