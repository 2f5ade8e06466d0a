package analytics

import (
	"sort"
	"strconv"
)

// groupBy folds transactions into buckets keyed by keyFn, preserving
// first-seen order. Transactions whose key resolves to the empty string are
// excluded rather than failed on. Missing quantities count as zero.
func groupBy(txs []Transaction, keyFn func(Transaction) string) []Bucket {
	index := make(map[string]int, len(txs))
	buckets := make([]Bucket, 0, len(txs))
	for _, tx := range txs {
		key := keyFn(tx)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].TotalQuantity += tx.quantityOrZero()
		buckets[i].TotalAmount += tx.Amount
	}
	return buckets
}

// GroupByArticle groups by resolved article name. Transactions without a
// resolvable name are excluded from the result.
func GroupByArticle(txs []Transaction) []Bucket {
	return groupBy(txs, func(tx Transaction) string { return tx.ArticleName })
}

// GroupByDay groups by the UTC calendar day of created_at.
func GroupByDay(txs []Transaction) []Bucket {
	return groupBy(txs, func(tx Transaction) string {
		return dayOf(tx.CreatedAt).Format("2006-01-02")
	})
}

// GroupByCollaborator groups by collaborator, preferring the resolved name
// and falling back to the numeric ID. Transactions without a collaborator
// are excluded.
func GroupByCollaborator(txs []Transaction) []Bucket {
	return groupBy(txs, func(tx Transaction) string {
		if tx.CollaboratorName != "" {
			return tx.CollaboratorName
		}
		if tx.CollaboratorID != nil {
			return strconv.FormatInt(*tx.CollaboratorID, 10)
		}
		return ""
	})
}

// ByAmountDesc returns a copy ordered by descending total amount, ties kept
// in first-seen order.
func ByAmountDesc(buckets []Bucket) []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalAmount > out[j].TotalAmount
	})
	return out
}

// ByQuantityDesc returns a copy ordered by descending total quantity, ties
// kept in first-seen order.
func ByQuantityDesc(buckets []Bucket) []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalQuantity > out[j].TotalQuantity
	})
	return out
}

// TopN returns the first n buckets of an already-ordered slice, truncating
// silently when fewer exist.
func TopN(buckets []Bucket, n int) []Bucket {
	if n < 0 {
		n = 0
	}
	if n > len(buckets) {
		n = len(buckets)
	}
	out := make([]Bucket, n)
	copy(out, buckets[:n])
	return out
}
