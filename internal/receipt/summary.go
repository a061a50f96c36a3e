package receipt

import (
	"slices"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the amount spent in one category
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// Summary holds every aggregate shown on the dashboard
type Summary struct {
	TotalSpending     decimal.Decimal
	TotalTax          decimal.Decimal
	ReceiptCount      int
	AveragePerReceipt decimal.Decimal
	ByCategory        []CategoryTotal
}

// TotalSpending sums the amount of every receipt. Amounts in different
// currencies are added as-is; nothing is converted.
func TotalSpending(receipts []Receipt) decimal.Decimal {
	total := decimal.Zero
	for _, r := range receipts {
		total = total.Add(decimal.NewFromFloat(r.Amount))
	}
	return total
}

// TotalTax sums the tax of every receipt
func TotalTax(receipts []Receipt) decimal.Decimal {
	total := decimal.Zero
	for _, r := range receipts {
		total = total.Add(decimal.NewFromFloat(r.Tax))
	}
	return total
}

// ReceiptCount returns the number of receipts
func ReceiptCount(receipts []Receipt) int {
	return len(receipts)
}

// AveragePerReceipt is TotalSpending / ReceiptCount, or zero for no receipts
func AveragePerReceipt(receipts []Receipt) decimal.Decimal {
	if len(receipts) == 0 {
		return decimal.Zero
	}
	return TotalSpending(receipts).Div(decimal.NewFromInt(int64(len(receipts))))
}

// ByCategory groups receipts by exact category string. Buckets are ordered by
// descending total; equal totals keep the order in which the category first
// appears in receipts. Bucket totals sum exactly to TotalSpending.
func ByCategory(receipts []Receipt) []CategoryTotal {
	totals := make([]CategoryTotal, 0)
	index := make(map[string]int)
	for _, r := range receipts {
		i, seen := index[r.Category]
		if !seen {
			i = len(totals)
			index[r.Category] = i
			totals = append(totals, CategoryTotal{Category: r.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(decimal.NewFromFloat(r.Amount))
	}

	slices.SortStableFunc(totals, func(a, b CategoryTotal) int {
		return b.Total.Cmp(a.Total)
	})
	return totals
}

// Summarize computes the full dashboard summary
func Summarize(receipts []Receipt) Summary {
	return Summary{
		TotalSpending:     TotalSpending(receipts),
		TotalTax:          TotalTax(receipts),
		ReceiptCount:      ReceiptCount(receipts),
		AveragePerReceipt: AveragePerReceipt(receipts),
		ByCategory:        ByCategory(receipts),
	}
}
