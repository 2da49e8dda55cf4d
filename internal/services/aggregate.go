package services

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"supermarket-dashboard/internal/models"
)

type GroupKey string

const (
	ByProductLine  GroupKey = "product_line"
	ByCustomerType GroupKey = "customer_type"
	ByPayment      GroupKey = "payment"
	ByGender       GroupKey = "gender"
	ByMonth        GroupKey = "month"
)

type ValueKey string

const (
	SumTotal       ValueKey = "total"
	SumGrossIncome ValueKey = "gross_income"
	SumQuantity    ValueKey = "quantity"
)

var thousand = decimal.NewFromInt(1000)

func groupValue(tx models.Transaction, key GroupKey) string {
	switch key {
	case ByProductLine:
		return tx.ProductLine
	case ByCustomerType:
		return tx.CustomerType
	case ByPayment:
		return tx.Payment
	case ByGender:
		return tx.Gender
	case ByMonth:
		return string(tx.Month)
	default:
		return ""
	}
}

// measure reports false for a missing value.
func measure(tx models.Transaction, key ValueKey) (decimal.Decimal, bool) {
	switch key {
	case SumTotal:
		return tx.Total.Decimal, tx.Total.Valid
	case SumGrossIncome:
		return tx.GrossIncome.Decimal, tx.GrossIncome.Valid
	case SumQuantity:
		return decimal.NewFromInt(int64(tx.Quantity)), true
	default:
		return decimal.Zero, false
	}
}

func matches(tx models.Transaction, selected models.Month) bool {
	return selected == models.AllMonths || tx.Month == selected
}

// inThousands scales to thousands and rounds half-to-even to 2 places.
func inThousands(sum decimal.Decimal) float64 {
	return sum.Div(thousand).RoundBank(2).InexactFloat64()
}

// ComputeSnapshot aggregates the records of the selected month, or the
// whole table for AllMonths. Missing totals are left out of the sums but
// still count as orders.
func ComputeSnapshot(table *Table, selected models.Month) models.Snapshot {
	sales := decimal.Zero
	income := decimal.Zero
	orders := 0

	for _, tx := range table.All() {
		if !matches(tx, selected) {
			continue
		}
		orders++
		if v, ok := measure(tx, SumTotal); ok {
			sales = sales.Add(v)
		}
		if v, ok := measure(tx, SumGrossIncome); ok {
			income = income.Add(v)
		}
	}

	return models.Snapshot{
		Month:                     selected,
		TotalSalesThousands:       inThousands(sales),
		TotalGrossIncomeThousands: inThousands(income),
		OrderCount:                orders,
	}
}

// GroupSum sums value per group. The result has exactly one entry per
// element of order, in that order; groups outside order are dropped.
func GroupSum(table *Table, groupKey GroupKey, value ValueKey, order []string) []models.GroupTotal {
	sums := make(map[string]decimal.Decimal, len(order))
	for _, tx := range table.All() {
		if v, ok := measure(tx, value); ok {
			key := groupValue(tx, groupKey)
			sums[key] = sums[key].Add(v)
		}
	}
	return ordered(order, sums)
}

// GroupCount counts records per group, ordered like GroupSum.
func GroupCount(table *Table, groupKey GroupKey, order []string) []models.GroupTotal {
	counts := make(map[string]decimal.Decimal, len(order))
	one := decimal.NewFromInt(1)
	for _, tx := range table.All() {
		key := groupValue(tx, groupKey)
		counts[key] = counts[key].Add(one)
	}
	return ordered(order, counts)
}

func ordered(order []string, values map[string]decimal.Decimal) []models.GroupTotal {
	result := make([]models.GroupTotal, 0, len(order))
	for _, key := range order {
		result = append(result, models.GroupTotal{
			Key:   key,
			Value: values[key].InexactFloat64(),
		})
	}
	return result
}

// NetRevenueThousands is the all-time gross income rounded to the nearest
// hundred before scaling, which is coarser than the monthly figures.
func NetRevenueThousands(table *Table) float64 {
	sum := decimal.Zero
	for _, tx := range table.All() {
		if v, ok := measure(tx, SumGrossIncome); ok {
			sum = sum.Add(v)
		}
	}
	return sum.RoundBank(-2).Div(thousand).InexactFloat64()
}

func MedianBilling(table *Table) int {
	return median(table, SumTotal)
}

func MedianGrossIncome(table *Table) int {
	return median(table, SumGrossIncome)
}

// median of the non-missing values, truncated toward zero.
func median(table *Table, value ValueKey) int {
	values := make([]decimal.Decimal, 0, table.Len())
	for _, tx := range table.All() {
		if v, ok := measure(tx, value); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0
	}

	slices.SortFunc(values, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	mid := len(values) / 2
	m := values[mid]
	if len(values)%2 == 0 {
		m = values[mid-1].Add(values[mid]).Div(decimal.NewFromInt(2))
	}
	return int(m.IntPart())
}

func BuildOverview(table *Table) models.Overview {
	return models.Overview{
		NetRevenueThousands:   NetRevenueThousands(table),
		MedianBilling:         MedianBilling(table),
		MedianGrossIncome:     MedianGrossIncome(table),
		RevenueByProductLine:  GroupSum(table, ByProductLine, SumGrossIncome, models.RevenueChartOrder),
		QuantityByProductLine: GroupSum(table, ByProductLine, SumQuantity, models.QuantityChartOrder),
		CustomerTypes:         GroupCount(table, ByCustomerType, models.CustomerTypes),
		PaymentMethods:        GroupCount(table, ByPayment, models.PaymentMethods),
		Genders:               GroupCount(table, ByGender, models.Genders),
	}
}

// Analytics serves aggregates over one derived table. The all-time
// overview never changes and is computed once.
type Analytics struct {
	table    *Table
	overview models.Overview
	loadedAt time.Time
}

func NewAnalytics(table *Table) *Analytics {
	return &Analytics{
		table:    table,
		overview: BuildOverview(table),
		loadedAt: time.Now(),
	}
}

func (a *Analytics) Table() *Table {
	return a.table
}

func (a *Analytics) Snapshot(month models.Month) models.Snapshot {
	return ComputeSnapshot(a.table, month)
}

func (a *Analytics) Overview() models.Overview {
	o := a.overview
	o.RevenueByProductLine = slices.Clone(o.RevenueByProductLine)
	o.QuantityByProductLine = slices.Clone(o.QuantityByProductLine)
	o.CustomerTypes = slices.Clone(o.CustomerTypes)
	o.PaymentMethods = slices.Clone(o.PaymentMethods)
	o.Genders = slices.Clone(o.Genders)
	return o
}

// Stats is used for monitoring.
func (a *Analytics) Stats() map[string]any {
	perMonth := make(map[string]int, len(models.KnownMonths))
	for _, m := range models.KnownMonths {
		perMonth[string(m)] = a.Snapshot(m).OrderCount
	}

	return map[string]any{
		"record_count": a.table.Len(),
		"loaded_at":    a.loadedAt,
		"per_month":    perMonth,
	}
}
