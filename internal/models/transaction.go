package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Month string

const (
	January  Month = "January"
	February Month = "February"
	March    Month = "March"

	// AllMonths selects the whole table.
	AllMonths Month = ""
)

// KnownMonths is the selector order. The first entry is the initial selection.
var KnownMonths = []Month{January, February, March}

// IsKnown reports whether m is one of KnownMonths.
func (m Month) IsKnown() bool {
	for _, known := range KnownMonths {
		if m == known {
			return true
		}
	}
	return false
}

const (
	FoodAndBeverages      = "Food and beverages"
	SportsAndTravel       = "Sports and travel"
	ElectronicAccessories = "Electronic accessories"
	FashionAccessories    = "Fashion accessories"
	HomeAndLifestyle      = "Home and lifestyle"
	HealthAndBeauty       = "Health and beauty"
)

// Axis orders of the two product line charts.
var (
	RevenueChartOrder = []string{
		FoodAndBeverages,
		SportsAndTravel,
		ElectronicAccessories,
		FashionAccessories,
		HomeAndLifestyle,
		HealthAndBeauty,
	}
	QuantityChartOrder = []string{
		HealthAndBeauty,
		FashionAccessories,
		HomeAndLifestyle,
		SportsAndTravel,
		FoodAndBeverages,
		ElectronicAccessories,
	}
)

var (
	CustomerTypes  = []string{"Normal", "Member"}
	PaymentMethods = []string{"Ewallet", "Cash", "Credit card"}
	Genders        = []string{"Female", "Male"}
)

type Transaction struct {
	InvoiceID      string
	Branch         string
	City           string
	CustomerType   string
	Gender         string
	ProductLine    string
	UnitPrice      decimal.Decimal
	Quantity       int
	Tax            decimal.Decimal
	Total          decimal.NullDecimal
	Date           time.Time
	Time           string
	Payment        string
	COGS           decimal.Decimal
	GrossMarginPct decimal.Decimal
	GrossIncome    decimal.NullDecimal
	Rating         decimal.Decimal
	Month          Month
}

type Snapshot struct {
	Month                     Month   `json:"month"`
	TotalSalesThousands       float64 `json:"total_sales_thousands"`
	TotalGrossIncomeThousands float64 `json:"total_gross_income_thousands"`
	OrderCount                int     `json:"order_count"`
}

type GroupTotal struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

type Overview struct {
	NetRevenueThousands   float64      `json:"net_revenue_thousands"`
	MedianBilling         int          `json:"median_billing"`
	MedianGrossIncome     int          `json:"median_gross_income"`
	RevenueByProductLine  []GroupTotal `json:"revenue_by_product_line"`
	QuantityByProductLine []GroupTotal `json:"quantity_by_product_line"`
	CustomerTypes         []GroupTotal `json:"customer_types"`
	PaymentMethods        []GroupTotal `json:"payment_methods"`
	Genders               []GroupTotal `json:"genders"`
}
