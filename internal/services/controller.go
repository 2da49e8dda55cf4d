package services

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"supermarket-dashboard/internal/models"
)

// Presenter receives computed figures for display.
type Presenter interface {
	DisplayScalar(label string, value float64, format string)
	DisplaySeries(label string, pairs []models.GroupTotal)
}

// Indicator labels and formats.
const (
	LabelTotalSales        = "Total Sales"
	LabelGrossIncome       = "Gross Income"
	LabelOrders            = "Orders"
	LabelNetRevenue        = "Net Revenue"
	LabelMedianBilling     = "Mean Billing value"
	LabelMedianGrossIncome = "Mean gross income"

	LabelRevenueByProductLine  = "Net Revenue from different Product lines"
	LabelQuantityByProductLine = "Units sold from different Product lines"
	LabelCustomerTypes         = "Customer Type"
	LabelPaymentMethods        = "Payment Methods"
	LabelGenders               = "Shoppers"

	FormatThousands = "${value}k"
	FormatCurrency  = "${value}"
	FormatPlain     = "{value}"
)

// FormatValue substitutes value into a "{value}" format.
func FormatValue(format string, value float64) string {
	return strings.ReplaceAll(format, "{value}", strconv.FormatFloat(value, 'f', -1, 64))
}

// PresentSnapshot pushes the three monthly indicators.
func PresentSnapshot(p Presenter, s models.Snapshot) {
	p.DisplayScalar(LabelTotalSales, s.TotalSalesThousands, FormatThousands)
	p.DisplayScalar(LabelGrossIncome, s.TotalGrossIncomeThousands, FormatThousands)
	p.DisplayScalar(LabelOrders, float64(s.OrderCount), FormatPlain)
}

// PresentOverview pushes the all-time indicators and charts.
func PresentOverview(p Presenter, o models.Overview) {
	p.DisplayScalar(LabelNetRevenue, o.NetRevenueThousands, FormatThousands)
	p.DisplayScalar(LabelMedianBilling, float64(o.MedianBilling), FormatCurrency)
	p.DisplayScalar(LabelMedianGrossIncome, float64(o.MedianGrossIncome), FormatCurrency)
	p.DisplaySeries(LabelRevenueByProductLine, o.RevenueByProductLine)
	p.DisplaySeries(LabelQuantityByProductLine, o.QuantityByProductLine)
	p.DisplaySeries(LabelPaymentMethods, o.PaymentMethods)
	p.DisplaySeries(LabelCustomerTypes, o.CustomerTypes)
	p.DisplaySeries(LabelGenders, o.Genders)
}

type SelectionRecorder interface {
	ObserveSelection(month string, duration time.Duration)
}

// Controller owns the selected month. Selections are handled one at a
// time: each one replaces the month, recomputes and presents before the
// next is admitted.
type Controller struct {
	mu        sync.Mutex
	analytics *Analytics
	selected  models.Month
	recorder  SelectionRecorder
}

func NewController(analytics *Analytics, recorder SelectionRecorder) *Controller {
	return &Controller{
		analytics: analytics,
		selected:  models.KnownMonths[0],
		recorder:  recorder,
	}
}

func (c *Controller) Analytics() *Analytics {
	return c.analytics
}

func (c *Controller) Selected() models.Month {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Select makes month the current selection and presents its snapshot.
// A month outside KnownMonths yields an all-zero snapshot and leaves the
// current selection unchanged.
func (c *Controller) Select(month models.Month, p Presenter) models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	if month == models.AllMonths || month.IsKnown() {
		c.selected = month
	}
	snapshot := c.analytics.Snapshot(month)
	if c.recorder != nil {
		c.recorder.ObserveSelection(string(month), time.Since(start))
	}

	if p != nil {
		PresentSnapshot(p, snapshot)
	}
	return snapshot
}

// Present re-presents the current selection without changing it. The
// returned snapshot's Month is the selection that was presented.
func (c *Controller) Present(p Presenter) models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.analytics.Snapshot(c.selected)
	if p != nil {
		PresentSnapshot(p, snapshot)
	}
	return snapshot
}
