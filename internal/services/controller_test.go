package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supermarket-dashboard/internal/models"
)

type countingRecorder struct {
	mu     sync.Mutex
	months []string
}

func (r *countingRecorder) ObserveSelection(month string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.months = append(r.months, month)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "$0.3k", FormatValue(FormatThousands, 0.3))
	assert.Equal(t, "$489", FormatValue(FormatCurrency, 489))
	assert.Equal(t, "2", FormatValue(FormatPlain, 2))
	assert.Equal(t, "$0k", FormatValue(FormatThousands, 0))
}

func TestController_InitialSelection(t *testing.T) {
	c := NewController(NewAnalytics(scenarioTable()), nil)
	assert.Equal(t, models.January, c.Selected())

	p := newRecordingPresenter()
	snap := c.Present(p)
	assert.Equal(t, 2, snap.OrderCount)
	assert.Equal(t, "$0.3k", p.scalars[LabelTotalSales])
	assert.Equal(t, "$0.03k", p.scalars[LabelGrossIncome])
	assert.Equal(t, "2", p.scalars[LabelOrders])
	assert.Equal(t, models.January, c.Selected())
}

func TestController_Select(t *testing.T) {
	recorder := &countingRecorder{}
	c := NewController(NewAnalytics(scenarioTable()), recorder)

	p := newRecordingPresenter()
	snap := c.Select(models.February, p)

	assert.Equal(t, models.February, c.Selected())
	assert.Equal(t, 1, snap.OrderCount)
	assert.Equal(t, []string{LabelTotalSales, LabelGrossIncome, LabelOrders}, p.order)
	assert.Equal(t, "$0.05k", p.scalars[LabelTotalSales])
	assert.Equal(t, "1", p.scalars[LabelOrders])
	assert.Equal(t, []string{"February"}, recorder.months)
}

func TestController_SelectUnknownMonth(t *testing.T) {
	c := NewController(NewAnalytics(scenarioTable()), nil)

	c.Select(models.February, nil)

	p := newRecordingPresenter()
	snap := c.Select("Smarch", p)

	assert.Equal(t, models.February, c.Selected(), "an unknown month is not stored")
	assert.Equal(t, models.Month("Smarch"), snap.Month)
	assert.Equal(t, 0, snap.OrderCount)
	assert.Equal(t, "$0k", p.scalars[LabelTotalSales])
	assert.Equal(t, "0", p.scalars[LabelOrders])
}

func TestController_PresentReportsMonth(t *testing.T) {
	c := NewController(NewAnalytics(scenarioTable()), nil)
	c.Select(models.February, nil)

	snap := c.Present(nil)
	assert.Equal(t, models.February, snap.Month)
	assert.Equal(t, 1, snap.OrderCount)
}

func TestController_NilPresenter(t *testing.T) {
	c := NewController(NewAnalytics(scenarioTable()), nil)
	assert.NotPanics(t, func() {
		c.Select(models.March, nil)
		c.Present(nil)
	})
}

func TestController_ConcurrentSelections(t *testing.T) {
	recorder := &countingRecorder{}
	c := NewController(NewAnalytics(scenarioTable()), recorder)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(month models.Month) {
			defer wg.Done()
			p := newRecordingPresenter()
			snap := c.Select(month, p)
			// Each selection sees its own month's snapshot.
			assert.Equal(t, month, snap.Month)
		}(models.KnownMonths[i%3])
	}
	wg.Wait()

	require.Len(t, recorder.months, 30)
	assert.True(t, c.Selected().IsKnown())
}

func TestPresentOverview(t *testing.T) {
	p := newRecordingPresenter()
	PresentOverview(p, BuildOverview(loadSample(t)))

	assert.Equal(t, "$0.1k", p.scalars[LabelNetRevenue])
	assert.Equal(t, "$489", p.scalars[LabelMedianBilling])
	assert.Equal(t, "$23", p.scalars[LabelMedianGrossIncome])
	require.Len(t, p.series[LabelRevenueByProductLine], 6)
	assert.Equal(t, models.FoodAndBeverages, p.series[LabelRevenueByProductLine][0].Key)
	assert.Equal(t, models.HealthAndBeauty, p.series[LabelQuantityByProductLine][0].Key)
	assert.Len(t, p.series[LabelPaymentMethods], 3)
}
