package handlers

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"supermarket-dashboard/internal/models"
	"supermarket-dashboard/internal/services"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func tx(month models.Month, productLine, customerType, payment, gender string, quantity int, total, grossIncome string) models.Transaction {
	return models.Transaction{
		ProductLine:  productLine,
		CustomerType: customerType,
		Payment:      payment,
		Gender:       gender,
		Quantity:     quantity,
		Total:        money(total),
		GrossIncome:  money(grossIncome),
		Month:        month,
	}
}

// createTestController serves January 0.3k/0.03k/2 orders and
// February 0.05k/0k/1 order.
func createTestController(t *testing.T) *services.Controller {
	t.Helper()
	table := services.NewTable([]models.Transaction{
		tx(models.January, models.FoodAndBeverages, "Member", "Ewallet", "Female", 1, "100", "10"),
		tx(models.January, models.SportsAndTravel, "Normal", "Cash", "Male", 2, "200", "20"),
		tx(models.February, models.FoodAndBeverages, "Normal", "Ewallet", "Male", 3, "50", "5"),
	})
	return services.NewController(services.NewAnalytics(table), nil)
}
