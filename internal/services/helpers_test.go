package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"supermarket-dashboard/internal/models"
)

const salesHeader = "Invoice ID,Branch,City,Customer type,Gender,Product line,Unit price,Quantity,Tax 5%,Total,Date,Time,Payment,cogs,gross margin percentage,gross income,Rating\n"

const salesCSV = salesHeader +
	"750-67-8428,A,Yangon,Member,Female,Health and beauty,74.69,7,26.1415,548.9715,1/5/2019,13:08,Ewallet,522.83,4.761904762,26.1415,9.1\n" +
	"226-31-3081,C,Naypyitaw,Normal,Female,Electronic accessories,15.28,5,3.82,80.22,3/8/2019,10:29,Cash,76.4,4.761904762,3.82,9.6\n" +
	"631-41-3108,A,Yangon,Normal,Male,Home and lifestyle,46.33,7,16.2155,340.5255,3/3/2019,13:23,Credit card,324.31,4.761904762,16.2155,7.4\n" +
	"123-19-1176,A,Yangon,Member,Male,Health and beauty,58.22,8,23.288,489.048,1/27/2019,20:33,Ewallet,465.76,4.761904762,23.288,8.4\n" +
	"373-73-7910,A,Yangon,Normal,Male,Sports and travel,86.31,7,30.2085,634.3785,2/8/2019,10:37,Ewallet,604.17,4.761904762,30.2085,5.3\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func sale(month models.Month, productLine string, quantity int, total, grossIncome string) models.Transaction {
	tx := models.Transaction{
		ProductLine: productLine,
		Quantity:    quantity,
		Month:       month,
	}
	if total != "" {
		tx.Total = money(total)
	}
	if grossIncome != "" {
		tx.GrossIncome = money(grossIncome)
	}
	return tx
}

func dated(year int, month time.Month, day int) models.Transaction {
	return models.Transaction{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// scenarioTable is the three-record table from the snapshot examples.
func scenarioTable() *Table {
	return NewTable([]models.Transaction{
		sale(models.January, models.FoodAndBeverages, 1, "100", "10"),
		sale(models.January, models.SportsAndTravel, 2, "200", "20"),
		sale(models.February, models.FoodAndBeverages, 3, "50", "5"),
	})
}

type recordingPresenter struct {
	scalars map[string]string
	series  map[string][]models.GroupTotal
	order   []string
}

func newRecordingPresenter() *recordingPresenter {
	return &recordingPresenter{
		scalars: make(map[string]string),
		series:  make(map[string][]models.GroupTotal),
	}
}

func (p *recordingPresenter) DisplayScalar(label string, value float64, format string) {
	p.scalars[label] = FormatValue(format, value)
	p.order = append(p.order, label)
}

func (p *recordingPresenter) DisplaySeries(label string, pairs []models.GroupTotal) {
	p.series[label] = pairs
	p.order = append(p.order, label)
}
