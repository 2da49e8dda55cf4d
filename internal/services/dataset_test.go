package services

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supermarket-dashboard/internal/errors"
	"supermarket-dashboard/internal/models"
)

func TestReadCSV_ValidData(t *testing.T) {
	table, err := ReadCSV(context.Background(), strings.NewReader(salesCSV))
	require.NoError(t, err)
	require.Equal(t, 5, table.Len())

	first := table.Record(0)
	assert.Equal(t, "750-67-8428", first.InvoiceID)
	assert.Equal(t, "Yangon", first.City)
	assert.Equal(t, "Member", first.CustomerType)
	assert.Equal(t, "Female", first.Gender)
	assert.Equal(t, models.HealthAndBeauty, first.ProductLine)
	assert.Equal(t, 7, first.Quantity)
	assert.Equal(t, "Ewallet", first.Payment)
	assert.Equal(t, time.Date(2019, time.January, 5, 0, 0, 0, 0, time.UTC), first.Date)
	assert.True(t, first.Total.Valid)
	assert.Equal(t, "548.9715", first.Total.Decimal.String())
	assert.Equal(t, "26.1415", first.GrossIncome.Decimal.String())
	assert.Equal(t, "9.1", first.Rating.String())
	assert.Equal(t, models.Month(""), first.Month, "month is derived later")

	// File order is preserved.
	assert.Equal(t, "373-73-7910", table.Record(4).InvoiceID)
}

func TestReadCSV_PreservesOrderAcrossBatches(t *testing.T) {
	var b strings.Builder
	b.WriteString(salesHeader)
	const rows = batchSize*2 + 17
	for i := 0; i < rows; i++ {
		b.WriteString("id,A,Yangon,Normal,Male,Sports and travel,1,")
		b.WriteString(strings.Repeat("1", 1+i%3))
		b.WriteString(",0,10,2/8/2019,10:37,Cash,1,4.7,1,5\n")
	}

	table, err := ReadCSV(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Equal(t, rows, table.Len())

	for i, tx := range table.All() {
		want := []int{1, 11, 111}[i%3]
		if tx.Quantity != want {
			t.Fatalf("record %d: quantity = %d, want %d", i, tx.Quantity, want)
		}
	}
}

func TestReadCSV_MissingCurrencyIsNotAnError(t *testing.T) {
	csv := salesHeader +
		"1,A,Yangon,Normal,Male,Sports and travel,1,1,0,,2/8/2019,10:37,Cash,1,4.7,15,5\n" +
		"2,A,Yangon,Normal,Male,Sports and travel,1,1,0,20,2/9/2019,10:37,Cash,1,4.7,,5\n"

	table, err := ReadCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.False(t, table.Record(0).Total.Valid)
	assert.True(t, table.Record(0).GrossIncome.Valid)
	assert.True(t, table.Record(1).Total.Valid)
	assert.False(t, table.Record(1).GrossIncome.Valid)
}

func TestReadCSV_InvalidData(t *testing.T) {
	row := func(date, quantity, total string) string {
		return "1,A,Yangon,Normal,Male,Sports and travel,1," + quantity + ",0," + total + "," + date + ",10:37,Cash,1,4.7,1,5\n"
	}

	tests := []struct {
		name      string
		csv       string
		wantField string
	}{
		{name: "empty file", csv: ""},
		{name: "header only", csv: salesHeader},
		{name: "missing required column", csv: "Invoice ID,Date,Total\n1,1/5/2019,10\n", wantField: "Product line"},
		{name: "invalid date", csv: salesHeader + row("not-a-date", "1", "10"), wantField: "Date"},
		{name: "invalid quantity", csv: salesHeader + row("1/5/2019", "many", "10"), wantField: "Quantity"},
		{name: "negative quantity", csv: salesHeader + row("1/5/2019", "-1", "10"), wantField: "Quantity"},
		{name: "invalid total", csv: salesHeader + row("1/5/2019", "1", "ten"), wantField: "Total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(context.Background(), strings.NewReader(tt.csv))
			require.Error(t, err)

			if tt.wantField != "" {
				var dataErr *errors.DataValidationError
				require.True(t, stderrors.As(err, &dataErr), "want DataValidationError, got %v", err)
				assert.Equal(t, tt.wantField, dataErr.Field)
			}
		})
	}
}

func TestReadCSV_ReportsLine(t *testing.T) {
	csv := salesHeader +
		"1,A,Yangon,Normal,Male,Sports and travel,1,1,0,10,1/5/2019,10:37,Cash,1,4.7,1,5\n" +
		"2,A,Yangon,Normal,Male,Sports and travel,1,x,0,10,1/5/2019,10:37,Cash,1,4.7,1,5\n"

	_, err := ReadCSV(context.Background(), strings.NewReader(csv))

	var dataErr *errors.DataValidationError
	require.True(t, stderrors.As(err, &dataErr))
	assert.Equal(t, 3, dataErr.Line)
}

func TestReadCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadCSV(ctx, strings.NewReader(salesCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadCSV_FileNotFound(t *testing.T) {
	_, err := LoadCSV(context.Background(), "/nonexistent/sales.csv")
	assert.Error(t, err)
}

func TestTable_NilIsEmpty(t *testing.T) {
	var table *Table
	assert.Equal(t, 0, table.Len())
	for range table.All() {
		t.Fatal("nil table should yield nothing")
	}
}

func TestNewTable_CopiesInput(t *testing.T) {
	records := []models.Transaction{{InvoiceID: "a"}}
	table := NewTable(records)
	records[0].InvoiceID = "changed"

	assert.Equal(t, "a", table.Record(0).InvoiceID)
}
