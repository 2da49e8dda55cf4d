package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"supermarket-dashboard/internal/errors"
	"supermarket-dashboard/internal/models"
)

const (
	batchSize  = 1000
	maxWorkers = 10
)

var dateLayouts = []string{"1/2/2006", "2006-01-02"}

const (
	colInvoiceID      = "Invoice ID"
	colBranch         = "Branch"
	colCity           = "City"
	colCustomerType   = "Customer type"
	colGender         = "Gender"
	colProductLine    = "Product line"
	colUnitPrice      = "Unit price"
	colQuantity       = "Quantity"
	colTax            = "Tax 5%"
	colTotal          = "Total"
	colDate           = "Date"
	colTime           = "Time"
	colPayment        = "Payment"
	colCOGS           = "cogs"
	colGrossMarginPct = "gross margin percentage"
	colGrossIncome    = "gross income"
	colRating         = "Rating"
)

var requiredColumns = []string{
	colDate, colProductLine, colGender, colPayment,
	colCustomerType, colQuantity, colTotal, colGrossIncome,
}

// Table is the loaded dataset. It is never mutated after construction.
type Table struct {
	records []models.Transaction
}

func NewTable(records []models.Transaction) *Table {
	return &Table{records: slices.Clone(records)}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

func (t *Table) All() iter.Seq2[int, models.Transaction] {
	if t == nil {
		return func(func(int, models.Transaction) bool) {}
	}
	return slices.All(t.records)
}

func (t *Table) Record(i int) models.Transaction {
	return t.records[i]
}

// LoadCSV parses the sales CSV at filename.
func LoadCSV(ctx context.Context, filename string) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return ReadCSV(ctx, file)
}

type csvRow struct {
	line   int
	fields []string
}

// ReadCSV parses sales records from r. Columns are resolved by header
// name; rows are parsed in batches by a bounded worker group and keep
// their file order.
func ReadCSV(ctx context.Context, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var records []models.Transaction
	batch := make([]csvRow, 0, batchSize)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		line, _ := reader.FieldPos(0)
		batch = append(batch, csvRow{line: line, fields: fields})

		if len(batch) >= batchSize {
			parsed, err := parseBatch(ctx, batch, columns)
			if err != nil {
				return nil, err
			}
			records = append(records, parsed...)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		parsed, err := parseBatch(ctx, batch, columns)
		if err != nil {
			return nil, err
		}
		records = append(records, parsed...)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no records found")
	}

	return &Table{records: records}, nil
}

type columnIndex map[string]int

func resolveColumns(header []string) (columnIndex, error) {
	columns := make(columnIndex, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		columns[name] = i
	}

	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, &errors.DataValidationError{
				Line:   1,
				Field:  name,
				Reason: "required column missing from header",
			}
		}
	}
	return columns, nil
}

func (c columnIndex) value(fields []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func parseBatch(ctx context.Context, batch []csvRow, columns columnIndex) ([]models.Transaction, error) {
	records := make([]models.Transaction, len(batch))
	rowErrs := make([]error, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, row := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i], rowErrs[i] = parseTransaction(row, columns)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Report the earliest bad line regardless of scheduling order.
	for _, rowErr := range rowErrs {
		if rowErr != nil {
			return nil, rowErr
		}
	}

	return records, nil
}

func parseTransaction(row csvRow, columns columnIndex) (models.Transaction, error) {
	get := func(name string) string { return columns.value(row.fields, name) }
	invalid := func(field, value, reason string) error {
		return &errors.DataValidationError{Line: row.line, Field: field, Value: value, Reason: reason}
	}

	date, err := parseDate(get(colDate))
	if err != nil {
		return models.Transaction{}, invalid(colDate, get(colDate), "not a calendar date")
	}

	quantity, err := strconv.Atoi(get(colQuantity))
	if err != nil {
		return models.Transaction{}, invalid(colQuantity, get(colQuantity), "not an integer")
	}
	if quantity < 0 {
		return models.Transaction{}, invalid(colQuantity, get(colQuantity), "must not be negative")
	}

	tx := models.Transaction{
		InvoiceID:    get(colInvoiceID),
		Branch:       get(colBranch),
		City:         get(colCity),
		CustomerType: get(colCustomerType),
		Gender:       get(colGender),
		ProductLine:  get(colProductLine),
		Quantity:     quantity,
		Date:         date,
		Time:         get(colTime),
		Payment:      get(colPayment),
	}

	nullable := []struct {
		name string
		dst  *decimal.NullDecimal
	}{
		{colTotal, &tx.Total},
		{colGrossIncome, &tx.GrossIncome},
	}
	for _, f := range nullable {
		if *f.dst, err = parseNullDecimal(get(f.name)); err != nil {
			return models.Transaction{}, invalid(f.name, get(f.name), "not a number")
		}
	}

	optional := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{colUnitPrice, &tx.UnitPrice},
		{colTax, &tx.Tax},
		{colCOGS, &tx.COGS},
		{colGrossMarginPct, &tx.GrossMarginPct},
		{colRating, &tx.Rating},
	}
	for _, f := range optional {
		value, err := parseNullDecimal(get(f.name))
		if err != nil {
			return models.Transaction{}, invalid(f.name, get(f.name), "not a number")
		}
		*f.dst = value.Decimal
	}

	return tx, nil
}

func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseNullDecimal treats an empty cell as a missing value.
func parseNullDecimal(value string) (decimal.NullDecimal, error) {
	if value == "" || strings.EqualFold(value, "nan") {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
