package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"supermarket-dashboard/internal/models"
)

const (
	SnapshotSheet     = "Snapshot"
	ProductLinesSheet = "Product lines"
	DemographicsSheet = "Demographics"
)

// Workbook builds a workbook holding the monthly snapshot on its first sheet
// and the all-time overview on the other two.
func Workbook(snapshot models.Snapshot, overview models.Overview) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SnapshotSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{ProductLinesSheet, DemographicsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DADDE2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	month := string(snapshot.Month)
	if snapshot.Month == models.AllMonths {
		month = "All"
	}

	snapshotRows := [][]any{
		{"Indicator", "Value"},
		{"Month", month},
		{"Total Sales (k)", snapshot.TotalSalesThousands},
		{"Gross Income (k)", snapshot.TotalGrossIncomeThousands},
		{"Orders", snapshot.OrderCount},
		{"Net Revenue (k)", overview.NetRevenueThousands},
		{"Median Billing", overview.MedianBilling},
		{"Median Gross Income", overview.MedianGrossIncome},
	}
	if err := writeRows(f, SnapshotSheet, snapshotRows); err != nil {
		return nil, err
	}

	productRows := [][]any{{"Product line", "Gross income", "Units sold"}}
	quantities := make(map[string]float64, len(overview.QuantityByProductLine))
	for _, q := range overview.QuantityByProductLine {
		quantities[q.Key] = q.Value
	}
	for _, r := range overview.RevenueByProductLine {
		productRows = append(productRows, []any{r.Key, r.Value, quantities[r.Key]})
	}
	if err := writeRows(f, ProductLinesSheet, productRows); err != nil {
		return nil, err
	}

	demographicRows := [][]any{{"Split", "Group", "Orders"}}
	for _, split := range []struct {
		name  string
		pairs []models.GroupTotal
	}{
		{"Customer type", overview.CustomerTypes},
		{"Payment", overview.PaymentMethods},
		{"Gender", overview.Genders},
	} {
		for _, p := range split.pairs {
			demographicRows = append(demographicRows, []any{split.name, p.Key, p.Value})
		}
	}
	if err := writeRows(f, DemographicsSheet, demographicRows); err != nil {
		return nil, err
	}

	for _, sheet := range []string{SnapshotSheet, ProductLinesSheet, DemographicsSheet} {
		if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
			return nil, fmt.Errorf("style %s header: %w", sheet, err)
		}
		if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
			return nil, fmt.Errorf("size %s columns: %w", sheet, err)
		}
		if err := f.SetColWidth(sheet, "B", "C", 16); err != nil {
			return nil, fmt.Errorf("size %s columns: %w", sheet, err)
		}
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// WriteWorkbook builds the workbook and streams it to w.
func WriteWorkbook(w io.Writer, snapshot models.Snapshot, overview models.Overview) error {
	f, err := Workbook(snapshot, overview)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
