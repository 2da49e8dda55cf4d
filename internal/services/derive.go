package services

import (
	"strconv"
	"time"

	"supermarket-dashboard/internal/errors"
	"supermarket-dashboard/internal/models"
)

// The dataset covers exactly one quarter.
var monthByNumber = map[time.Month]models.Month{
	time.January:  models.January,
	time.February: models.February,
	time.March:    models.March,
}

// DeriveFields returns a copy of table with every record's Month set from
// its date. A date outside the known months fails the whole derivation.
func DeriveFields(table *Table) (*Table, error) {
	records := make([]models.Transaction, 0, table.Len())

	for i, tx := range table.All() {
		month, ok := monthByNumber[tx.Date.Month()]
		if !ok {
			return nil, &errors.DataValidationError{
				Line:   i,
				Field:  "Date",
				Value:  strconv.Itoa(int(tx.Date.Month())),
				Reason: "month number is not mapped to a known month",
			}
		}
		tx.Month = month
		records = append(records, tx)
	}

	return &Table{records: records}, nil
}
