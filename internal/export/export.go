// Package export renders inventory items as CSV for spreadsheet use.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"grocerify/models"
)

// Header is the first row of every export.
var Header = []string{"Item ID", "Name", "Price", "Quantity", "Category", "Date Added"}

// DateLayout is the 12-hour clock format used for the Date Added column.
const DateLayout = "2006-01-02 03:04:05 PM"

// WriteCSV writes the header and one row per item, in the order given, and
// returns the number of item rows written. Callers pass items newest first.
func WriteCSV(w io.Writer, items []models.Item) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, err
	}
	n := 0
	for _, it := range items {
		if err := cw.Write(Row(it)); err != nil {
			return n, fmt.Errorf("write %s: %w", it.ItemID, err)
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

// Row formats a single item: price with two decimals, date on a 12-hour clock.
func Row(it models.Item) []string {
	return []string{
		it.ItemID,
		it.Name,
		strconv.FormatFloat(it.Price, 'f', 2, 64),
		strconv.FormatInt(it.Quantity, 10),
		string(it.Category),
		it.DateAdded.Format(DateLayout),
	}
}

// DefaultFilename is the suggested file name for an export taken at t.
func DefaultFilename(t time.Time) string {
	return "inventory_export_" + t.Format("20060102_150405") + ".csv"
}
