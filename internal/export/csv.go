package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/listly/listly-backend/internal/scraping/domain"
)

func encodeCSV(items []domain.ScrapedItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range items {
		if err := w.Write(row(it)); err != nil {
			return nil, fmt.Errorf("write csv row %s: %w", it.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
