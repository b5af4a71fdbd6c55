package export

import (
	"encoding/json"

	"github.com/listly/listly-backend/internal/scraping/domain"
)

func encodeJSON(items []domain.ScrapedItem) ([]byte, error) {
	views := make([]domain.ItemView, 0, len(items))
	for _, it := range items {
		views = append(views, it.View())
	}
	return json.MarshalIndent(views, "", "  ")
}
