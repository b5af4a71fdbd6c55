package domain

import (
	"encoding/json"
	"strings"
)

// DecodeObject parses s as a JSON object. Empty or invalid input gives an empty map.
func DecodeObject(s string) map[string]any {
	out := map[string]any{}
	if strings.TrimSpace(s) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// DecodeLinks parses s as a JSON array of links. Nil, empty or invalid input gives an empty slice.
func DecodeLinks(s *string) []Link {
	out := []Link{}
	if s == nil || strings.TrimSpace(*s) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(*s), &out); err != nil || out == nil {
		return []Link{}
	}
	return out
}

// ItemView is a ScrapedItem with its JSON columns decoded, as returned by the API.
type ItemView struct {
	ID          string         `json:"id" yaml:"id"`
	ProjectID   string         `json:"project_id" yaml:"project_id"`
	URL         string         `json:"url" yaml:"url"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	ImageURL    *string        `json:"image_url" yaml:"image_url"`
	Price       *string        `json:"price" yaml:"price"`
	Email       *string        `json:"email" yaml:"email"`
	Phone       *string        `json:"phone" yaml:"phone"`
	Links       []Link         `json:"links" yaml:"links"`
	CustomData  map[string]any `json:"custom_data" yaml:"custom_data"`
	ScrapedAt   string         `json:"scraped_at" yaml:"scraped_at"`
}

func (it ScrapedItem) View() ItemView {
	return ItemView{
		ID:          it.ID,
		ProjectID:   it.ProjectID,
		URL:         it.URL,
		Title:       it.Title,
		Description: it.Description,
		ImageURL:    it.ImageURL,
		Price:       it.Price,
		Email:       it.Email,
		Phone:       it.Phone,
		Links:       DecodeLinks(it.Links),
		CustomData:  DecodeObject(it.CustomData),
		ScrapedAt:   it.ScrapedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// FilterItems keeps items whose title, description or url contains query, case-insensitively.
func FilterItems(items []ScrapedItem, query string) []ScrapedItem {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]ScrapedItem, 0, len(items))
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), q) ||
			strings.Contains(strings.ToLower(it.Description), q) ||
			strings.Contains(strings.ToLower(it.URL), q) {
			out = append(out, it)
		}
	}
	return out
}
