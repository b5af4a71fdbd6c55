package domain

import "time"

// Project is a scraping project owned by a user. Status and item counts are
// only changed by the scrape pipeline.
type Project struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	TargetURL    string     `json:"target_url"`
	Status       string     `json:"status"`
	TotalItems   int        `json:"total_items"`
	ScrapedItems int        `json:"scraped_items"`
	DataTypes    []DataType `json:"data_types"`
	RenderJS     bool       `json:"render_js"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Project status constants
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DataType names a kind of data the post-processing step extracts.
type DataType string

const (
	DataText   DataType = "text"
	DataLinks  DataType = "links"
	DataImages DataType = "images"
	DataPrices DataType = "prices"
	DataEmails DataType = "emails"
	DataPhones DataType = "phones"
)

// AllDataTypes lists the data types in form order.
var AllDataTypes = []DataType{DataText, DataLinks, DataImages, DataPrices, DataEmails, DataPhones}

// DefaultDataTypes are the ones pre-selected on the project form.
var DefaultDataTypes = []DataType{DataText, DataLinks}

// CreateProjectRequest represents data needed to create a new project
type CreateProjectRequest struct {
	UserID      string
	Name        string
	Description string
	TargetURL   string
	DataTypes   []DataType
	RenderJS    bool
}

// UpdateProjectRequest carries the user-editable fields.
type UpdateProjectRequest struct {
	Name        *string
	Description *string
}

// Counts is written together with a terminal status.
type Counts struct {
	Total   int
	Scraped int
}

// Stats summarises a user's projects for the dashboard header.
type Stats struct {
	TotalProjects     int `json:"total_projects"`
	CompletedProjects int `json:"completed_projects"`
	RunningProjects   int `json:"running_projects"`
	FailedProjects    int `json:"failed_projects"`
	TotalScrapedItems int `json:"total_scraped_items"`
}
