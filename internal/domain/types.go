package domain

// Collection names on the backend.
const (
	GardensCollection = "gardens"
	ReportsCollection = "reports"
)

type Garden struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Address string   `json:"address"`
	Photos  []string `json:"photos"`
}

// Report is a free-text note. An empty ID means the report is not saved yet.
type Report struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Created string `json:"created"`
}

func (r *Report) IsNew() bool { return r.ID == "" }
