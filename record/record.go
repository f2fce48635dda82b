// Package record defines the normalized representation of one job listing.
package record

// JobRecord is the structured form of a single listing as extracted from a
// platform. Records are immutable once extracted and are persisted at most
// once; the URL acts as the identity key for deduplication.
type JobRecord struct {
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle"`
	Tags         []string `json:"tags"`
	Technologies []string `json:"technologies"`
	Requirements []string `json:"requirements"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	Salary       string   `json:"salary"` // raw, locale-formatted, ie. "$ 3.500.000,00 (Mensual)"
	Experience   string   `json:"experience"`
	URL          string   `json:"url"`
	SearchRole   string   `json:"role_search"`
}
