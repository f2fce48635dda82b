// Package export renders stored job records for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/alwedo/jobscout/record"
)

var header = []string{
	"title", "subtitle", "tags", "technologies", "requirements",
	"company", "location", "salary", "experience", "url", "role_search",
}

// CSV writes the records as one CSV document, one row per listing. List
// fields are joined with ";".
func CSV(w io.Writer, rows []record.JobRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("unable to write header in export.CSV: %w", err)
	}
	for _, r := range rows {
		row := []string{
			r.Title,
			r.Subtitle,
			strings.Join(r.Tags, ";"),
			strings.Join(r.Technologies, ";"),
			strings.Join(r.Requirements, ";"),
			r.Company,
			r.Location,
			r.Salary,
			r.Experience,
			r.URL,
			r.SearchRole,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("unable to write row for %s in export.CSV: %w", r.URL, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("unable to flush in export.CSV: %w", err)
	}
	return nil
}
