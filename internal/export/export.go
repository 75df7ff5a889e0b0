// Package export dumps stored records as CSV or JSON files.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JoseAndresM/LKND/internal/model"
)

// csvHeader is the long-standing export layout; downstream spreadsheets
// depend on the column order.
var csvHeader = []string{"ID", "Title", "Company", "Location", "URL", "Category", "Source", "Date Found"}

// record is the JSON view of a Job. Keys stay snake_case so exports read
// the same across releases.
type record struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Salary      string   `json:"salary,omitempty"`
	JobType     string   `json:"job_type,omitempty"`
	PostedDate  string   `json:"posted_date,omitempty"`
	Source      string   `json:"source"`
	FoundDate   string   `json:"found_date"`
	Tags        []string `json:"tags"`
}

// WriteAll dumps every stored record to w in the given format.
func WriteAll(ctx context.Context, st model.Store, format string, w io.Writer) error {
	jobs, err := st.RecordsSince(ctx, time.Time{})
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	switch strings.ToLower(format) {
	case "csv":
		return CSV(w, jobs)
	case "json":
		return JSON(w, jobs)
	default:
		return fmt.Errorf("unknown export format %q (use csv or json)", format)
	}
}

// CSV writes one row per record under the fixed header.
func CSV(w io.Writer, jobs []model.Job) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, job := range jobs {
		row := []string{
			job.ID,
			job.Title,
			job.Company,
			job.Location,
			job.URL,
			strings.Join(job.Tags, ", "),
			job.Source,
			job.FoundDate.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSON writes the records as an indented array.
func JSON(w io.Writer, jobs []model.Job) error {
	records := make([]record, 0, len(jobs))
	for _, job := range jobs {
		records = append(records, record{
			ID:          job.ID,
			Title:       job.Title,
			Company:     job.Company,
			Location:    job.Location,
			URL:         job.URL,
			Description: job.Description,
			Salary:      job.Salary,
			JobType:     job.JobType,
			PostedDate:  job.PostedDate,
			Source:      job.Source,
			FoundDate:   job.FoundDate.Format(time.RFC3339),
			Tags:        job.Tags,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
