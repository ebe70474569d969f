package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportRun records one pipeline stage execution (parse, artifacts, script,
// layout, apply) for a report.
type ReportRun struct {
	ID         uuid.UUID `json:"id"`
	ReportID   string    `json:"report_id"`
	Stage      string    `json:"stage"`
	InputFile  string    `json:"input_file,omitempty"`
	OutputFile string    `json:"output_file,omitempty"`
	Success    bool      `json:"success"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *ReportRun) Prepare() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
}
