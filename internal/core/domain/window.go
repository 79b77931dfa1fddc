package domain

import (
	"time"

	apperrors "github.com/alejandroruanova/cbam-emissions/internal/pkg/errors"
)

// DateLayout is the wire format of reporting dates.
const DateLayout = "2006-01-02"

// ReportingWindow is an inclusive [Start, End] date range.
type ReportingWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewReportingWindow parses two YYYY-MM-DD dates into a validated window.
func NewReportingWindow(start, end string) (ReportingWindow, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return ReportingWindow{}, apperrors.Validation("window_start", "start date must be YYYY-MM-DD")
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return ReportingWindow{}, apperrors.Validation("window_end", "end date must be YYYY-MM-DD")
	}
	w := ReportingWindow{Start: s, End: e}
	return w, w.Validate()
}

// Validate rejects unset windows and windows ending before they start.
func (w ReportingWindow) Validate() error {
	if w.Start.IsZero() {
		return apperrors.Validation("window_start", "reporting window start is required")
	}
	if w.End.IsZero() {
		return apperrors.Validation("window_end", "reporting window end is required")
	}
	if w.End.Before(w.Start) {
		return apperrors.Validation("window_end", "reporting window end is before its start")
	}
	return nil
}

// Covers reports whether a batch [start, end] lies entirely inside the window.
func (w ReportingWindow) Covers(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}
