package filter

import (
	"log/slog"

	"github.com/alejandroruanova/cbam-emissions/internal/core/domain"
	"github.com/alejandroruanova/cbam-emissions/internal/pkg/metrics"
)

// ByWindow keeps rows whose batch lies inside the window, bounds inclusive.
func ByWindow(rows []domain.RawInputRecord, w domain.ReportingWindow) ([]domain.RawInputRecord, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	out := make([]domain.RawInputRecord, 0, len(rows))
	for _, r := range rows {
		if w.Covers(r.BatchStart, r.BatchEnd) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ByScope keeps rows whose product and process names equal the scope
// exactly. When nothing matches, the whole input is returned instead and
// fellBack is true, so the picker is never empty just because ingestion
// sources spell product or process names differently.
func ByScope(rows []domain.RawInputRecord, scope Scope) (out []domain.RawInputRecord, fellBack bool) {
	out = make([]domain.RawInputRecord, 0, len(rows))
	for _, r := range rows {
		if r.ProductName == scope.ProductName && r.ProcessName == scope.ProcessName {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		all := make([]domain.RawInputRecord, len(rows))
		copy(all, rows)
		return all, true
	}
	return out, false
}

// Dedupe collapses rows by key, keeping the first row's name, amount and
// unit, in order of first appearance. Rows with a blank key are dropped.
func Dedupe(rows []domain.RawInputRecord, key Key) (options []Option, duplicates int) {
	seen := make(map[string]bool, len(rows))
	options = make([]Option, 0, len(rows))

	for _, r := range rows {
		name := key.Value(r)
		if name == "" {
			continue
		}
		if seen[name] {
			duplicates++
			continue
		}
		seen[name] = true
		options = append(options, Option{
			Name:   name,
			Amount: r.Quantity,
			Unit:   r.Unit,
		})
	}
	return options, duplicates
}

// Service runs the picker filters and logs what they did
type Service struct {
	logger *slog.Logger
}

// NewService creates a new filter service
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WindowOptions returns the product-name picker for a reporting window.
func (s *Service) WindowOptions(rows []domain.RawInputRecord, w domain.ReportingWindow) (*Result, error) {
	matched, err := ByWindow(rows, w)
	if err != nil {
		return nil, err
	}
	options, dupes := Dedupe(matched, KeyProductName)

	result := &Result{
		Options: options,
		Stats: Stats{
			InputCount:        len(rows),
			MatchedCount:      len(matched),
			OutputCount:       len(options),
			DuplicatesRemoved: dupes,
		},
	}

	s.logger.Debug("window filter applied",
		slog.Time("window_start", w.Start),
		slog.Time("window_end", w.End),
		slog.Int("input_count", result.Stats.InputCount),
		slog.Int("matched_count", result.Stats.MatchedCount),
		slog.Int("option_count", result.Stats.OutputCount))

	return result, nil
}

// ScopeOptions returns the material/fuel picker for one product and process.
func (s *Service) ScopeOptions(rows []domain.RawInputRecord, scope Scope) *Result {
	matched, fellBack := ByScope(rows, scope)
	options, dupes := Dedupe(matched, KeyInputName)

	result := &Result{
		Options: options,
		Stats: Stats{
			InputCount:        len(rows),
			MatchedCount:      len(matched),
			OutputCount:       len(options),
			DuplicatesRemoved: dupes,
			FallbackUsed:      fellBack,
		},
	}
	if fellBack {
		result.Stats.MatchedCount = 0
		metrics.IncScopeFallback()
		s.logger.Info("scope filter matched nothing, using all rows",
			slog.String("product_name", scope.ProductName),
			slog.String("process_name", scope.ProcessName),
			slog.Int("row_count", len(rows)))
	}

	s.logger.Debug("scope filter applied",
		slog.String("product_name", scope.ProductName),
		slog.String("process_name", scope.ProcessName),
		slog.Int("option_count", result.Stats.OutputCount),
		slog.Int("duplicates_removed", dupes))

	return result
}
