// Package export writes aggregate snapshots to files for downstream use:
// one JSON file with the full basket plus CSV tables for the common views.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go-delivery-analytics/internal/analytics"
)

// Result reports one export operation.
type Result struct {
	Type       string    `json:"type"` // "json" or "csv"
	Path       string    `json:"path"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	ExportedAt time.Time `json:"exported_at"`
}

// Manager organizes snapshot exports under a base directory.
type Manager struct {
	BaseDir string
}

func NewManager(baseDir string) *Manager {
	return &Manager{BaseDir: baseDir}
}

// WriteSnapshot writes the full snapshot as JSON plus CSV tables into a
// per-run subdirectory. Individual file failures are reported per file, not
// fatal to the whole export.
func (m *Manager) WriteSnapshot(runID string, res *analytics.Result) ([]Result, error) {
	dir := filepath.Join(m.BaseDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var results []Result
	results = append(results, m.writeJSON(filepath.Join(dir, "snapshot.json"), res))
	results = append(results, m.writeFacilitiesCSV(filepath.Join(dir, "facilities.csv"), res))
	results = append(results, m.writeCustomersCSV(filepath.Join(dir, "customers.csv"), res))
	results = append(results, m.writeDaysCSV(filepath.Join(dir, "days.csv"), res))
	results = append(results, m.writePivotCSV(filepath.Join(dir, "pivot.csv"), res))

	ok := 0
	for _, r := range results {
		if r.Success {
			ok++
		}
	}
	fmt.Printf("💾 Export: %d/%d files written to %s\n", ok, len(results), dir)
	return results, nil
}

func (m *Manager) writeJSON(path string, res *analytics.Result) Result {
	f, err := os.Create(path)
	if err != nil {
		return failure("json", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return failure("json", path, err)
	}
	return success("json", path)
}

func (m *Manager) writeFacilitiesCSV(path string, res *analytics.Result) Result {
	rows := [][]string{{"facility", "volume", "trips", "first_date", "last_date"}}
	for _, facility := range res.Pivot.Facilities {
		s := res.ByFacility[facility]
		if s == nil {
			continue
		}
		rows = append(rows, []string{
			facility, formatFloat(s.Volume), strconv.Itoa(s.Trips), s.FirstDate, s.LastDate,
		})
	}
	return writeCSV(path, rows)
}

func (m *Manager) writeCustomersCSV(path string, res *analytics.Result) Result {
	rows := [][]string{{"rank", "customer", "name", "volume", "trips"}}
	for i, r := range res.TopCustomersByVolume {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), r.Customer, r.Name, formatFloat(r.Volume), strconv.Itoa(r.Trips),
		})
	}
	return writeCSV(path, rows)
}

func (m *Manager) writeDaysCSV(path string, res *analytics.Result) Result {
	rows := [][]string{{"date", "volume"}}
	for _, p := range res.DaySeries {
		rows = append(rows, []string{p.Label, formatFloat(p.Value)})
	}
	return writeCSV(path, rows)
}

func (m *Manager) writePivotCSV(path string, res *analytics.Result) Result {
	headerRow := append([]string{"date"}, res.Pivot.Facilities...)
	headerRow = append(headerRow, "total")
	rows := [][]string{headerRow}
	for _, date := range res.Pivot.Dates {
		row := make([]string, 0, len(headerRow))
		row = append(row, date)
		for _, facility := range res.Pivot.Facilities {
			row = append(row, formatFloat(res.Pivot.Cells[date][facility]))
		}
		row = append(row, formatFloat(res.Pivot.RowTotals[date]))
		rows = append(rows, row)
	}
	totals := make([]string, 0, len(headerRow))
	totals = append(totals, "total")
	for _, facility := range res.Pivot.Facilities {
		totals = append(totals, formatFloat(res.Pivot.ColTotals[facility]))
	}
	totals = append(totals, formatFloat(res.Pivot.GrandTotal))
	rows = append(rows, totals)
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) Result {
	f, err := os.Create(path)
	if err != nil {
		return failure("csv", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return failure("csv", path, err)
	}
	return success("csv", path)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func success(kind, path string) Result {
	return Result{Type: kind, Path: path, Success: true, ExportedAt: time.Now().UTC()}
}

func failure(kind, path string, err error) Result {
	return Result{Type: kind, Path: path, Error: err.Error(), ExportedAt: time.Now().UTC()}
}
