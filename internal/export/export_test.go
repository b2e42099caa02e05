package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-delivery-analytics/internal/analytics"
	"go-delivery-analytics/internal/model"
)

func sampleResult() *analytics.Result {
	tickets := []model.Ticket{
		{ID: "MADRID|1", Facility: "MADRID", FacilityGroup: "MA", Nomenclature: "H-25", Group: "H-25",
			CustomerID: "B1", CustomerName: "CLIENTE B1", Date: "2024-03-01", Quantity: 6},
		{ID: "SEVILLA|2", Facility: "SEVILLA", FacilityGroup: "SE", Nomenclature: "H-30", Group: "H-30",
			CustomerID: "B2", CustomerName: "CLIENTE B2", Date: "2024-03-02", Quantity: 9},
	}
	return analytics.Compute(tickets, model.Filter{})
}

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	results, err := NewManager(dir).WriteSnapshot("run-1", sampleResult())
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.True(t, r.Success, r.Path)
	}

	runDir := filepath.Join(dir, "run-1")

	var snapshot analytics.Result
	data, err := os.ReadFile(filepath.Join(runDir, "snapshot.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Equal(t, 2, snapshot.FilteredCount)
	assert.InDelta(t, 15, snapshot.TotalVolume, 1e-9)

	f, err := os.Open(filepath.Join(runDir, "pivot.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// header + two dates + totals row
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"date", "MADRID", "SEVILLA", "total"}, rows[0])
	assert.Equal(t, []string{"total", "6", "9", "15"}, rows[3])

	for _, name := range []string{"facilities.csv", "customers.csv", "days.csv"} {
		_, err := os.Stat(filepath.Join(runDir, name))
		assert.NoError(t, err, name)
	}
}
