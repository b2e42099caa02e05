package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-delivery-analytics/internal/model"
)

func ticket(facility, num, date, customer string, qty float64) model.Ticket {
	return model.Ticket{
		ID:            facility + "|" + num,
		Facility:      facility,
		FacilityGroup: facility[:2],
		Group:         "H-25",
		Nomenclature:  "H-25",
		CustomerID:    customer,
		CustomerName:  "CLIENTE " + customer,
		Plate:         "1234ABC",
		Carrier:       "TRANSPORTES NORTE",
		Date:          date,
		Quantity:      qty,
	}
}

func TestCompute(t *testing.T) {
	t.Run("all views add up to the same total", func(t *testing.T) {
		tickets := []model.Ticket{
			ticket("MADRID", "1", "2024-03-01", "B1", 6),
			ticket("MADRID", "2", "2024-03-01", "B1", 9),
			ticket("SEVILLA", "3", "2024-03-02", "B2", 7.5),
			ticket("SEVILLA", "4", "2024-03-05", "B3", 8),
		}
		res := Compute(tickets, model.Filter{})

		assert.Equal(t, 4, res.FilteredCount)
		assert.InDelta(t, 30.5, res.TotalVolume, 1e-9)

		var byFacility, byGroup, byDay, byCustomer float64
		for _, s := range res.ByFacility {
			byFacility += s.Volume
		}
		for _, v := range res.ByFacilityGroup {
			byGroup += v
		}
		for _, v := range res.ByDay {
			byDay += v
		}
		for _, s := range res.ByCustomer {
			byCustomer += s.Volume
		}
		assert.InDelta(t, res.TotalVolume, byFacility, 1e-9)
		assert.InDelta(t, res.TotalVolume, byGroup, 1e-9)
		assert.InDelta(t, res.TotalVolume, byDay, 1e-9)
		assert.InDelta(t, res.TotalVolume, byCustomer, 1e-9)

		// Pivot totals are derived from the same cross map.
		assert.InDelta(t, res.TotalVolume, res.Pivot.GrandTotal, 1e-9)
		var rows, cols float64
		for _, v := range res.Pivot.RowTotals {
			rows += v
		}
		for _, v := range res.Pivot.ColTotals {
			cols += v
		}
		assert.InDelta(t, res.Pivot.GrandTotal, rows, 1e-9)
		assert.InDelta(t, res.Pivot.GrandTotal, cols, 1e-9)

		assert.Equal(t, []string{"2024-03-01", "2024-03-02", "2024-03-05"}, res.Pivot.Dates)
		assert.Equal(t, []string{"MADRID", "SEVILLA"}, res.Pivot.Facilities)
	})

	t.Run("applies the filter before every aggregate", func(t *testing.T) {
		tickets := []model.Ticket{
			ticket("MADRID", "1", "2024-03-01", "B1", 6),
			ticket("SEVILLA", "2", "2024-03-02", "B2", 7),
			ticket("MADRID", "3", "2024-04-01", "B1", 9),
		}
		res := Compute(tickets, model.Filter{
			Facilities: []string{"MADRID"},
			EndDate:    "2024-03-31",
		})
		assert.Equal(t, 1, res.FilteredCount)
		assert.InDelta(t, 6, res.TotalVolume, 1e-9)
		assert.Len(t, res.ByFacility, 1)
		assert.Len(t, res.ByCustomer, 1)
		assert.Contains(t, res.ByFacility, "MADRID")
	})

	t.Run("restricting a filter never grows the result", func(t *testing.T) {
		tickets := []model.Ticket{
			ticket("MADRID", "1", "2024-03-01", "B1", 6),
			ticket("SEVILLA", "2", "2024-03-02", "B2", 7),
			ticket("MADRID", "3", "2024-04-01", "B1", 9),
		}
		broad := Compute(tickets, model.Filter{Facilities: []string{"MADRID", "SEVILLA"}})
		narrow := Compute(tickets, model.Filter{Facilities: []string{"MADRID"}})

		assert.LessOrEqual(t, narrow.FilteredCount, broad.FilteredCount)
		assert.LessOrEqual(t, narrow.TotalVolume, broad.TotalVolume)
	})

	t.Run("finds the peak day", func(t *testing.T) {
		tickets := []model.Ticket{
			ticket("MADRID", "1", "2024-03-01", "B1", 6),
			ticket("MADRID", "2", "2024-03-02", "B1", 4),
			ticket("MADRID", "3", "2024-03-02", "B1", 4),
		}
		res := Compute(tickets, model.Filter{})
		require.NotNil(t, res.MaxDay)
		assert.Equal(t, "02/03/2024", res.MaxDay.Date)
		assert.InDelta(t, 8, res.MaxDay.Value, 1e-9)
	})

	t.Run("averages cement over non-zero samples only", func(t *testing.T) {
		a := ticket("MADRID", "1", "2024-03-01", "B1", 6)
		a.CementContent = 300
		b := ticket("MADRID", "2", "2024-03-01", "B1", 6)
		b.CementContent = 0
		c := ticket("MADRID", "3", "2024-03-01", "B1", 6)
		c.CementContent = 200

		res := Compute([]model.Ticket{a, b, c}, model.Filter{})
		assert.InDelta(t, 250, res.AverageCement, 1e-9)
		assert.Len(t, res.ByNomenclature["H-25"].CementSamples, 2)
	})

	t.Run("reports zero average cement without samples", func(t *testing.T) {
		res := Compute([]model.Ticket{ticket("MADRID", "1", "2024-03-01", "B1", 6)}, model.Filter{})
		assert.Zero(t, res.AverageCement)
	})

	t.Run("tracks self-consumption by customer name", func(t *testing.T) {
		own := ticket("MADRID", "1", "2024-03-01", "A1", 5)
		own.CustomerName = "GENERAL DE HORMIGONES, S.A. - OBRA PROPIA"
		other := ticket("MADRID", "2", "2024-03-01", "B1", 7)

		res := Compute([]model.Ticket{own, other}, model.Filter{})
		assert.InDelta(t, 5, res.SelfConsumption, 1e-9)
	})

	t.Run("orders the month series chronologically", func(t *testing.T) {
		tickets := []model.Ticket{
			ticket("MADRID", "1", "2024-04-10", "B1", 3),
			ticket("MADRID", "2", "2024-01-15", "B1", 5),
			ticket("MADRID", "3", "2023-12-20", "B1", 2),
		}
		res := Compute(tickets, model.Filter{})
		labels := make([]string, len(res.MonthSeries))
		for i, p := range res.MonthSeries {
			labels[i] = p.Label
		}
		assert.Equal(t, []string{"Dic 2023", "Ene 2024", "Abr 2024"}, labels)
	})

	t.Run("keeps the resistance catalogue per nomenclature", func(t *testing.T) {
		a := ticket("MADRID", "1", "2024-03-01", "B1", 6)
		b := ticket("MADRID", "2", "2024-03-01", "B1", 6)
		b.Group = "H-"
		b.Nomenclature = "H-"

		res := Compute([]model.Ticket{a, b}, model.Filter{})
		assert.Equal(t, []string{"25"}, res.ByNomenclature["H-25"].Resistances)
		assert.Equal(t, []string{"ND"}, res.ByNomenclature["H-"].Resistances)
	})

	t.Run("collects carrier trucks and per-truck volume", func(t *testing.T) {
		a := ticket("MADRID", "1", "2024-03-01", "B1", 6)
		b := ticket("MADRID", "2", "2024-03-01", "B1", 4)
		b.Plate = "5678DEF"

		res := Compute([]model.Ticket{a, b}, model.Filter{})
		cs := res.ByCarrier["TRANSPORTES NORTE"]
		require.NotNil(t, cs)
		assert.Equal(t, []string{"1234ABC", "5678DEF"}, cs.Trucks)
		assert.InDelta(t, 6, cs.TruckVolume["1234ABC"], 1e-9)
		assert.InDelta(t, 4, cs.TruckVolume["5678DEF"], 1e-9)
		assert.Equal(t, 2, res.ByPlate["1234ABC"].Trips+res.ByPlate["5678DEF"].Trips)
	})

	t.Run("tracks technical extremes per facility", func(t *testing.T) {
		travel, unload := 42.0, 18.0
		late := true
		a := ticket("MADRID", "1", "2024-03-01", "B1", 6)
		a.TravelMinutes = &travel
		a.UnloadMinutes = &unload
		a.LateUnload = &late
		b := ticket("MADRID", "2", "2024-03-01", "B1", 6)

		res := Compute([]model.Ticket{a, b}, model.Filter{})
		require.Len(t, res.TechByFacility, 1)
		te := res.TechByFacility[0]
		assert.Equal(t, "MADRID", te.Facility)
		assert.Equal(t, 42.0, te.MaxTravelMinutes)
		assert.Equal(t, 18.0, te.MaxUnloadMinutes)
		assert.Equal(t, 1, te.LateUnloads)
	})
}

func TestRankCustomers(t *testing.T) {
	t.Run("truncates to the ranking length", func(t *testing.T) {
		var tickets []model.Ticket
		for i := 0; i < TopN+2; i++ {
			tickets = append(tickets, ticket("MADRID", fmt.Sprintf("%d", i), "2024-03-01",
				fmt.Sprintf("B%02d", i), float64(i+1)))
		}
		res := Compute(tickets, model.Filter{})
		require.Len(t, res.TopCustomersByVolume, TopN)
		assert.Equal(t, fmt.Sprintf("B%02d", TopN+1), res.TopCustomersByVolume[0].Customer)
		assert.InDelta(t, float64(TopN+2), res.TopCustomersByVolume[0].Volume, 1e-9)
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		tickets := []model.Ticket{
			ticket("MADRID", "1", "2024-03-01", "Z9", 5),
			ticket("MADRID", "2", "2024-03-01", "A1", 5),
		}
		res := Compute(tickets, model.Filter{})
		require.Len(t, res.TopCustomersByVolume, 2)
		assert.Equal(t, "Z9", res.TopCustomersByVolume[0].Customer)
		assert.Equal(t, "A1", res.TopCustomersByVolume[1].Customer)
	})

	t.Run("ranks by volume and trips independently", func(t *testing.T) {
		tickets := []model.Ticket{
			ticket("MADRID", "1", "2024-03-01", "BIG", 100),
			ticket("MADRID", "2", "2024-03-01", "BUSY", 1),
			ticket("MADRID", "3", "2024-03-02", "BUSY", 1),
			ticket("MADRID", "4", "2024-03-03", "BUSY", 1),
		}
		res := Compute(tickets, model.Filter{})
		assert.Equal(t, "BIG", res.TopCustomersByVolume[0].Customer)
		assert.Equal(t, "BUSY", res.TopCustomersByTrips[0].Customer)
		assert.Equal(t, 3, res.TopCustomersByTrips[0].Trips)
	})
}

func TestBuildHeatmap(t *testing.T) {
	t.Run("buckets by ISO week and weekday", func(t *testing.T) {
		tickets := []model.Ticket{
			ticket("MADRID", "1", "2024-01-01", "B1", 6), // Monday, 2024-W01
			ticket("MADRID", "2", "2024-01-07", "B1", 4), // Sunday, same ISO week
			ticket("MADRID", "3", "2024-01-08", "B1", 2), // Monday, 2024-W02
		}
		res := Compute(tickets, model.Filter{})
		require.Len(t, res.Heatmap, 2)

		first := res.Heatmap[0]
		assert.Equal(t, 2024, first.Year)
		assert.Equal(t, 1, first.Week)
		assert.InDelta(t, 6, first.Days[0], 1e-9)
		assert.InDelta(t, 4, first.Days[6], 1e-9)

		assert.Equal(t, 2, res.Heatmap[1].Week)
		assert.InDelta(t, 2, res.Heatmap[1].Days[0], 1e-9)
	})

	t.Run("assigns year-boundary days to their ISO year", func(t *testing.T) {
		// 2023-01-01 is a Sunday inside 2022-W52.
		res := Compute([]model.Ticket{ticket("MADRID", "1", "2023-01-01", "B1", 6)}, model.Filter{})
		require.Len(t, res.Heatmap, 1)
		assert.Equal(t, 2022, res.Heatmap[0].Year)
		assert.Equal(t, 52, res.Heatmap[0].Week)
		assert.InDelta(t, 6, res.Heatmap[0].Days[6], 1e-9)
	})
}

func TestOptions(t *testing.T) {
	tickets := []model.Ticket{
		ticket("SEVILLA", "1", "2024-03-05", "B2", 6),
		ticket("MADRID", "2", "2024-03-01", "B1", 7),
		ticket("MADRID", "3", "2024-03-09", "B1", 8),
	}
	opts := Options(tickets)

	assert.Equal(t, "2024-03-01", opts.MinDate)
	assert.Equal(t, "2024-03-09", opts.MaxDate)
	assert.Equal(t, []string{"MADRID", "SEVILLA"}, opts.Facilities)
	assert.Equal(t, []string{"MA", "SE"}, opts.FacilityGroups)
	require.Len(t, opts.Customers, 2)
	assert.Equal(t, "B1", opts.Customers[0].ID)
	assert.Equal(t, "CLIENTE B1", opts.Customers[0].Name)
}
