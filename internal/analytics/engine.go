package analytics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"go-delivery-analytics/internal/model"
)

// TopN is the length of the customer rankings.
const TopN = 10

// selfConsumptionNeedle marks tickets delivered to the operator itself.
const selfConsumptionNeedle = "GENERAL DE HORMIGONES, S.A."

// monthNames are the display month labels, indexed 0-11.
var monthNames = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

var monthIndex = func() map[string]int {
	m := make(map[string]int, 12)
	for i, n := range monthNames {
		m[n] = i
	}
	return m
}()

// Compute produces the complete aggregate basket for one filtered subset in
// a single linear pass over the tickets. It is a pure function: the ticket
// slice is only read, and every derived structure in the Result shares the
// one pass, so the views are internally consistent by construction.
func Compute(tickets []model.Ticket, f model.Filter) *Result {
	res := &Result{
		ByFacility:      make(map[string]*FacilityStat),
		ByFacilityGroup: make(map[string]float64),
		ByNomenclature:  make(map[string]*NomenclatureStat),
		ByCarrier:       make(map[string]*CarrierStat),
		ByPlate:         make(map[string]*PlateStat),
		ByCustomer:      make(map[string]*CustomerStat),
		ByDay:           make(map[string]float64),
	}

	cells := make(map[string]map[string]float64) // date → facility → volume
	byMonth := make(map[string]float64)
	tech := make(map[string]*FacilityTech)
	carrierTrucks := make(map[string]map[string]struct{})
	nomResistances := make(map[string]map[string]struct{})
	customerOrder := make([]string, 0, 64)

	var totalCement float64
	var cementCount int
	var maxDayValue float64
	var maxDayDate string

	for i := range tickets {
		t := &tickets[i]
		if !f.Match(t) {
			continue
		}
		res.FilteredCount++
		res.TotalVolume += t.Quantity

		// Facility and facility group
		fs := res.ByFacility[t.Facility]
		if fs == nil {
			fs = &FacilityStat{FirstDate: t.Date, LastDate: t.Date}
			res.ByFacility[t.Facility] = fs
		}
		fs.Volume += t.Quantity
		fs.Trips++
		if t.Date < fs.FirstDate {
			fs.FirstDate = t.Date
		}
		if t.Date > fs.LastDate {
			fs.LastDate = t.Date
		}
		res.ByFacilityGroup[t.FacilityGroup] += t.Quantity

		// Day sum and pivot cross map
		res.ByDay[t.Date] += t.Quantity
		row := cells[t.Date]
		if row == nil {
			row = make(map[string]float64)
			cells[t.Date] = row
		}
		row[t.Facility] += t.Quantity
		if res.ByDay[t.Date] > maxDayValue {
			maxDayValue = res.ByDay[t.Date]
			maxDayDate = t.Date
		}

		// Month bucket
		byMonth[monthKey(t.Date)] += t.Quantity

		// Nomenclature and cement distribution
		ns := res.ByNomenclature[t.Nomenclature]
		if ns == nil {
			ns = &NomenclatureStat{}
			res.ByNomenclature[t.Nomenclature] = ns
			nomResistances[t.Nomenclature] = make(map[string]struct{})
		}
		ns.Volume += t.Quantity
		nomResistances[t.Nomenclature][resistanceOf(t.Group)] = struct{}{}
		if t.CementContent > 0 {
			ns.CementSamples = append(ns.CementSamples, t.CementContent)
			totalCement += t.CementContent
			cementCount++
		}

		// Self-consumption
		if strings.Contains(t.CustomerName, selfConsumptionNeedle) {
			res.SelfConsumption += t.Quantity
		}

		// Carrier and plate
		cs := res.ByCarrier[t.Carrier]
		if cs == nil {
			cs = &CarrierStat{TruckVolume: make(map[string]float64)}
			res.ByCarrier[t.Carrier] = cs
			carrierTrucks[t.Carrier] = make(map[string]struct{})
		}
		cs.Volume += t.Quantity
		cs.Trips++
		carrierTrucks[t.Carrier][t.Plate] = struct{}{}
		cs.TruckVolume[t.Plate] += t.Quantity

		ps := res.ByPlate[t.Plate]
		if ps == nil {
			ps = &PlateStat{}
			res.ByPlate[t.Plate] = ps
		}
		ps.Volume += t.Quantity
		ps.Trips++

		// Customer
		us := res.ByCustomer[t.CustomerID]
		if us == nil {
			us = &CustomerStat{Name: t.CustomerName, FirstDate: t.Date, LastDate: t.Date}
			res.ByCustomer[t.CustomerID] = us
			customerOrder = append(customerOrder, t.CustomerID)
		}
		us.Volume += t.Quantity
		us.Trips++
		if t.Date < us.FirstDate {
			us.FirstDate = t.Date
		}
		if t.Date > us.LastDate {
			us.LastDate = t.Date
		}

		// Technical extremes
		te := tech[t.Facility]
		if te == nil {
			te = &FacilityTech{Facility: t.Facility}
			tech[t.Facility] = te
		}
		if t.TravelMinutes != nil && *t.TravelMinutes > te.MaxTravelMinutes {
			te.MaxTravelMinutes = *t.TravelMinutes
		}
		if t.UnloadMinutes != nil && *t.UnloadMinutes > te.MaxUnloadMinutes {
			te.MaxUnloadMinutes = *t.UnloadMinutes
		}
		if t.LateUnload != nil && *t.LateUnload {
			te.LateUnloads++
		}
	}

	// Post-pass derivations share the accumulated state.
	for nom, set := range nomResistances {
		res.ByNomenclature[nom].Resistances = sortedKeys(set)
	}
	for carrier, set := range carrierTrucks {
		res.ByCarrier[carrier].Trucks = sortedKeys(set)
	}
	res.UniqueNomenclatures = len(res.ByNomenclature)
	if cementCount > 0 {
		res.AverageCement = totalCement / float64(cementCount)
	}
	if maxDayDate != "" {
		res.MaxDay = &DayPeak{Date: displayDate(maxDayDate), Value: maxDayValue}
	}

	res.DaySeries = daySeries(res.ByDay)
	res.MonthSeries = monthSeries(byMonth)
	res.Pivot = buildPivot(cells)
	res.TopCustomersByVolume = rankCustomers(res.ByCustomer, customerOrder, func(a, b *CustomerStat) bool {
		return a.Volume > b.Volume
	})
	res.TopCustomersByTrips = rankCustomers(res.ByCustomer, customerOrder, func(a, b *CustomerStat) bool {
		return a.Trips > b.Trips
	})
	res.Heatmap = buildHeatmap(res.ByDay)
	res.TechByFacility = sortTech(tech)
	return res
}

// monthKey buckets an ISO day into its display month label ("Ene 2024").
func monthKey(isoDate string) string {
	year := isoDate[:4]
	idx, _ := strconv.Atoi(isoDate[5:7])
	if idx < 1 || idx > 12 {
		return isoDate
	}
	return monthNames[idx-1] + " " + year
}

// resistanceOf extracts the resistance part of a "{header}-{resistance}"
// group code; everything after the first dash, "ND" when empty.
func resistanceOf(group string) string {
	_, rest, found := strings.Cut(group, "-")
	if !found || rest == "" {
		return "ND"
	}
	return rest
}

// displayDate renders an ISO day as DD/MM/YYYY.
func displayDate(isoDate string) string {
	parts := strings.Split(isoDate, "-")
	if len(parts) != 3 {
		return isoDate
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

func daySeries(byDay map[string]float64) []SeriesPoint {
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	series := make([]SeriesPoint, len(days))
	for i, d := range days {
		series[i] = SeriesPoint{Label: displayDate(d), Value: byDay[d]}
	}
	return series
}

// monthSeries orders the month buckets chronologically. The labels do not
// sort lexicographically, so each one is parsed back through the month-name
// index.
func monthSeries(byMonth map[string]float64) []SeriesPoint {
	labels := make([]string, 0, len(byMonth))
	for label := range byMonth {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return monthOrdinal(labels[i]) < monthOrdinal(labels[j])
	})
	series := make([]SeriesPoint, len(labels))
	for i, label := range labels {
		series[i] = SeriesPoint{Label: label, Value: byMonth[label]}
	}
	return series
}

func monthOrdinal(label string) int {
	name, yearStr, found := strings.Cut(label, " ")
	if !found {
		return 0
	}
	year, _ := strconv.Atoi(yearStr)
	return year*12 + monthIndex[name]
}

func buildPivot(cells map[string]map[string]float64) Pivot {
	p := Pivot{
		Cells:     cells,
		RowTotals: make(map[string]float64, len(cells)),
		ColTotals: make(map[string]float64),
	}
	facilities := make(map[string]struct{})
	for date, row := range cells {
		p.Dates = append(p.Dates, date)
		for facility, v := range row {
			facilities[facility] = struct{}{}
			p.RowTotals[date] += v
			p.ColTotals[facility] += v
			p.GrandTotal += v
		}
	}
	sort.Strings(p.Dates)
	p.Facilities = sortedKeys(facilities)
	return p
}

// rankCustomers derives a top-N ranking. The stable sort over the
// insertion-ordered key list makes ties keep original key order.
func rankCustomers(byCustomer map[string]*CustomerStat, order []string, less func(a, b *CustomerStat) bool) []CustomerRank {
	keys := make([]string, len(order))
	copy(keys, order)
	sort.SliceStable(keys, func(i, j int) bool {
		return less(byCustomer[keys[i]], byCustomer[keys[j]])
	})
	if len(keys) > TopN {
		keys = keys[:TopN]
	}
	ranks := make([]CustomerRank, len(keys))
	for i, k := range keys {
		s := byCustomer[k]
		ranks[i] = CustomerRank{Customer: k, Name: s.Name, Volume: s.Volume, Trips: s.Trips}
	}
	return ranks
}

// buildHeatmap re-buckets the per-day sums by ISO week (week 1 holds the
// year's first Thursday) and day of week (Monday=0..Sunday=6).
func buildHeatmap(byDay map[string]float64) []WeekRow {
	type weekKey struct{ year, week int }
	weeks := make(map[weekKey]*WeekRow)
	for day, v := range byDay {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		year, week := t.ISOWeek()
		dow := (int(t.Weekday()) + 6) % 7
		k := weekKey{year, week}
		row := weeks[k]
		if row == nil {
			row = &WeekRow{Year: year, Week: week}
			weeks[k] = row
		}
		row.Days[dow] += v
	}
	out := make([]WeekRow, 0, len(weeks))
	for _, row := range weeks {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Week < out[j].Week
	})
	return out
}

func sortTech(tech map[string]*FacilityTech) []FacilityTech {
	out := make([]FacilityTech, 0, len(tech))
	for _, te := range tech {
		out = append(out, *te)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Facility < out[j].Facility })
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
