package analytics

// FacilityStat is the per-facility running aggregate.
type FacilityStat struct {
	Volume    float64 `json:"volume"`
	Trips     int     `json:"trips"`
	FirstDate string  `json:"firstDate"`
	LastDate  string  `json:"lastDate"`
}

// CarrierStat aggregates one carrier, including its distinct vehicles and
// the per-vehicle volume detail.
type CarrierStat struct {
	Volume      float64            `json:"volume"`
	Trips       int                `json:"trips"`
	Trucks      []string           `json:"trucks"`
	TruckVolume map[string]float64 `json:"truckVolume"`
}

// PlateStat aggregates one vehicle plate.
type PlateStat struct {
	Volume float64 `json:"volume"`
	Trips  int     `json:"trips"`
}

// CustomerStat aggregates one customer (keyed by tax ID).
type CustomerStat struct {
	Name      string  `json:"name"`
	Volume    float64 `json:"volume"`
	Trips     int     `json:"trips"`
	FirstDate string  `json:"firstDate"`
	LastDate  string  `json:"lastDate"`
}

// NomenclatureStat aggregates one nomenclature, carrying the cement-content
// samples for distribution display.
type NomenclatureStat struct {
	Volume        float64   `json:"volume"`
	Resistances   []string  `json:"resistances"`
	CementSamples []float64 `json:"cementSamples"`
}

// FacilityTech holds the per-facility technical extremes.
type FacilityTech struct {
	Facility         string  `json:"facility"`
	MaxTravelMinutes float64 `json:"maxTravelMinutes"`
	MaxUnloadMinutes float64 `json:"maxUnloadMinutes"`
	LateUnloads      int     `json:"lateUnloads"`
}

// SeriesPoint is one labeled value of a time series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// DayPeak is the single busiest day of the filtered subset.
type DayPeak struct {
	Date  string  `json:"date"` // DD/MM/YYYY display form
	Value float64 `json:"value"`
}

// Pivot is the calendar grid: date × facility → volume, with row, column
// and grand totals derived from the same cross map.
type Pivot struct {
	Dates      []string                      `json:"dates"`      // sorted ascending
	Facilities []string                      `json:"facilities"` // sorted ascending
	Cells      map[string]map[string]float64 `json:"cells"`      // date → facility → volume
	RowTotals  map[string]float64            `json:"rowTotals"`  // per date
	ColTotals  map[string]float64            `json:"colTotals"`  // per facility
	GrandTotal float64                       `json:"grandTotal"`
}

// CustomerRank is one entry of a top-N customer ranking.
type CustomerRank struct {
	Customer string  `json:"customer"`
	Name     string  `json:"name"`
	Volume   float64 `json:"volume"`
	Trips    int     `json:"trips"`
}

// WeekRow is one row of the day-of-week × ISO-week heatmap. Days are
// indexed Monday=0..Sunday=6.
type WeekRow struct {
	Year int        `json:"year"`
	Week int        `json:"week"`
	Days [7]float64 `json:"days"`
}

// Result is the complete aggregate snapshot of one engine run over one
// filtered subset. Produced atomically, never mutated after it is handed
// out.
type Result struct {
	FilteredCount       int     `json:"filteredCount"`
	TotalVolume         float64 `json:"totalVolume"`
	SelfConsumption     float64 `json:"selfConsumption"`
	AverageCement       float64 `json:"averageCement"`
	UniqueNomenclatures int     `json:"uniqueNomenclatures"`
	MaxDay              *DayPeak `json:"maxDay,omitempty"`

	ByFacility      map[string]*FacilityStat     `json:"byFacility"`
	ByFacilityGroup map[string]float64           `json:"byFacilityGroup"`
	ByNomenclature  map[string]*NomenclatureStat `json:"byNomenclature"`
	ByCarrier       map[string]*CarrierStat      `json:"byCarrier"`
	ByPlate         map[string]*PlateStat        `json:"byPlate"`
	ByCustomer      map[string]*CustomerStat     `json:"byCustomer"`

	ByDay       map[string]float64 `json:"byDay"`
	DaySeries   []SeriesPoint      `json:"daySeries"`   // DD/MM/YYYY labels, ascending
	MonthSeries []SeriesPoint      `json:"monthSeries"` // "Ene 2024" labels, chronological

	Pivot Pivot `json:"pivot"`

	TopCustomersByVolume []CustomerRank `json:"topCustomersByVolume"`
	TopCustomersByTrips  []CustomerRank `json:"topCustomersByTrips"`

	Heatmap        []WeekRow      `json:"heatmap"`
	TechByFacility []FacilityTech `json:"techByFacility"`
}
