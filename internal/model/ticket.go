package model

// Ticket is the normalized representation of one delivery ticket after
// mapping. Immutable once created: the ingestor builds it, the session
// stores it, the analytics engine only reads it.
type Ticket struct {
	// ID is the composite identity key "facility|ticketNumber", unique
	// across the ingested set.
	ID            string `json:"id"`
	Facility      string `json:"facility"`
	FacilityGroup string `json:"facilityGroup"` // uppercase 2-char prefix of the facility, "OT" fallback
	Group         string `json:"group"`         // "{headerCode}-{resistanceCode}"
	Nomenclature  string `json:"nomenclature"`
	Item          string `json:"item"`
	Quality       string `json:"quality"`
	Packaging     string `json:"packaging"` // exposure sub-fields joined with "+"
	CustomerID    string `json:"customerId"`
	CustomerName  string `json:"customerName"`
	Plate         string `json:"plate"` // alphanumeric uppercase only
	Carrier       string `json:"carrier"`

	// Date is the dosing day in ISO form (YYYY-MM-DD, no time component).
	// Lexicographic order equals chronological order.
	Date string `json:"date"`

	Quantity         float64 `json:"quantity"` // billable volume, non-negative
	WaterCementRatio float64 `json:"waterCementRatio"`
	CementContent    float64 `json:"cementContent"`

	// Timing metrics are present only when both source timestamps were
	// valid and chronologically ordered.
	TravelMinutes *float64 `json:"travelMinutes,omitempty"`
	UnloadMinutes *float64 `json:"unloadMinutes,omitempty"`
	LateUnload    *bool    `json:"lateUnload,omitempty"`
}
