package model

// Filter is the set of active inclusion constraints applied before
// aggregation. Empty slices and empty date bounds mean "no constraint".
type Filter struct {
	StartDate string `json:"startDate,omitempty"` // inclusive, ISO YYYY-MM-DD, "" = unbounded
	EndDate   string `json:"endDate,omitempty"`   // inclusive, ISO YYYY-MM-DD, "" = unbounded

	Facilities     []string `json:"facilities,omitempty"`
	FacilityGroups []string `json:"facilityGroups,omitempty"`
	Nomenclatures  []string `json:"nomenclatures,omitempty"`
	Carriers       []string `json:"carriers,omitempty"`
	Plates         []string `json:"plates,omitempty"`
	Customers      []string `json:"customers,omitempty"`
}

// Match reports whether a ticket satisfies the date bounds and every
// non-empty inclusion list.
func (f Filter) Match(t *Ticket) bool {
	if f.StartDate != "" && t.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && t.Date > f.EndDate {
		return false
	}
	if !member(f.Facilities, t.Facility) {
		return false
	}
	if !member(f.FacilityGroups, t.FacilityGroup) {
		return false
	}
	if !member(f.Nomenclatures, t.Nomenclature) {
		return false
	}
	if !member(f.Carriers, t.Carrier) {
		return false
	}
	if !member(f.Plates, t.Plate) {
		return false
	}
	if !member(f.Customers, t.CustomerID) {
		return false
	}
	return true
}

// member treats an empty list as "no constraint".
func member(list []string, v string) bool {
	if len(list) == 0 {
		return true
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
