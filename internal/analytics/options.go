package analytics

import (
	"sort"

	"go-delivery-analytics/internal/model"
)

// CustomerOption is one selectable customer: tax ID plus display name.
type CustomerOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FilterOptions lists the distinct values of every filterable dimension of
// a record set, for populating multi-select filter controls.
type FilterOptions struct {
	MinDate        string           `json:"minDate"`
	MaxDate        string           `json:"maxDate"`
	Facilities     []string         `json:"facilities"`
	FacilityGroups []string         `json:"facilityGroups"`
	Nomenclatures  []string         `json:"nomenclatures"`
	Carriers       []string         `json:"carriers"`
	Plates         []string         `json:"plates"`
	Customers      []CustomerOption `json:"customers"`
}

// Options scans the record set once and collects the distinct values per
// dimension, sorted for stable presentation.
func Options(tickets []model.Ticket) FilterOptions {
	facilities := make(map[string]struct{})
	groups := make(map[string]struct{})
	noms := make(map[string]struct{})
	carriers := make(map[string]struct{})
	plates := make(map[string]struct{})
	customers := make(map[string]string)

	var opts FilterOptions
	for i := range tickets {
		t := &tickets[i]
		facilities[t.Facility] = struct{}{}
		groups[t.FacilityGroup] = struct{}{}
		noms[t.Nomenclature] = struct{}{}
		carriers[t.Carrier] = struct{}{}
		plates[t.Plate] = struct{}{}
		if _, seen := customers[t.CustomerID]; !seen {
			customers[t.CustomerID] = t.CustomerName
		}
		if opts.MinDate == "" || t.Date < opts.MinDate {
			opts.MinDate = t.Date
		}
		if t.Date > opts.MaxDate {
			opts.MaxDate = t.Date
		}
	}

	opts.Facilities = sortedKeys(facilities)
	opts.FacilityGroups = sortedKeys(groups)
	opts.Nomenclatures = sortedKeys(noms)
	opts.Carriers = sortedKeys(carriers)
	opts.Plates = sortedKeys(plates)
	opts.Customers = make([]CustomerOption, 0, len(customers))
	for id, name := range customers {
		opts.Customers = append(opts.Customers, CustomerOption{ID: id, Name: name})
	}
	sort.Slice(opts.Customers, func(i, j int) bool { return opts.Customers[i].ID < opts.Customers[j].ID })
	return opts
}
