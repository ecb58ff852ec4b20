package models

import "strings"

// Service is an entry of the fixed service catalog.
type Service struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ServiceCatalog is the fixed set of services customers can book.
var ServiceCatalog = []Service{
	{ID: "cleaning", Name: "Cleaning", Icon: "broom"},
	{ID: "plumbing", Name: "Plumbing", Icon: "construct"},
	{ID: "electrical", Name: "Electrical", Icon: "flash"},
	{ID: "caregiving", Name: "Caregiving", Icon: "heart"},
	{ID: "handyman", Name: "Handyman", Icon: "hammer"},
	{ID: "outdoor-care", Name: "Outdoor Care", Icon: "leaf"},
}

// LookupService resolves a catalog entry by id or display name, ignoring case.
func LookupService(name string) (Service, bool) {
	name = strings.TrimSpace(name)
	for _, s := range ServiceCatalog {
		if strings.EqualFold(s.ID, name) || strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Service{}, false
}

// NormalizeServices maps every entry to its catalog id and drops duplicates.
// The second result is the first entry that is not in the catalog, if any.
func NormalizeServices(names []string) ([]string, string) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		s, ok := LookupService(n)
		if !ok {
			return nil, n
		}
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		out = append(out, s.ID)
	}
	return out, ""
}
