package engine

import (
	"slices"
	"strings"
)

// Grouping is the per-query aggregation of birthday records: one ListingGroup
// per distinct calendar date, ordered by date index, with an index lookup for
// window scans. It is rebuilt for every command invocation and never shared.
type Grouping struct {
	groups  []ListingGroup
	byIndex map[int]int // date index -> position in groups
}

// Group aggregates records by exact (month, day) equality. Names within a
// group are sorted case-insensitively; ties keep input order. Returns
// ErrInvalidRecord if any record carries an impossible date.
func Group(records []BirthdayRecord) (*Grouping, error) {
	byIndex := make(map[int]int)
	groups := make([]ListingGroup, 0, len(records))

	for _, r := range records {
		idx, err := Index(r.Month, r.Day)
		if err != nil {
			return nil, err
		}
		pos, ok := byIndex[idx]
		if !ok {
			pos = len(groups)
			byIndex[idx] = pos
			groups = append(groups, ListingGroup{Month: r.Month, Day: r.Day, DateIndex: idx})
		}
		groups[pos].Names = append(groups[pos].Names, r.DisplayName)
	}

	slices.SortFunc(groups, func(a, b ListingGroup) int {
		return a.DateIndex - b.DateIndex
	})
	// Positions moved during the sort; rebuild the lookup.
	for i, g := range groups {
		byIndex[g.DateIndex] = i
	}

	for i := range groups {
		slices.SortStableFunc(groups[i].Names, func(a, b string) int {
			return strings.Compare(strings.ToLower(a), strings.ToLower(b))
		})
	}

	return &Grouping{groups: groups, byIndex: byIndex}, nil
}

// Groups returns all groups in calendar order.
func (g *Grouping) Groups() []ListingGroup {
	return g.groups
}

// AtIndex returns the group at the given date index, if any date in the input
// mapped to it. Window scans call this once per scanned slot; empty slots are
// simply skipped.
func (g *Grouping) AtIndex(idx int) (ListingGroup, bool) {
	pos, ok := g.byIndex[idx]
	if !ok {
		return ListingGroup{}, false
	}
	return g.groups[pos], true
}

// Windowed collects the groups hit by a single pass of the scan, in scan
// order. The scan is consumed.
func (g *Grouping) Windowed(scan *WindowScan) []ListingGroup {
	var hits []ListingGroup
	for {
		idx, ok := scan.Next()
		if !ok {
			return hits
		}
		if grp, found := g.AtIndex(idx); found {
			hits = append(hits, grp)
		}
	}
}
