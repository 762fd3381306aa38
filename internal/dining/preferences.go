package dining

import (
	"strings"

	"fuel-planner/internal/schedule"
)

// WithPreferences derives the per-request view of the dataset. A venue is
// no-go when its name contains any avoid entry, ignoring case. Favorites do
// not change any flag; they are passed through to the generator separately.
func WithPreferences(ds *Dataset, favorites, avoid []string) []schedule.DiningLocation {
	needles := make([]string, 0, len(avoid))
	for _, a := range avoid {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			needles = append(needles, a)
		}
	}

	locs := ds.Locations()
	out := make([]schedule.DiningLocation, len(locs))
	for i, l := range locs {
		name := strings.ToLower(l.Name)
		noGo := false
		for _, n := range needles {
			if strings.Contains(name, n) {
				noGo = true
				break
			}
		}
		out[i] = schedule.DiningLocation{
			Name:        l.Name,
			Description: l.Description,
			IsOnCampus:  l.IsOnCampus,
			NoGo:        noGo,
			OpenWindows: l.OpenWindows,
		}
	}
	return out
}
