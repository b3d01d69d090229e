// Package stats derives admin-facing summaries and hotspot groupings from
// the SOS event log. All functions are pure and recompute from the full
// event list on every call; nothing here is cached or persisted.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rakshaapp/raksha-agent/internal/models"
)

// gridPrecision is the number of decimal places coordinates are rounded to
// when bucketing events. Three decimals is roughly a 111m cell at the
// equator, coarse enough to absorb GPS jitter.
const gridPrecision = 3

// Summarize computes the status breakdown of events. Today counts events
// whose creation date falls on the same local calendar day as now.
func Summarize(events []models.SOSEvent, now time.Time) models.Summary {
	summary := models.Summary{Total: len(events)}

	y, m, d := now.Date()
	for _, e := range events {
		switch e.Status {
		case models.StatusActive:
			summary.Active++
		case models.StatusResolved:
			summary.Resolved++
		case models.StatusFalseAlarm:
			summary.FalseAlarm++
		}

		ey, em, ed := e.CreatedAt.In(now.Location()).Date()
		if ey == y && em == m && ed == d {
			summary.Today++
		}
	}
	return summary
}

// GroupByLocation buckets events into grid cells of rounded coordinates and
// returns the groups sorted by count descending. The sort is stable: groups
// with equal counts keep the order in which they were first encountered, and
// events inside a group keep their order from the source list.
func GroupByLocation(events []models.SOSEvent) []models.LocationGroup {
	index := make(map[string]int)
	var groups []models.LocationGroup

	for _, e := range events {
		lat := roundCoord(e.Location.Latitude)
		lon := roundCoord(e.Location.Longitude)
		key := fmt.Sprintf("%.3f,%.3f", lat, lon)

		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, models.LocationGroup{
				Latitude:  lat,
				Longitude: lon,
				Label:     e.Location.String(),
			})
		}
		groups[i].Count++
		groups[i].Events = append(groups[i].Events, e)
	}

	for i := range groups {
		groups[i].Risk = RiskLabel(groups[i].Count)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups
}

// RiskLabel maps a group's event count to its risk bucket.
func RiskLabel(count int) string {
	switch {
	case count >= 10:
		return "High"
	case count >= 5:
		return "Medium"
	case count >= 2:
		return "Low"
	default:
		return "Safe"
	}
}

// NearbyHelpCenters filters centers to those within radiusKm of from,
// nearest first.
func NearbyHelpCenters(centers []models.HelpCenter, from models.LocationSample, radiusKm float64) []models.HelpCenter {
	type scored struct {
		center models.HelpCenter
		dist   float64
	}
	var within []scored
	for _, c := range centers {
		d := from.DistanceKm(models.LocationSample{Latitude: c.Latitude, Longitude: c.Longitude})
		if d <= radiusKm {
			within = append(within, scored{center: c, dist: d})
		}
	}
	sort.SliceStable(within, func(i, j int) bool { return within[i].dist < within[j].dist })

	out := make([]models.HelpCenter, 0, len(within))
	for _, s := range within {
		out = append(out, s.center)
	}
	return out
}

func roundCoord(v float64) float64 {
	factor := math.Pow(10, gridPrecision)
	return math.Round(v*factor) / factor
}
