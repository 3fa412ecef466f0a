package analytics

import "time"

const dateLayout = "2006-01-02"

// windowDays is the fixed trailing window the dashboard charts render.
const windowDays = 5

// DailyPoint is one observed or zero-filled calendar day in a chart series.
type DailyPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Densify expands a sparse date/count series into a contiguous 5-day window
// ending at the latest observed date, zero-filling days with no data. ISO
// dates compare lexicographically, so the anchor is found with plain string
// comparison. An empty input anchors the window at today instead.
func Densify(points []DailyPoint) []DailyPoint {
	anchor := time.Now().UTC()
	if len(points) > 0 {
		latest := points[0].Date
		for _, p := range points[1:] {
			if p.Date > latest {
				latest = p.Date
			}
		}
		if parsed, err := time.Parse(dateLayout, latest); err == nil {
			anchor = parsed
		}
	}

	byDate := make(map[string]int, len(points))
	for _, p := range points {
		byDate[p.Date] = p.Count
	}

	out := make([]DailyPoint, 0, windowDays)
	for i := windowDays - 1; i >= 0; i-- {
		date := anchor.AddDate(0, 0, -i).Format(dateLayout)
		out = append(out, DailyPoint{Date: date, Count: byDate[date]})
	}
	return out
}
