package metrics

import (
	"fmt"
	"time"

	"github.com/jchevalier/fundsim/internal/domain"
)

// PlotKind selects which derived series a plot shows.
type PlotKind string

const (
	// PlotCumulativeReturn is the compounded growth of 1 unit,
	// minus 1.
	PlotCumulativeReturn PlotKind = "return"

	// PlotDrawdown is the distance below the running maximum of the
	// compounded series.
	PlotDrawdown PlotKind = "drawdown"
)

// ParsePlotKind validates a plot type string from the outside.
func ParsePlotKind(s string) (PlotKind, error) {
	switch PlotKind(s) {
	case PlotCumulativeReturn, PlotDrawdown:
		return PlotKind(s), nil
	}
	return "", fmt.Errorf("unknown plot type %q", s)
}

// Point is one point of a plot series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// PlotSeries derives the requested series from daily returns, filtered
// to [start, end] (either bound may be nil for "unbounded"). Filtering
// happens before compounding, so the plotted series always starts at
// zero on its first covered day.
func PlotSeries(series []domain.DailyReturn, kind PlotKind, start, end *time.Time) ([]Point, error) {
	filtered := make([]domain.DailyReturn, 0, len(series))
	for _, r := range series {
		if start != nil && r.Date.Before(*start) {
			continue
		}
		if end != nil && r.Date.After(*end) {
			continue
		}
		filtered = append(filtered, r)
	}

	points := make([]Point, 0, len(filtered))
	switch kind {
	case PlotCumulativeReturn:
		cumulative := 1.0
		for _, r := range filtered {
			cumulative *= 1 + r.Value
			points = append(points, Point{Date: r.Date, Value: cumulative - 1})
		}
	case PlotDrawdown:
		cumulative := 1.0
		runningMax := 1.0
		for _, r := range filtered {
			cumulative *= 1 + r.Value
			if cumulative > runningMax {
				runningMax = cumulative
			}
			points = append(points, Point{Date: r.Date, Value: cumulative/runningMax - 1})
		}
	default:
		return nil, fmt.Errorf("unknown plot type %q", string(kind))
	}

	return points, nil
}
