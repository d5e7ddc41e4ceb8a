// Package pricing prepares an asset's daily USD price series for valuation.
package pricing

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"coin-wallet-ledger/internal/domain"
)

// ErrDuplicateDate is returned when a series has two points on one day.
var ErrDuplicateDate = errors.New("duplicate price date")

const day = 24 * time.Hour

// Sort orders points by date ASC and rejects duplicate days.
func Sort(points []*domain.PricePoint) error {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	for i := 1; i < len(points); i++ {
		if points[i].Date.Equal(points[i-1].Date) {
			return fmt.Errorf("%w: %s", ErrDuplicateDate, points[i].Date.Format(time.DateOnly))
		}
	}
	return nil
}

// RemoveSingleDayDips drops points whose price fell below dipRatio of the previous
// point while the next point recovered above recoveryRatio of the previous one.
// Dips are detected against the input series, so two adjacent dips are judged independently.
// Points must be sorted. Returns the kept points and the number removed.
func RemoveSingleDayDips(points []*domain.PricePoint, dipRatio, recoveryRatio float64) ([]*domain.PricePoint, int) {
	out := make([]*domain.PricePoint, 0, len(points))
	removed := 0
	for i, p := range points {
		if i > 0 && i < len(points)-1 {
			prev, next := points[i-1].Price, points[i+1].Price
			if prev > 0 && p.Price/prev < dipRatio && next/prev > recoveryRatio {
				removed++
				continue
			}
		}
		out = append(out, p)
	}
	return out, removed
}

// FillGaps forward-fills missing days from the first point through the later of the last
// point and through. Filled points are marked imputed and DaysImputed counts the
// consecutive imputed days. Points must be sorted.
func FillGaps(points []*domain.PricePoint, through time.Time) []*domain.PricePoint {
	if len(points) == 0 {
		return nil
	}
	through = domain.TruncateDay(through)
	last := points[len(points)-1].Date
	if through.Before(last) {
		through = last
	}

	out := make([]*domain.PricePoint, 0, len(points))
	next := 0
	var prev *domain.PricePoint
	for d := points[0].Date; !d.After(through); d = d.Add(day) {
		if next < len(points) && points[next].Date.Equal(d) {
			p := *points[next]
			if !p.Imputed {
				p.DaysImputed = 0
			}
			out = append(out, &p)
			prev = &p
			next++
			continue
		}
		filled := &domain.PricePoint{
			AssetID:     prev.AssetID,
			Date:        d,
			Price:       prev.Price,
			MarketCap:   prev.MarketCap,
			Imputed:     true,
			DaysImputed: prev.DaysImputed + 1,
		}
		out = append(out, filled)
		prev = filled
	}
	return out
}

// BackfillFrom prepends flat imputed points from from up to the day before the
// first point, priced at the first point. DaysImputed counts days until that first
// point. Points must be sorted; the input is returned unchanged when from is not earlier.
func BackfillFrom(points []*domain.PricePoint, from time.Time) []*domain.PricePoint {
	if len(points) == 0 {
		return points
	}
	from = domain.TruncateDay(from)
	first := points[0]
	if !from.Before(first.Date) {
		return points
	}

	n := int(first.Date.Sub(from) / day)
	out := make([]*domain.PricePoint, 0, n+len(points))
	for i := 0; i < n; i++ {
		out = append(out, &domain.PricePoint{
			AssetID:     first.AssetID,
			Date:        from.Add(time.Duration(i) * day),
			Price:       first.Price,
			MarketCap:   first.MarketCap,
			Imputed:     true,
			DaysImputed: n - i,
		})
	}
	return append(out, points...)
}

// LatestReal returns the date of the most recent non-imputed point.
func LatestReal(points []*domain.PricePoint) (time.Time, bool) {
	for i := len(points) - 1; i >= 0; i-- {
		if !points[i].Imputed {
			return points[i].Date, true
		}
	}
	return time.Time{}, false
}

// Index maps each point's date to the point.
func Index(points []*domain.PricePoint) map[time.Time]*domain.PricePoint {
	out := make(map[time.Time]*domain.PricePoint, len(points))
	for _, p := range points {
		out[p.Date] = p
	}
	return out
}
