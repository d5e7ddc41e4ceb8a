package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-wallet-ledger/internal/domain"
)

var d0 = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

func pt(offset int, price float64) *domain.PricePoint {
	return &domain.PricePoint{AssetID: "pepe", Date: d0.AddDate(0, 0, offset), Price: price}
}

func TestSort_RejectsDuplicates(t *testing.T) {
	points := []*domain.PricePoint{pt(2, 1), pt(0, 1), pt(1, 1)}
	require.NoError(t, Sort(points))
	assert.True(t, points[0].Date.Equal(d0))

	assert.ErrorIs(t, Sort([]*domain.PricePoint{pt(0, 1), pt(0, 2)}), ErrDuplicateDate)
}

func TestRemoveSingleDayDips(t *testing.T) {
	points := []*domain.PricePoint{pt(0, 10), pt(1, 5), pt(2, 9.5), pt(3, 4), pt(4, 4.1)}

	kept, removed := RemoveSingleDayDips(points, 0.8, 0.9)

	// day 1 dips and recovers; day 3 drops and stays down
	assert.Equal(t, 1, removed)
	require.Len(t, kept, 4)
	assert.Equal(t, 9.5, kept[1].Price)
	assert.Equal(t, 4.0, kept[2].Price)
}

func TestFillGaps_ForwardFillsAndCountsStreak(t *testing.T) {
	mcap := 1000.0
	first := pt(0, 10)
	first.MarketCap = &mcap
	points := []*domain.PricePoint{first, pt(3, 12)}

	filled := FillGaps(points, d0.AddDate(0, 0, 5))

	require.Len(t, filled, 6)
	wantImputed := []bool{false, true, true, false, true, true}
	wantDays := []int{0, 1, 2, 0, 1, 2}
	wantPrice := []float64{10, 10, 10, 12, 12, 12}
	for i, p := range filled {
		assert.True(t, p.Date.Equal(d0.AddDate(0, 0, i)), "day %d", i)
		assert.Equal(t, wantImputed[i], p.Imputed, "day %d", i)
		assert.Equal(t, wantDays[i], p.DaysImputed, "day %d", i)
		assert.Equal(t, wantPrice[i], p.Price, "day %d", i)
	}
	assert.Equal(t, &mcap, filled[1].MarketCap)
	assert.Nil(t, FillGaps(nil, d0))
}

func TestBackfillFrom(t *testing.T) {
	points := []*domain.PricePoint{pt(3, 7)}

	out := BackfillFrom(points, d0.Add(5*time.Hour))
	require.Len(t, out, 4)
	assert.True(t, out[0].Date.Equal(d0))
	assert.True(t, out[0].Imputed)
	assert.Equal(t, 3, out[0].DaysImputed)
	assert.Equal(t, 1, out[2].DaysImputed)
	assert.Equal(t, 7.0, out[0].Price)
	assert.False(t, out[3].Imputed)

	assert.Len(t, BackfillFrom(points, d0.AddDate(0, 0, 3)), 1)
}

func TestPrepare(t *testing.T) {
	points := []*domain.PricePoint{pt(4, 9.6), pt(2, 10), pt(3, 5)}

	res, err := Prepare(points, d0, d0.AddDate(0, 0, 6), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, res.DipsRemoved)
	assert.True(t, res.LatestReal.Equal(d0.AddDate(0, 0, 4)))
	require.Len(t, res.Points, 7)
	assert.True(t, res.Points[0].Imputed)
	assert.Equal(t, 10.0, res.Points[3].Price) // dip day forward-filled from day 2
	assert.True(t, res.Points[3].Imputed)
	assert.True(t, res.Points[6].Imputed)

	latest, ok := LatestReal(res.Points)
	assert.True(t, ok)
	assert.True(t, latest.Equal(d0.AddDate(0, 0, 4)))
}
