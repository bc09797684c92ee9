package sales

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/posterminal/internal/ident"
)

var now = time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC)

func sale(id string, at time.Time, total int64, status Status) Sale {
	return Sale{ID: ident.ID(id), Total: decimal.NewFromInt(total), CreatedAt: at, Status: status}
}

func fixture() []Sale {
	return []Sale{
		sale("1", now.Add(-2*time.Hour), 100, StatusCompleted),
		sale("2", now.Add(-1*time.Hour), 50, StatusCompleted),
		sale("3", now.Add(-30*time.Minute), 999, StatusCancelled),
		sale("4", now.Add(-26*time.Hour), 70, StatusCompleted),
		sale("5", now.Add(-10*time.Minute), 25, StatusPending),
	}
}

func TestToday(t *testing.T) {
	today := Today(fixture(), now)

	require.Len(t, today, 2)
	assert.Equal(t, "1", today[0].ID.String())
	assert.Equal(t, "2", today[1].ID.String())
}

func TestToday_UsesCallerLocation(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)
	// 22:30 UTC on the 15th is already the 16th in Nairobi.
	late := sale("late", time.Date(2026, 10, 15, 22, 30, 0, 0, time.UTC), 10, StatusCompleted)

	assert.Len(t, Today([]Sale{late}, now.In(nairobi)), 1)
	assert.Empty(t, Today([]Sale{late}, now))
}

func TestRevenue_CountsCompletedOnly(t *testing.T) {
	assert.True(t, Revenue(fixture()).Equal(decimal.NewFromInt(220)))
	assert.True(t, TodayRevenue(fixture(), now).Equal(decimal.NewFromInt(150)))
	assert.True(t, Revenue(nil).IsZero())
}

func TestRecent(t *testing.T) {
	recent := Recent(fixture(), 2)

	require.Len(t, recent, 2)
	assert.Equal(t, "2", recent[0].ID.String())
	assert.Equal(t, "1", recent[1].ID.String())

	assert.Len(t, Recent(fixture(), 10), 3)
	assert.Nil(t, Recent(fixture(), 0))
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixture(), now, 5)

	assert.Equal(t, "2026-10-16", s.Date)
	assert.Equal(t, 2, s.Count)
	assert.True(t, s.Revenue.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "75", s.AverageValue.String())
	assert.Len(t, s.Recent, 3)
}

func TestSummarize_NoSales(t *testing.T) {
	s := Summarize(nil, now, 5)

	assert.Zero(t, s.Count)
	assert.True(t, s.AverageValue.IsZero())
	assert.Empty(t, s.Recent)
}
