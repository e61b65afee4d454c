package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lilo/pkg/config"
	apperrors "lilo/pkg/errors"
	"lilo/pkg/logger"
	"lilo/pkg/model"
)

const monday = "2025-01-06"

func testConfig() *config.Config {
	return &config.Config{
		Log:                    logger.New(logger.Config{Output: io.Discard}),
		BusinessTimeZone:       "UTC",
		DefaultSlotDurationMin: 30,
		MaxAdvanceBookingDays:  90,
	}
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name                 string
		start, end, duration int
		want                 []int
	}{
		{"exact fit", 540, 720, 30, []int{540, 570, 600, 630, 660, 690}},
		{"trailing partial dropped", 540, 600, 25, []int{540, 565}},
		{"window shorter than slot", 540, 560, 30, nil},
		{"empty window", 600, 600, 30, nil},
		{"inverted window", 720, 540, 30, nil},
		{"zero duration", 540, 720, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Partition(tt.start, tt.end, tt.duration))
		})
	}
}

func TestGenerateSlots_MondayMorning(t *testing.T) {
	rules := &stubRules{rules: []*model.AvailabilityRule{rule(model.Monday, "09:00", "12:00", 30)}}
	g := NewGenerator(rules, stubBlocked{}, testConfig())

	times, err := g.GenerateSlots(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, times)
}

func TestGenerateSlots_BlockedDate(t *testing.T) {
	rules := &stubRules{rules: []*model.AvailabilityRule{rule(model.Monday, "09:00", "12:00", 30)}}
	g := NewGenerator(rules, stubBlocked{monday: true}, testConfig())

	times, err := g.GenerateSlots(context.Background(), monday)
	require.NoError(t, err)
	assert.NotNil(t, times)
	assert.Empty(t, times)
	assert.Zero(t, rules.calls, "blocked dates should not consult rules")
}

func TestGenerateSlots_NoRules(t *testing.T) {
	rules := &stubRules{rules: []*model.AvailabilityRule{rule(model.Tuesday, "09:00", "12:00", 30)}}
	g := NewGenerator(rules, stubBlocked{}, testConfig())

	times, err := g.GenerateSlots(context.Background(), monday)
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestGenerateSlots_IgnoresUnavailableRules(t *testing.T) {
	closed := rule(model.Monday, "13:00", "15:00", 60)
	closed.IsAvailable = false
	rules := &stubRules{rules: []*model.AvailabilityRule{rule(model.Monday, "09:00", "10:00", 60), closed}}
	g := NewGenerator(rules, stubBlocked{}, testConfig())

	times, err := g.GenerateSlots(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, times)
}

func TestGenerateSlots_MergesOverlappingRules(t *testing.T) {
	rules := &stubRules{rules: []*model.AvailabilityRule{
		rule(model.Monday, "13:00", "14:00", 60),
		rule(model.Monday, "09:30", "11:00", 30),
		rule(model.Monday, "09:00", "10:00", 30),
	}}
	g := NewGenerator(rules, stubBlocked{}, testConfig())

	times, err := g.GenerateSlots(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "13:00"}, times)
}

func TestFindSlot_EarliestRuleDecidesDurationByClock(t *testing.T) {
	rules := &stubRules{rules: []*model.AvailabilityRule{
		rule(model.Monday, " 09:00", "10:00", 60),
		rule(model.Monday, "08:00", "10:00", 30),
	}}
	g := NewGenerator(rules, stubBlocked{}, testConfig())

	dur, err := g.FindSlot(context.Background(), monday, "09:00")
	require.NoError(t, err)
	assert.Equal(t, 30, dur)

	times, err := g.GenerateSlots(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"08:00", "08:30", "09:00", "09:30"}, times)
}

func TestGenerateSlots_DefaultDuration(t *testing.T) {
	rules := &stubRules{rules: []*model.AvailabilityRule{rule(model.Monday, "09:00", "10:00", 0)}}
	g := NewGenerator(rules, stubBlocked{}, testConfig())

	times, err := g.GenerateSlots(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, times)
}

func TestGenerateSlots_Aligned(t *testing.T) {
	windows := []struct{ start, end string }{
		{"08:00", "12:00"},
		{"08:10", "09:55"},
		{"13:00", "17:45"},
		{"00:00", "23:59"},
	}

	for d := 5; d <= 120; d += 5 {
		for _, w := range windows {
			rules := &stubRules{rules: []*model.AvailabilityRule{rule(model.Monday, w.start, w.end, d)}}
			g := NewGenerator(rules, stubBlocked{}, testConfig())

			times, err := g.GenerateSlots(context.Background(), monday)
			require.NoError(t, err)

			start, _ := model.ParseClock(w.start)
			end, _ := model.ParseClock(w.end)
			prev := -1
			for _, tm := range times {
				m, err := model.ParseClock(tm)
				require.NoError(t, err)
				assert.Zero(t, (m-start)%d, "slot %s not aligned to %s + k*%d", tm, w.start, d)
				assert.LessOrEqual(t, m+d, end, "slot %s overruns %s", tm, w.end)
				assert.Greater(t, m, prev, "slots must be strictly ascending")
				prev = m
			}
			assert.Len(t, times, (end-start)/d)
		}
	}
}

func TestGenerateSlots_Idempotent(t *testing.T) {
	rules := &stubRules{rules: []*model.AvailabilityRule{
		rule(model.Monday, "09:00", "12:00", 45),
		rule(model.Monday, "10:00", "11:00", 20),
	}}
	g := NewGenerator(rules, stubBlocked{}, testConfig())

	first, err := g.GenerateSlots(context.Background(), monday)
	require.NoError(t, err)
	second, err := g.GenerateSlots(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateSlots_Errors(t *testing.T) {
	g := NewGenerator(&stubRules{err: errStore}, stubBlocked{}, testConfig())

	_, err := g.GenerateSlots(context.Background(), monday)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))

	_, err = g.GenerateSlots(context.Background(), "06/01/2025")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestFindSlot(t *testing.T) {
	rules := &stubRules{rules: []*model.AvailabilityRule{
		rule(model.Monday, "09:00", "12:00", 30),
		rule(model.Tuesday, "09:00", "12:00", 30),
	}}
	blocked := stubBlocked{"2025-01-07": true}
	g := NewGenerator(rules, blocked, testConfig())

	tests := []struct {
		name     string
		date     string
		clock    string
		wantCode string
		wantDur  int
	}{
		{"boundary", monday, "10:00", "", 30},
		{"last slot", monday, "11:30", "", 30},
		{"between boundaries", monday, "09:15", apperrors.CodeValidation, 0},
		{"window end", monday, "12:00", apperrors.CodeValidation, 0},
		{"malformed time", monday, "9am", apperrors.CodeValidation, 0},
		{"blocked date", "2025-01-07", "10:00", apperrors.CodeDateBlocked, 0},
		{"no rules", "2025-01-08", "10:00", apperrors.CodeNoAvailability, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dur, err := g.FindSlot(context.Background(), tt.date, tt.clock)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantDur, dur)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestChecker_ConfirmedBookingTakesOnlyItsSlot(t *testing.T) {
	occupancy := &stubOccupancy{times: map[string][]string{monday: {"10:00"}}}
	c := NewChecker(occupancy)

	slots, err := c.Annotate(context.Background(), monday, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"})
	require.NoError(t, err)
	require.Len(t, slots, 6)
	for _, s := range slots {
		assert.Equal(t, s.Time != "10:00", s.IsAvailable, "slot %s", s.Time)
	}
}

func TestChecker_EmptyTimesSkipsLookup(t *testing.T) {
	c := NewChecker(nil)

	slots, err := c.Annotate(context.Background(), monday, nil)
	require.NoError(t, err)
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestDateWindow(t *testing.T) {
	now := time.Date(2025, 1, 6, 10, 5, 0, 0, time.UTC)
	w := NewDateWindow(testConfig()).WithClock(func() time.Time { return now })

	assert.Equal(t, monday, w.Today())
	date, err := w.Check(monday)
	assert.NoError(t, err)
	assert.Equal(t, monday, date)
	date, err = w.Check(" " + monday + "\t")
	assert.NoError(t, err)
	assert.Equal(t, monday, date)
	_, err = w.Check("2025-04-06")
	assert.NoError(t, err)
	for _, bad := range []string{"2025-01-05", "2025-04-07", "not-a-date"} {
		_, err = w.Check(bad)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), bad)
	}

	assert.True(t, w.Elapsed(monday, "10:00"))
	assert.False(t, w.Elapsed(monday, "10:30"))
	assert.False(t, w.Elapsed("2025-01-07", "08:00"))
	assert.True(t, w.Elapsed("2025-01-05", "23:00"))
}
