package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGridTimeCandidates(t *testing.T) {
	slots := TimeCandidates(DefaultGrid)

	assert.Len(t, slots, 16)
	for _, s := range slots {
		assert.NotEqual(t, 13, s.Hour(), s.String())
	}
	assert.Equal(t, "09:00", slots[0].String())
	assert.Equal(t, "12:30", slots[7].String())
	assert.Equal(t, "14:00", slots[8].String())
	assert.Equal(t, "17:30", slots[15].String())
}

func TestGridWithoutLunch(t *testing.T) {
	g := DefaultGrid
	g.LunchHour = NoLunch
	assert.Len(t, TimeCandidates(g), 18)
}

func TestGridLongSlotsSkipLunchOverlap(t *testing.T) {
	slots := DefaultGrid.window(At(12, 0), At(15, 0), 30, 60)

	var starts []string
	for _, s := range slots {
		starts = append(starts, s.Start.String())
	}
	assert.Equal(t, []string{"12:00", "14:00"}, starts)
}
