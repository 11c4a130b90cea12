package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	assert.Equal(t, RU, Parse("ru"))
	assert.Equal(t, RU, Parse("ru-RU,ru;q=0.9,en;q=0.8"))
	assert.Equal(t, AZ, Parse("en-US,az;q=0.5"))
	assert.Equal(t, Default, Parse("en"))
	assert.Equal(t, Default, Parse(""))
}

func TestWeekdayNames(t *testing.T) {
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Monday, monday.Weekday())
	assert.Equal(t, "Bazar ertəsi", AZ.Weekday(monday.Weekday()))
	assert.Equal(t, "Пн", RU.WeekdayShort(monday.Weekday()))
	assert.Equal(t, "Bazar ertəsi", Locale("en").Weekday(time.Monday))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "19 oktyabr 2026", AZ.FormatDate(d))
	assert.Equal(t, "19 октября 2026", RU.FormatDate(d))
}
