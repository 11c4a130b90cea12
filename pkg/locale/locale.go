// Package locale holds the static string tables for the two supported
// locales and helpers to pick one from a request.
package locale

import (
	"strconv"
	"strings"
	"time"
)

type Locale string

const (
	AZ Locale = "az"
	RU Locale = "ru"

	Default = AZ
)

var weekdays = map[Locale][7]string{
	AZ: {"Bazar", "Bazar ertəsi", "Çərşənbə axşamı", "Çərşənbə", "Cümə axşamı", "Cümə", "Şənbə"},
	RU: {"Воскресенье", "Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота"},
}

var weekdaysShort = map[Locale][7]string{
	AZ: {"B", "B.e", "Ç.a", "Ç", "C.a", "C", "Ş"},
	RU: {"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"},
}

var months = map[Locale][12]string{
	AZ: {"yanvar", "fevral", "mart", "aprel", "may", "iyun", "iyul", "avqust", "sentyabr", "oktyabr", "noyabr", "dekabr"},
	RU: {"января", "февраля", "марта", "апреля", "мая", "июня", "июля", "августа", "сентября", "октября", "ноября", "декабря"},
}

// Parse accepts "az", "ru", "ru-RU", "az-Latn-AZ" and Accept-Language style
// lists, returning the first supported locale or Default.
func Parse(value string) Locale {
	for _, part := range strings.Split(value, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		tag = strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		switch Locale(tag) {
		case AZ, RU:
			return Locale(tag)
		}
	}
	return Default
}

func (l Locale) valid() Locale {
	if l == AZ || l == RU {
		return l
	}
	return Default
}

func (l Locale) Weekday(d time.Weekday) string {
	return weekdays[l.valid()][d]
}

func (l Locale) WeekdayShort(d time.Weekday) string {
	return weekdaysShort[l.valid()][d]
}

// FormatDate renders "19 oktyabr 2026" / "19 октября 2026".
func (l Locale) FormatDate(t time.Time) string {
	return strings.Join([]string{
		strconv.Itoa(t.Day()),
		months[l.valid()][t.Month()-1],
		strconv.Itoa(t.Year()),
	}, " ")
}
