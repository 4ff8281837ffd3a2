package period

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// Calendar is the local context periods are computed in.
type Calendar struct {
	Location     *time.Location
	FirstWeekday time.Weekday
	Locale       language.Tag
}

// DefaultCalendar is UTC, weeks starting on Monday, English titles.
func DefaultCalendar() Calendar {
	return Calendar{
		Location:     time.UTC,
		FirstWeekday: time.Monday,
		Locale:       language.BritishEnglish,
	}
}

// NewCalendar builds a Calendar from configuration strings. An empty
// firstWeekday derives the week start from the locale's region.
func NewCalendar(timezone, locale, firstWeekday string) (Calendar, error) {
	cal := DefaultCalendar()

	if tz := strings.TrimSpace(timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return Calendar{}, fmt.Errorf("load timezone %q: %w", tz, err)
		}
		cal.Location = loc
	}

	if l := strings.TrimSpace(locale); l != "" {
		tag, err := language.Parse(l)
		if err != nil {
			return Calendar{}, fmt.Errorf("parse locale %q: %w", l, err)
		}
		cal.Locale = tag
		cal.FirstWeekday = weekStartForRegion(tag)
	}

	if fw := strings.TrimSpace(firstWeekday); fw != "" {
		wd, err := ParseWeekday(fw)
		if err != nil {
			return Calendar{}, err
		}
		cal.FirstWeekday = wd
	}

	return cal, nil
}

// ParseWeekday accepts English day names or their three letter prefix.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || (len(name) >= 3 && strings.HasPrefix(full, name)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Regions whose weeks conventionally start on a day other than Monday.
var weekStartOverrides = map[string]time.Weekday{
	"US": time.Sunday, "CA": time.Sunday, "MX": time.Sunday, "BR": time.Sunday,
	"JP": time.Sunday, "KR": time.Sunday, "TW": time.Sunday, "HK": time.Sunday,
	"IL": time.Sunday, "PH": time.Sunday, "IN": time.Sunday, "ZA": time.Sunday,
	"SA": time.Saturday, "AE": time.Saturday, "EG": time.Saturday, "QA": time.Saturday,
}

func weekStartForRegion(tag language.Tag) time.Weekday {
	region, conf := tag.Region()
	if conf == language.No {
		return time.Monday
	}
	if wd, ok := weekStartOverrides[region.String()]; ok {
		return wd
	}
	return time.Monday
}

var mondayLocales = map[string]monday.Locale{
	"en-US": monday.LocaleEnUS,
	"en-GB": monday.LocaleEnGB,
	"it-IT": monday.LocaleItIT,
	"de-DE": monday.LocaleDeDE,
	"fr-FR": monday.LocaleFrFR,
	"es-ES": monday.LocaleEsES,
	"pt-BR": monday.LocalePtBR,
	"pt-PT": monday.LocalePtPT,
	"nl-NL": monday.LocaleNlNL,
}

var mondayByLanguage = map[string]monday.Locale{
	"it": monday.LocaleItIT,
	"de": monday.LocaleDeDE,
	"fr": monday.LocaleFrFR,
	"es": monday.LocaleEsES,
	"pt": monday.LocalePtPT,
	"nl": monday.LocaleNlNL,
}

// format renders t with a Go layout, translating month names for non-English locales.
func (c Calendar) format(t time.Time, layout string) string {
	base, _ := c.Locale.Base()
	if base.String() == "en" {
		return t.Format(layout)
	}
	region, _ := c.Locale.Region()
	if loc, ok := mondayLocales[base.String()+"-"+region.String()]; ok {
		return monday.Format(t, layout, loc)
	}
	if loc, ok := mondayByLanguage[base.String()]; ok {
		return monday.Format(t, layout, loc)
	}
	return t.Format(layout)
}
