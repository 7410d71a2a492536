package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"productif-agent/internal/matcher"
)

// Date is a calendar day without time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// AddDays shifts d by n days, normalising across month and year ends.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}

var (
	// "avant-hier" contient "hier"，必须先匹配
	dayBeforeYesterdayPattern = regexp.MustCompile(`(?i)\b(?:avant[- ]hier|day\s+before\s+yesterday)\b`)
	yesterdayPattern          = regexp.MustCompile(`(?i)\b(?:hier|yesterday)\b`)
	// month names are matched after accent folding
	namedDayPattern = regexp.MustCompile(`(?i)\ble\s+(\d{1,2})\s+([a-z]+)`)
	slashDayPattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)
)

var monthNames = map[string]time.Month{
	"janvier": time.January, "fevrier": time.February, "mars": time.March,
	"avril": time.April, "mai": time.May, "juin": time.June,
	"juillet": time.July, "aout": time.August, "septembre": time.September,
	"octobre": time.October, "novembre": time.November, "decembre": time.December,

	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// DateResolver finds the day a message refers to. It is year-naive: explicit
// day/month forms always land in the current year, even across New Year.
type DateResolver struct {
	now func() time.Time
	loc *time.Location
}

// NewDateResolver builds a resolver whose "today" is now() seen in loc.
// A nil loc means UTC and a nil now means time.Now.
func NewDateResolver(now func() time.Time, loc *time.Location) *DateResolver {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DateResolver{now: now, loc: loc}
}

// Today is the current calendar day in the resolver's location.
func (r *DateResolver) Today() Date {
	return DateOf(r.now().In(r.loc))
}

// Resolve returns the first date expression found in text, tried in fixed
// priority order, or today when there is none. Only the first pattern that
// matches is evaluated.
func (r *DateResolver) Resolve(text string) Date {
	today := r.Today()

	if dayBeforeYesterdayPattern.MatchString(text) {
		return today.AddDays(-2)
	}
	if yesterdayPattern.MatchString(text) {
		return today.AddDays(-1)
	}

	folded := matcher.Normalize(text)
	for _, m := range namedDayPattern.FindAllStringSubmatch(folded, -1) {
		if month, ok := monthNames[m[2]]; ok {
			return withDayMonth(today, m[1], month)
		}
	}

	if m := slashDayPattern.FindStringSubmatch(text); m != nil {
		month, err := strconv.Atoi(m[2])
		if err != nil || month < 1 || month > 12 {
			return today
		}
		return withDayMonth(today, m[1], time.Month(month))
	}

	return today
}

// datePhrasePattern 匹配 Resolve 认识的日期表达，以及 aujourd'hui 和时段词
var datePhrasePattern = regexp.MustCompile(`(?i)(?:\b(?:avant[- ]hier|day\s+before\s+yesterday|hier|yesterday|aujourd['’]hui|today)(?:\s+(?:soir|matin|midi|apr[eè]s-midi|morning|evening|night))?\b` +
	`|\b(?:le\s+)?\d{1,2}\s+(?:janvier|f[ée]vrier|mars|avril|mai|juin|juillet|ao[uû]t|septembre|octobre|novembre|d[ée]cembre|january|february|march|april|may|june|july|august|september|october|november|december)\b` +
	`|\b(?:le\s+)?\d{1,2}/\d{1,2}\b)`)

// StripDates removes the date expressions of text so that "sport hier"
// names the habit "sport".
func StripDates(text string) string {
	return strings.Join(strings.Fields(datePhrasePattern.ReplaceAllString(text, " ")), " ")
}

// withDayMonth keeps today's year. Out of range days fall back to today.
func withDayMonth(today Date, dayStr string, month time.Month) Date {
	day, err := strconv.Atoi(strings.TrimSpace(dayStr))
	if err != nil || day < 1 || day > daysIn(today.Year, month) {
		return today
	}
	return Date{Year: today.Year, Month: month, Day: day}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
