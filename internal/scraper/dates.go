package scraper

import (
	"strconv"
	"strings"
	"time"

	"tebeosfera-scraper/internal/config"
)

// Date is a calendar date decomposed from a page's raw date string
type Date struct {
	Day   int
	Month int
	Year  int
}

var romanMonths = map[string]int{
	"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5, "VI": 6,
	"VII": 7, "VIII": 8, "IX": 9, "X": 10, "XI": 11, "XII": 12,
}

var patterns = config.CompileRegexes()

// ParseDate reads "18-XI-2025" (Roman month) or "20-04-1998" (numeric month).
// A Roman month that is not I..XII gives no date; it is not retried as numeric.
func ParseDate(raw string) (Date, bool) {
	if m := patterns["romanDate"].FindStringSubmatch(raw); m != nil {
		month, ok := romanMonths[strings.ToUpper(m[2])]
		if !ok {
			return Date{}, false
		}
		return validDate(m[1], month, m[3])
	}

	if m := patterns["numericDate"].FindStringSubmatch(raw); m != nil {
		month, err := strconv.Atoi(m[2])
		if err != nil {
			return Date{}, false
		}
		return validDate(m[1], month, m[3])
	}

	return Date{}, false
}

func validDate(dayText string, month int, yearText string) (Date, bool) {
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return Date{}, false
	}
	year, err := strconv.Atoi(yearText)
	if err != nil || year <= 0 {
		return Date{}, false
	}
	if month < 1 || month > 12 || day < 1 {
		return Date{}, false
	}
	// day 0 of the next month is the last day of this one
	if day > time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day() {
		return Date{}, false
	}
	return Date{Day: day, Month: month, Year: year}, true
}
