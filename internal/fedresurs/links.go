package fedresurs

import (
	"fmt"
	"net/url"
	"time"
)

// monthLayout is the YYYY-MM form used across flags and artifacts.
const monthLayout = "2006-01"

// ParseMonth parses a YYYY-MM string into the first day of that month (UTC).
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", s, err)
	}
	return t, nil
}

// periodParam builds the portal's period filter for one month: a JSON object
// with the first and last instants of the month in UTC.
func periodParam(month time.Time) string {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return fmt.Sprintf(`{"beginJsDate":"%s","endJsDate":"%s"}`,
		first.Format("2006-01-02")+"T00:00:00.000Z",
		last.Format("2006-01-02")+"T23:59:59.999Z")
}

// SearchURL builds the encumbrance search URL for one company and month.
// The period filter travels URL-encoded inside the query string, the way the
// portal's own frontend encodes it.
func SearchURL(baseURL, group, company string, month time.Time, limit int) string {
	u := fmt.Sprintf("%s/encumbrances?group=%s&period=%s&limit=%d&offset=0",
		baseURL, url.QueryEscape(group), url.QueryEscape(periodParam(month)), limit)
	if company != "" {
		u += "&searchString=" + url.QueryEscape(company)
	}
	return u
}

// Months returns the first-of-month instants from start to end inclusive.
func Months(start, end time.Time) []time.Time {
	var months []time.Time
	for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(end); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}

// BuildMonthLinks generates the stage 1 artifact for a company and month
// range (both bounds inclusive).
func BuildMonthLinks(baseURL, group, company string, start, end time.Time, limit int, now time.Time) MonthLinkSet {
	set := MonthLinkSet{
		Company:     company,
		Start:       start.Format(monthLayout),
		End:         end.Format(monthLayout),
		GeneratedAt: now,
	}
	for _, m := range Months(start, end) {
		set.Months = append(set.Months, MonthLink{
			Month: m.Format(monthLayout),
			URL:   SearchURL(baseURL, group, company, m, limit),
		})
	}
	return set
}

// YearOf extracts the year from a YYYY-MM month string.
func YearOf(month string) string {
	if len(month) < 4 {
		return month
	}
	return month[:4]
}
