package page

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	numericDateRe = regexp.MustCompile(`^(\d{1,4})[./-](\d{1,2})[./-](\d{1,4})$`)
	yearTokenRe   = regexp.MustCompile(`^\d{4}$`)
	dayTokenRe    = regexp.MustCompile(`^\d{1,2}\.?$`)
)

// fillerTokens are connective words dropped before token classification,
// e.g. Spanish "09 de enero de 2024" or Portuguese "9 de janeiro de 2024".
var fillerTokens = map[string]bool{
	"de":  true,
	"del": true,
	"da":  true,
	"do":  true,
	"of":  true,
	"den": true,
	"el":  true,
}

// NormalizeDate converts a raw, locale-specific date string into canonical
// YYYY-MM-DD form. When no confident interpretation exists the input is
// returned unchanged: normalization supersedes the raw form, it never
// destroys it.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}

	if isoDateRe.MatchString(s) {
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return s
		}
		return raw
	}

	if out, ok := parseNumericDate(s); ok {
		return out
	}

	if out, ok := parseLexiconDate(s); ok {
		return out
	}

	if t, err := dateparse.ParseStrict(s); err == nil {
		return t.Format("2006-01-02")
	}

	return raw
}

// parseNumericDate handles separator-delimited forms such as "11/12/2023",
// "11.12.2023" and "2023/12/11". The source locales write day-first, so an
// ambiguous pair is read as day/month; an impossible day-first pair is
// swapped when the other reading is valid.
func parseNumericDate(s string) (string, bool) {
	m := numericDateRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	c, _ := strconv.Atoi(m[3])

	var year, month, day int
	switch {
	case len(m[1]) == 4:
		year, month, day = a, b, c
	case len(m[3]) == 4:
		year, month, day = c, b, a
		if month > 12 && day <= 12 {
			month, day = day, month
		}
	default:
		return "", false
	}

	return formatIfValid(year, month, day)
}

// parseLexiconDate decomposes a written-out date into tokens and classifies
// each as a year, a day or a lexicon month. Exactly one of each is required.
func parseLexiconDate(s string) (string, bool) {
	cleaned := strings.NewReplacer(",", " ", ";", " ", "’", " ", "'", " ").Replace(s)

	var year, month, day int
	for _, token := range strings.Fields(cleaned) {
		lower := strings.ToLower(token)
		if fillerTokens[lower] {
			continue
		}

		switch {
		case yearTokenRe.MatchString(token):
			if year != 0 {
				return "", false
			}
			year, _ = strconv.Atoi(token)
		case dayTokenRe.MatchString(token):
			if day != 0 {
				return "", false
			}
			day, _ = strconv.Atoi(strings.TrimSuffix(token, "."))
		default:
			m, ok := lookupMonth(strings.TrimSuffix(lower, "."))
			if !ok || month != 0 {
				return "", false
			}
			month = m
		}
	}

	if year == 0 || month == 0 || day == 0 {
		return "", false
	}

	return formatIfValid(year, month, day)
}

func formatIfValid(year, month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}
