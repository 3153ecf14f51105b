package weather

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODate is the layout used for all provider date parameters.
const ISODate = "2006-01-02"

//nolint:gochecknoglobals
var (
	inDaysRe  = regexp.MustCompile(`^in (\d+) days?$`)
	daysAgoRe = regexp.MustCompile(`^(\d+) days? ago$`)
	ordinalRe = regexp.MustCompile(`(\d+)(st|nd|rd|th)\b`)
)

// absoluteLayouts are tried in order when an expression is not relative.
//
//nolint:gochecknoglobals
var absoluteLayouts = []string{
	ISODate,
	"January 2, 2006",
	"January 2 2006",
	"January 2",
	"Jan 2, 2006",
	"Jan 2",
	"2 January 2006",
	"2 January",
	"01/02/2006",
}

// ResolveRelativeDate converts a natural-language date expression into an ISO
// date, relative to reference. Unparseable expressions fall back to the
// reference date itself.
func ResolveRelativeDate(expr string, reference time.Time) string {
	expr = strings.ToLower(strings.TrimSpace(expr))
	ref := reference

	switch expr {
	case "today", "now", "":
		return ref.Format(ISODate)
	case "tomorrow":
		return ref.AddDate(0, 0, 1).Format(ISODate)
	case "yesterday":
		return ref.AddDate(0, 0, -1).Format(ISODate)
	case "next week":
		return ref.AddDate(0, 0, 7).Format(ISODate)
	case "last week":
		return ref.AddDate(0, 0, -7).Format(ISODate)
	case "next month":
		return ref.AddDate(0, 1, 0).Format(ISODate)
	case "last month":
		return ref.AddDate(0, -1, 0).Format(ISODate)
	case "this week":
		// Through the coming Sunday.
		return ref.AddDate(0, 0, 6-mondayIndexed(ref)).Format(ISODate)
	case "last monday":
		return ref.AddDate(0, 0, -(mondayIndexed(ref) + 7)).Format(ISODate)
	case "last sunday":
		return ref.AddDate(0, 0, -(mondayIndexed(ref) + 1)).Format(ISODate)
	}

	if m := inDaysRe.FindStringSubmatch(expr); m != nil {
		n, _ := strconv.Atoi(m[1])
		return ref.AddDate(0, 0, n).Format(ISODate)
	}
	if m := daysAgoRe.FindStringSubmatch(expr); m != nil {
		n, _ := strconv.Atoi(m[1])
		return ref.AddDate(0, 0, -n).Format(ISODate)
	}

	// Month names must be capitalized and ordinals stripped for time.Parse.
	titled := titleWords(ordinalRe.ReplaceAllString(expr, "$1"))
	for _, layout := range absoluteLayouts {
		if parsed, err := time.Parse(layout, titled); err == nil {
			if parsed.Year() == 0 {
				parsed = parsed.AddDate(ref.Year(), 0, 0)
			}
			return parsed.Format(ISODate)
		}
	}

	return ref.Format(ISODate)
}

// mondayIndexed returns the weekday with Monday as 0 and Sunday as 6.
func mondayIndexed(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 && w[0] >= 'a' && w[0] <= 'z' {
			words[i] = string(w[0]-'a'+'A') + w[1:]
		}
	}
	return strings.Join(words, " ")
}
