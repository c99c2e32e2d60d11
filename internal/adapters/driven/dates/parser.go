// Package dates parses the free-form date arguments of the doc command.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DateParser = (*Parser)(nil)

var (
	// "3/31" and "3-31", month first, year taken from now.
	monthDayPattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})$`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
	wordPattern     = regexp.MustCompile(`[A-Za-z]+`)

	// "Jan 1st", "may 30" and "1st of January", year taken from now.
	writtenMonthDayPattern = regexp.MustCompile(`(?i)^([a-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?$`)
	writtenDayMonthPattern = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?([a-z]+)$`)
)

// dateWords are the words, besides month names, that may appear in an
// absolute date. Anything else means the token is not only a date.
var dateWords = map[string]bool{
	"st": true, "nd": true, "rd": true, "th": true, "of": true, "at": true,
	"am": true, "pm": true, "t": true, "z": true, "utc": true, "gmt": true,
	"mon": true, "monday": true, "tue": true, "tues": true, "tuesday": true,
	"wed": true, "wednesday": true, "thu": true, "thur": true, "thurs": true, "thursday": true,
	"fri": true, "friday": true, "sat": true, "saturday": true, "sun": true, "sunday": true,
}

// Parser tries, in order, a bare month/day, a written month and day, an
// absolute date (month first when numeric) and a natural-language
// expression. All results are in UTC.
type Parser struct {
	natural *when.Parser
}

// NewParser creates a Parser with the English and common rule sets
func NewParser() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{natural: w}
}

// Parse returns the date described by text, relative to now.
// The whole token must be a date: "dev 1/1" or "general" do not parse.
func (p *Parser) Parse(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" || digitsPattern.MatchString(text) {
		// Bare numbers are channel IDs, never unix timestamps.
		return time.Time{}, false
	}
	now = now.UTC()

	if t, ok := parseMonthDay(text, now); ok {
		return t, true
	}
	if t, ok := parseWrittenMonthDay(text, now); ok {
		return t, true
	}
	if t, ok := parseAbsolute(text, now); ok {
		return t, true
	}
	if t, ok := p.parseNatural(text, now); ok {
		return t, true
	}
	return time.Time{}, false
}

func (p *Parser) parseNatural(text string, now time.Time) (time.Time, bool) {
	r, err := p.natural.Parse(text, now)
	if err != nil || r == nil {
		return time.Time{}, false
	}
	if r.Index != 0 || len(strings.TrimSpace(r.Text)) != len(text) {
		return time.Time{}, false
	}
	return r.Time.UTC(), true
}

// parseAbsolute accepts dateparse results only when every word in text
// belongs to a date, so "2024-roadmap" stays a channel name.
func parseAbsolute(text string, now time.Time) (time.Time, bool) {
	for _, word := range wordPattern.FindAllString(text, -1) {
		word = strings.ToLower(word)
		if _, ok := monthFromWord(word); !ok && !dateWords[word] {
			return time.Time{}, false
		}
	}

	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	t = t.UTC()
	if t.Year() == 0 {
		// No year in the text
		return dateIn(now.Year(), t.Month(), t.Day())
	}
	return t, true
}

func parseMonthDay(text string, now time.Time) (time.Time, bool) {
	m := monthDayPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	return dateIn(now.Year(), time.Month(month), day)
}

func parseWrittenMonthDay(text string, now time.Time) (time.Time, bool) {
	var name, digits string
	if m := writtenMonthDayPattern.FindStringSubmatch(text); m != nil {
		name, digits = m[1], m[2]
	} else if m := writtenDayMonthPattern.FindStringSubmatch(text); m != nil {
		digits, name = m[1], m[2]
	} else {
		return time.Time{}, false
	}

	month, ok := monthFromWord(strings.ToLower(name))
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(digits)
	return dateIn(now.Year(), month, day)
}

// monthFromWord matches "jan", "sept" or "january": at least three letters
// that start the month's name.
func monthFromWord(word string) (time.Month, bool) {
	if len(word) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(strings.ToLower(m.String()), word) {
			return m, true
		}
	}
	return 0, false
}

func dateIn(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		// 2/30 rolled over into March
		return time.Time{}, false
	}
	return t, true
}
