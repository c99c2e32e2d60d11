package services

import (
	"time"

	"github.com/custodia-labs/pindoc/internal/core/domain"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// ResolveDateRange reads up to two leading date tokens from args.
//
//   - both parse: [first, second), both consumed
//   - only the first parses: [first, today), one consumed
//   - otherwise: [beginning of time, today), nothing consumed
//
// Tokens that do not parse stay in the returned arguments so they can be
// resolved as channel references.
func ResolveDateRange(parser driven.DateParser, args []string, now time.Time) (domain.DateInterval, []string) {
	today := domain.Date(now)

	start, ok := parseToken(parser, args, 0, now)
	if !ok {
		return domain.DateInterval{Start: domain.BeginningOfTime, End: today}, args
	}

	end, ok := parseToken(parser, args, 1, now)
	if !ok {
		return domain.NewDateInterval(start, today), args[1:]
	}

	return domain.NewDateInterval(start, end), args[2:]
}

func parseToken(parser driven.DateParser, args []string, i int, now time.Time) (time.Time, bool) {
	if i >= len(args) || args[i] == "" {
		return time.Time{}, false
	}
	return parser.Parse(args[i], now)
}
