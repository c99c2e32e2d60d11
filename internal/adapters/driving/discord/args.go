package discord

import "strings"

// SplitArgs breaks a command line into arguments. Spaces and commas both
// delimit, runs of delimiters produce no empty arguments, and a double-quoted
// span is a single argument with the quotes removed.
//
//	doc "Jan 1st" "May 30th" general, dev-ops
//	=> doc, Jan 1st, May 30th, general, dev-ops
func SplitArgs(line string) []string {
	var args []string
	var cur strings.Builder
	inQuote, quoted := false, false

	flush := func() {
		if cur.Len() > 0 || quoted {
			args = append(args, cur.String())
		}
		cur.Reset()
		quoted = false
	}

	for _, r := range line {
		switch {
		case r == '"':
			if inQuote {
				inQuote = false
			} else {
				inQuote, quoted = true, true
			}
		case inQuote:
			cur.WriteRune(r)
		case r == ' ' || r == ',' || r == '\n' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return args
}
