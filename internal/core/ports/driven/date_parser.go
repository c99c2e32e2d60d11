package driven

import "time"

// DateParser does best-effort natural-language date parsing.
// Relative expressions ("yesterday", "last monday") are resolved against now.
type DateParser interface {
	Parse(text string, now time.Time) (time.Time, bool)
}
