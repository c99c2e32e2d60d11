package mocks

import "time"

// MockDateParser parses only the tokens it was given
type MockDateParser struct {
	Dates map[string]time.Time

	// Seen records every token passed to Parse
	Seen []string
}

// NewMockDateParser creates a parser that knows the given token -> date pairs
func NewMockDateParser(dates map[string]time.Time) *MockDateParser {
	if dates == nil {
		dates = make(map[string]time.Time)
	}
	return &MockDateParser{Dates: dates}
}

func (m *MockDateParser) Parse(text string, now time.Time) (time.Time, bool) {
	m.Seen = append(m.Seen, text)
	t, ok := m.Dates[text]
	return t, ok
}
