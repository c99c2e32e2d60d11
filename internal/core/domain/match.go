package domain

import "strings"

// MatchStrength classifies how well a container name matches a query
type MatchStrength int

const (
	NoMatch MatchStrength = iota
	SoftMatch
	HardMatch
)

func (s MatchStrength) String() string {
	switch s {
	case SoftMatch:
		return "soft"
	case HardMatch:
		return "hard"
	default:
		return "none"
	}
}

// MatchState is the running result of one resolution lane.
// An empty ID with a Soft or Hard strength means the lane is ambiguous.
type MatchState struct {
	Strength MatchStrength
	ID       string
}

// Resolved returns the held ID if the lane produced exactly one candidate
func (m MatchState) Resolved() (string, bool) {
	if m.Strength == NoMatch || m.ID == "" {
		return "", false
	}
	return m.ID, true
}

// transition describes what folding a new classification does to a lane
type transition int

const (
	keepPrevious transition = iota
	takeCurrent
	collapse
)

// matchTransitions is keyed by (previous strength, current strength).
// Pairs not listed keep the previous state.
var matchTransitions = map[[2]MatchStrength]transition{
	{NoMatch, NoMatch}:     takeCurrent,
	{NoMatch, SoftMatch}:   takeCurrent,
	{NoMatch, HardMatch}:   takeCurrent,
	{SoftMatch, HardMatch}: takeCurrent,
	{SoftMatch, SoftMatch}: collapse,
	{HardMatch, HardMatch}: collapse,
}

// Fold combines the previous lane state with the classification of the next container
func Fold(prev, curr MatchState) MatchState {
	switch matchTransitions[[2]MatchStrength{prev.Strength, curr.Strength}] {
	case takeCurrent:
		return curr
	case collapse:
		return MatchState{Strength: prev.Strength}
	default:
		return prev
	}
}

// Classify compares an already lowercased query with a container name
func Classify(c *Container, query string) MatchState {
	name := strings.ToLower(c.Name)
	switch {
	case name == query:
		return MatchState{Strength: HardMatch, ID: c.ID}
	case strings.Contains(name, query):
		return MatchState{Strength: SoftMatch, ID: c.ID}
	default:
		return MatchState{Strength: NoMatch}
	}
}
