package application

import (
	"cmp"
	"slices"
)

// Suggestion is satisfied by the two suggestion kinds.
type Suggestion interface {
	RestaurantSuggestion | DateSuggestion
	SuggestionID() int64
}

// RankSuggestions orders tallies by vote count descending, then by the
// kind specific tieBreak, then by ascending id. The input is not modified.
//
// Listings, leaders and the options offered when closing a poll all come from
// this ordering, so a leader is always a member of the offered list.
func RankSuggestions[T Suggestion](tallies []Tally[T], tieBreak func(a, b T) int) []Tally[T] {
	ranked := slices.Clone(tallies)
	slices.SortStableFunc(ranked, func(a, b Tally[T]) int {
		if c := cmp.Compare(b.VoteCount, a.VoteCount); c != 0 {
			return c
		}
		if tieBreak != nil {
			if c := tieBreak(a.Suggestion, b.Suggestion); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Suggestion.SuggestionID(), b.Suggestion.SuggestionID())
	})
	return ranked
}

// Leader returns the first ranked tally, or nil when there are none.
func Leader[T Suggestion](ranked []Tally[T]) *Tally[T] {
	if len(ranked) == 0 {
		return nil
	}
	leader := ranked[0]
	return &leader
}

// FindTally returns the tally for id within ranked.
func FindTally[T Suggestion](ranked []Tally[T], id int64) (Tally[T], bool) {
	for _, tally := range ranked {
		if tally.Suggestion.SuggestionID() == id {
			return tally, true
		}
	}
	return Tally[T]{}, false
}

// NewestRestaurantFirst breaks restaurant ties by creation time descending.
func NewestRestaurantFirst(a, b RestaurantSuggestion) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

// EarliestDateFirst breaks date ties by calendar date ascending.
func EarliestDateFirst(a, b DateSuggestion) int {
	return a.SuggestedDate.Compare(b.SuggestedDate)
}

// RankRestaurants ranks restaurant tallies.
func RankRestaurants(tallies []Tally[RestaurantSuggestion]) []Tally[RestaurantSuggestion] {
	return RankSuggestions(tallies, NewestRestaurantFirst)
}

// RankDates ranks date tallies.
func RankDates(tallies []Tally[DateSuggestion]) []Tally[DateSuggestion] {
	return RankSuggestions(tallies, EarliestDateFirst)
}
