package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restaurantTally(id int64, votes int, created time.Time) Tally[RestaurantSuggestion] {
	return Tally[RestaurantSuggestion]{
		Suggestion: RestaurantSuggestion{ID: id, Name: "r", CreatedAt: created},
		VoteCount:  votes,
	}
}

func dateTally(id int64, votes int, date time.Time) Tally[DateSuggestion] {
	return Tally[DateSuggestion]{
		Suggestion: DateSuggestion{ID: id, SuggestedDate: date},
		VoteCount:  votes,
	}
}

func ids[T Suggestion](ranked []Tally[T]) []int64 {
	out := make([]int64, 0, len(ranked))
	for _, tally := range ranked {
		out = append(out, tally.Suggestion.SuggestionID())
	}
	return out
}

func TestRankRestaurants(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	input := []Tally[RestaurantSuggestion]{
		restaurantTally(1, 1, base),
		restaurantTally(2, 3, base),
		restaurantTally(3, 1, base.Add(time.Hour)),
		restaurantTally(4, 1, base),
	}

	ranked := RankRestaurants(input)
	assert.Equal(t, []int64{2, 3, 1, 4}, ids(ranked), "votes desc, newest first, then id")
	assert.Equal(t, int64(1), input[0].Suggestion.ID, "input is not reordered")

	leader := Leader(ranked)
	require.NotNil(t, leader)
	assert.Equal(t, int64(2), leader.Suggestion.ID)
}

func TestRankDates(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	ranked := RankDates([]Tally[DateSuggestion]{
		dateTally(10, 0, day(20)),
		dateTally(11, 2, day(25)),
		dateTally(12, 0, day(5)),
		dateTally(13, 0, day(5)),
	})
	assert.Equal(t, []int64{11, 12, 13, 10}, ids(ranked), "votes desc, earliest date first, then id")
}

func TestLeaderIsFirstOfferedOption(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ranked := RankRestaurants([]Tally[RestaurantSuggestion]{
		restaurantTally(5, 2, base),
		restaurantTally(6, 2, base),
	})
	leader := Leader(ranked)
	require.NotNil(t, leader)
	found, ok := FindTally(ranked, leader.Suggestion.ID)
	assert.True(t, ok)
	assert.Equal(t, ranked[0], found)

	assert.Nil(t, Leader[RestaurantSuggestion](nil))
	_, ok = FindTally(ranked, 99)
	assert.False(t, ok)
}
