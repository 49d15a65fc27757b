package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meatupclub/meatup/internal/application"
	"github.com/meatupclub/meatup/internal/testfixtures"
)

func TestPollRepositorySingleOpenPoll(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	event, poll := h.SeedOpenPoll()
	other := h.SeedEvent()

	open, err := h.Polls.GetOpenPoll(ctx)
	require.NoError(t, err)
	assert.Equal(t, poll.ID, open.ID)
	assert.Equal(t, event.ID, open.EventID)

	_, err = h.Polls.CreatePoll(ctx, application.Poll{EventID: other.ID, Status: application.PollOpen, OpenedAt: testfixtures.ReferenceTime()})
	assert.ErrorIs(t, err, application.ErrPollAlreadyOpen)

	_, err = h.Polls.CreatePoll(ctx, application.Poll{EventID: 999, Status: application.PollClosed, OpenedAt: testfixtures.ReferenceTime()})
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestPollRepositoryClosePromotes(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	member := h.SeedMember()
	event, poll := h.SeedOpenPoll()
	restaurant := h.SeedRestaurant(member, event, "Gibsons")
	date := h.SeedDate(member, event, "2024-04-12")
	closedAt := testfixtures.ReferenceTime().Add(time.Hour)

	closed, promoted, err := h.Polls.ClosePoll(ctx, application.PollClosure{
		PollID:              poll.ID,
		ClosedAt:            closedAt,
		WinningRestaurantID: &restaurant.ID,
		WinningDateID:       &date.ID,
		Promote: &application.Event{
			RestaurantName: restaurant.Name,
			EventDate:      date.SuggestedDate,
			Status:         application.EventUpcoming,
			CreatedAt:      closedAt,
			UpdatedAt:      closedAt,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Equal(t, application.PollClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
	assert.True(t, closed.ClosedAt.Equal(closedAt))
	assert.Equal(t, restaurant.ID, *closed.WinningRestaurantID)
	assert.Equal(t, date.ID, *closed.WinningDateID)
	assert.Equal(t, promoted.ID, *closed.PromotedEventID)

	stored, err := h.Events.GetEvent(ctx, promoted.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gibsons", stored.RestaurantName)
	assert.True(t, stored.EventDate.Equal(testfixtures.Date(2024, time.April, 12)))

	_, err = h.Polls.GetOpenPoll(ctx)
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestPollRepositoryCloseIsAtomic(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	_, poll := h.SeedOpenPoll()

	_, _, err := h.Polls.ClosePoll(ctx, application.PollClosure{PollID: poll.ID, ClosedAt: testfixtures.ReferenceTime()})
	require.NoError(t, err)

	before, err := h.Events.ListEvents(ctx, "")
	require.NoError(t, err)

	_, promoted, err := h.Polls.ClosePoll(ctx, application.PollClosure{
		PollID:   poll.ID,
		ClosedAt: testfixtures.ReferenceTime(),
		Promote:  &application.Event{RestaurantName: "Ghost", EventDate: testfixtures.Date(2024, time.May, 5)},
	})
	assert.ErrorIs(t, err, application.ErrPollClosed)
	assert.Nil(t, promoted)

	after, err := h.Events.ListEvents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, after, len(before), "promoted event must be rolled back")

	_, _, err = h.Polls.ClosePoll(ctx, application.PollClosure{PollID: 12345, ClosedAt: testfixtures.ReferenceTime()})
	assert.ErrorIs(t, err, application.ErrNotFound)
}

func TestPollRepositoryReopenAfterClose(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	event, poll := h.SeedOpenPoll()
	_, _, err := h.Polls.ClosePoll(ctx, application.PollClosure{PollID: poll.ID, ClosedAt: testfixtures.ReferenceTime()})
	require.NoError(t, err)

	_, err = h.Polls.CreatePoll(ctx, application.Poll{EventID: event.ID, Status: application.PollOpen, OpenedAt: testfixtures.ReferenceTime()})
	assert.ErrorIs(t, err, application.ErrPollAlreadyOpen, "an event keeps its single poll")

	next := h.SeedEvent()
	created, err := h.Polls.CreatePoll(ctx, application.Poll{EventID: next.ID, Status: application.PollOpen, OpenedAt: testfixtures.ReferenceTime()})
	require.NoError(t, err)

	byEvent, err := h.Polls.GetPollByEvent(ctx, next.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEvent.ID)
}
