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

func TestEventRepositoryListOrderAndFilter(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	march := h.SeedEvent(testfixtures.WithEventDate(testfixtures.Date(2024, time.March, 1)))
	may := h.SeedEvent(testfixtures.WithEventDate(testfixtures.Date(2024, time.May, 1)), testfixtures.WithEventStatus(application.EventCompleted))
	april := h.SeedEvent(testfixtures.WithEventDate(testfixtures.Date(2024, time.April, 1)))

	all, err := h.Events.ListEvents(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{may.ID, april.ID, march.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})

	upcoming, err := h.Events.ListEvents(ctx, application.EventUpcoming)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, april.ID, upcoming[0].ID)

	cancelled, err := h.Events.ListEvents(ctx, application.EventCancelled)
	require.NoError(t, err)
	assert.NotNil(t, cancelled)
	assert.Empty(t, cancelled)
}

func TestEventRepositoryUpdate(t *testing.T) {
	h := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	event := h.SeedEvent()

	event.RestaurantName = "St. Elmo"
	event.EventDate = testfixtures.Date(2024, time.June, 30)
	event.Status = application.EventCancelled
	updated, err := h.Events.UpdateEvent(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, "St. Elmo", updated.RestaurantName)
	assert.True(t, updated.EventDate.Equal(testfixtures.Date(2024, time.June, 30)))
	assert.Equal(t, application.EventCancelled, updated.Status)

	_, err = h.Events.GetEvent(ctx, 777)
	assert.ErrorIs(t, err, application.ErrNotFound)
	event.ID = 777
	_, err = h.Events.UpdateEvent(ctx, event)
	assert.ErrorIs(t, err, application.ErrNotFound)
}
