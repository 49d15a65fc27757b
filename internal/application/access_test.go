package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireActive(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, RequireActive(Principal{}), ErrUnauthorized)
	assert.ErrorIs(t, RequireActive(Principal{UserID: 1, Status: MemberInvited}), ErrForbidden)
	assert.NoError(t, RequireActive(Principal{UserID: 1, Status: MemberActive}))
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, RequireAdmin(Principal{}), ErrUnauthorized)
	assert.ErrorIs(t, RequireAdmin(Principal{UserID: 1, Status: MemberActive}), ErrForbidden)
	assert.NoError(t, RequireAdmin(Principal{UserID: 1, Status: MemberActive, IsAdmin: true}))
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to EventStatus
		ok       bool
	}{
		{EventUpcoming, EventCompleted, true},
		{EventUpcoming, EventCancelled, true},
		{EventUpcoming, EventUpcoming, true},
		{EventCompleted, EventCompleted, true},
		{EventCompleted, EventUpcoming, false},
		{EventCancelled, EventCompleted, false},
		{EventCompleted, EventCancelled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseRSVPStatus(t *testing.T) {
	t.Parallel()

	status, err := ParseRSVPStatus(" Yes ")
	assert.NoError(t, err)
	assert.Equal(t, RSVPYes, status)

	_, err = ParseRSVPStatus("perhaps")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
