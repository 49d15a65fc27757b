package testfixtures

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meatupclub/meatup/internal/application"
)

func TestServiceFactoryDefaults(t *testing.T) {
	factory := NewServiceFactory()
	require.NotNil(t, factory.Clock)
	assert.Equal(t, "session-1", factory.SessionIDs.Next())
	assert.Equal(t, "token-1", factory.Tokens.Next())

	tokens := NewSequence("bearer")
	assert.Same(t, tokens, NewServiceFactory(WithTokens(tokens)).Tokens)
}

func TestServicesShareHarness(t *testing.T) {
	h := NewSQLiteHarness(t)
	admin := h.SeedMember(AsAdmin())
	services := NewServiceFactory().NewServices(h, NewStaticVerifier(), nil)

	event, err := services.Events.CreateEvent(context.Background(), application.CreateEventParams{
		Principal: admin.Principal(),
		Input:     application.EventInput{RestaurantName: "Peter Luger", EventDate: "2024-03-01"},
	})
	require.NoError(t, err)

	stored, err := h.Events.GetEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Peter Luger", stored.RestaurantName)
}

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier()
	v.Register("good", application.Identity{Email: "a@example.com"})

	identity, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", identity.Email)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrTokenRejected)
}
