package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputMessages(t *testing.T) {
	t.Parallel()

	vErr := validateInput(MemberInput{Email: "not-an-email"})
	require.True(t, vErr.HasErrors())
	assert.Equal(t, "email is invalid", vErr.FieldErrors["email"])

	vErr = validateInput(RestaurantInput{URL: "ftp://example.com"})
	assert.Equal(t, "name is required", vErr.FieldErrors["name"])
	assert.Equal(t, "url must be an absolute http or https URL", vErr.FieldErrors["url"])

	vErr = validateInput(DateInput{Date: "03/14/2024"})
	assert.Equal(t, "suggested_date must be a date formatted YYYY-MM-DD", vErr.FieldErrors["suggested_date"])

	status := "archived"
	vErr = validateInput(EventPatch{Status: &status})
	assert.Equal(t, "status must be one of: upcoming, completed, cancelled", vErr.FieldErrors["status"])

	assert.NoError(t, validateInput(EventInput{RestaurantName: "Keens", EventDate: "2024-03-14"}).errOrNil())
	assert.NoError(t, validateInput(EventPatch{}).errOrNil())
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	date, err := parseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.True(t, date.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))

	_, err = parseDate("2023-02-29")
	assert.Error(t, err)
}

func TestTrimPtr(t *testing.T) {
	t.Parallel()

	assert.Nil(t, trimPtr(nil))
	value := "  padded "
	assert.Equal(t, "padded", *trimPtr(&value))
}
