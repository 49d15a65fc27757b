package http

import (
	"time"

	"github.com/meatupclub/meatup/internal/application"
)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatDate(t time.Time) string {
	return t.UTC().Format(application.DateLayout)
}

func formatOptionalTimestamp(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	formatted := formatTimestamp(*t)
	return &formatted
}

type memberDTO struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Picture   string `json:"picture"`
	IsAdmin   bool   `json:"is_admin"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toMemberDTO(user application.User) memberDTO {
	return memberDTO{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Picture:   user.Picture,
		IsAdmin:   user.IsAdmin,
		Status:    string(user.Status),
		CreatedAt: formatTimestamp(user.CreatedAt),
		UpdatedAt: formatTimestamp(user.UpdatedAt),
	}
}

func toMemberDTOs(users []application.User) []memberDTO {
	out := make([]memberDTO, 0, len(users))
	for _, user := range users {
		out = append(out, toMemberDTO(user))
	}
	return out
}

type summaryDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func toSummaryDTO(summary application.MemberSummary) summaryDTO {
	return summaryDTO{ID: summary.ID, Name: summary.Name, Email: summary.Email, Picture: summary.Picture}
}

type eventDTO struct {
	ID                int64  `json:"id"`
	RestaurantName    string `json:"restaurant_name"`
	RestaurantAddress string `json:"restaurant_address"`
	EventDate         string `json:"event_date"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

func toEventDTO(event application.Event) eventDTO {
	return eventDTO{
		ID:                event.ID,
		RestaurantName:    event.RestaurantName,
		RestaurantAddress: event.RestaurantAddress,
		EventDate:         formatDate(event.EventDate),
		Status:            string(event.Status),
		CreatedAt:         formatTimestamp(event.CreatedAt),
		UpdatedAt:         formatTimestamp(event.UpdatedAt),
	}
}

func toEventDTOs(events []application.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}

type pollDTO struct {
	ID                  int64   `json:"id"`
	EventID             int64   `json:"event_id"`
	Status              string  `json:"status"`
	OpenedAt            string  `json:"opened_at"`
	ClosedAt            *string `json:"closed_at,omitempty"`
	WinningRestaurantID *int64  `json:"winning_restaurant_id,omitempty"`
	WinningDateID       *int64  `json:"winning_date_id,omitempty"`
	PromotedEventID     *int64  `json:"promoted_event_id,omitempty"`
}

func toPollDTO(poll application.Poll) pollDTO {
	return pollDTO{
		ID:                  poll.ID,
		EventID:             poll.EventID,
		Status:              string(poll.Status),
		OpenedAt:            formatTimestamp(poll.OpenedAt),
		ClosedAt:            formatOptionalTimestamp(poll.ClosedAt),
		WinningRestaurantID: poll.WinningRestaurantID,
		WinningDateID:       poll.WinningDateID,
		PromotedEventID:     poll.PromotedEventID,
	}
}

type restaurantDTO struct {
	ID           int64      `json:"id"`
	EventID      int64      `json:"event_id"`
	Name         string     `json:"name"`
	Address      string     `json:"address"`
	Cuisine      string     `json:"cuisine"`
	URL          string     `json:"url"`
	CreatedAt    string     `json:"created_at"`
	SuggestedBy  summaryDTO `json:"suggested_by"`
	VoteCount    int        `json:"vote_count"`
	UserHasVoted bool       `json:"user_has_voted"`
}

func toRestaurantDTO(suggestion application.RestaurantSuggestion) restaurantDTO {
	return restaurantDTO{
		ID:          suggestion.ID,
		EventID:     suggestion.EventID,
		Name:        suggestion.Name,
		Address:     suggestion.Address,
		Cuisine:     suggestion.Cuisine,
		URL:         suggestion.URL,
		CreatedAt:   formatTimestamp(suggestion.CreatedAt),
		SuggestedBy: summaryDTO{ID: suggestion.UserID},
	}
}

func toRestaurantTallyDTO(tally application.Tally[application.RestaurantSuggestion]) restaurantDTO {
	dto := toRestaurantDTO(tally.Suggestion)
	dto.SuggestedBy = toSummaryDTO(tally.Proposer)
	dto.VoteCount = tally.VoteCount
	dto.UserHasVoted = tally.UserHasVoted
	return dto
}

func toRestaurantTallyDTOs(tallies []application.Tally[application.RestaurantSuggestion]) []restaurantDTO {
	out := make([]restaurantDTO, 0, len(tallies))
	for _, tally := range tallies {
		out = append(out, toRestaurantTallyDTO(tally))
	}
	return out
}

type dateDTO struct {
	ID            int64      `json:"id"`
	EventID       int64      `json:"event_id"`
	SuggestedDate string     `json:"suggested_date"`
	CreatedAt     string     `json:"created_at"`
	SuggestedBy   summaryDTO `json:"suggested_by"`
	VoteCount     int        `json:"vote_count"`
	UserHasVoted  bool       `json:"user_has_voted"`
}

func toDateDTO(suggestion application.DateSuggestion) dateDTO {
	return dateDTO{
		ID:            suggestion.ID,
		EventID:       suggestion.EventID,
		SuggestedDate: formatDate(suggestion.SuggestedDate),
		CreatedAt:     formatTimestamp(suggestion.CreatedAt),
		SuggestedBy:   summaryDTO{ID: suggestion.UserID},
	}
}

func toDateTallyDTO(tally application.Tally[application.DateSuggestion]) dateDTO {
	dto := toDateDTO(tally.Suggestion)
	dto.SuggestedBy = toSummaryDTO(tally.Proposer)
	dto.VoteCount = tally.VoteCount
	dto.UserHasVoted = tally.UserHasVoted
	return dto
}

func toDateTallyDTOs(tallies []application.Tally[application.DateSuggestion]) []dateDTO {
	out := make([]dateDTO, 0, len(tallies))
	for _, tally := range tallies {
		out = append(out, toDateTallyDTO(tally))
	}
	return out
}

type rsvpDTO struct {
	ID                  int64       `json:"id"`
	EventID             int64       `json:"event_id"`
	UserID              int64       `json:"user_id"`
	Status              string      `json:"status"`
	DietaryRestrictions string      `json:"dietary_restrictions"`
	CreatedAt           string      `json:"created_at"`
	UpdatedAt           string      `json:"updated_at"`
	Attendee            *summaryDTO `json:"attendee,omitempty"`
}

func toRSVPDTO(rsvp application.RSVP) rsvpDTO {
	return rsvpDTO{
		ID:                  rsvp.ID,
		EventID:             rsvp.EventID,
		UserID:              rsvp.UserID,
		Status:              string(rsvp.Status),
		DietaryRestrictions: rsvp.Comment,
		CreatedAt:           formatTimestamp(rsvp.CreatedAt),
		UpdatedAt:           formatTimestamp(rsvp.UpdatedAt),
	}
}

func toRSVPEntryDTOs(entries []application.RSVPEntry) []rsvpDTO {
	out := make([]rsvpDTO, 0, len(entries))
	for _, entry := range entries {
		dto := toRSVPDTO(entry.RSVP)
		attendee := toSummaryDTO(entry.Attendee)
		dto.Attendee = &attendee
		out = append(out, dto)
	}
	return out
}
