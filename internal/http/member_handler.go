package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/meatupclub/meatup/internal/application"
)

type memberService interface {
	InviteMember(ctx context.Context, params application.InviteMemberParams) (application.User, error)
	UpdateMember(ctx context.Context, params application.UpdateMemberParams) (application.User, error)
	RemoveMember(ctx context.Context, principal application.Principal, userID int64) error
	ListMembers(ctx context.Context, principal application.Principal) ([]application.User, error)
}

// MemberHandler serves the admin membership endpoints.
type MemberHandler struct {
	service   memberService
	responder responder
	logger    *slog.Logger
}

func NewMemberHandler(service memberService, logger *slog.Logger) *MemberHandler {
	base := defaultLogger(logger)
	return &MemberHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MemberHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MemberHandler", operation, attrs...)
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Create")

	var req memberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode member request", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input := application.MemberInput{}
	if req.Email != nil {
		input.Email = *req.Email
	}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.IsAdmin != nil {
		input.IsAdmin = *req.IsAdmin
	}

	user, err := h.service.InviteMember(r.Context(), application.InviteMemberParams{
		Principal: principalOf(r),
		Input:     input,
	})
	if err != nil {
		logFailure(r.Context(), logger, "member invite failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member invited", "user_id", user.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, memberResponse{Member: toMemberDTO(user)})
}

func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Update")

	var req memberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.WarnContext(r.Context(), "failed to decode member update", "error", err, "error_kind", "bad_request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	userID, err := req.targetID(r)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if req.Status != nil {
		h.responder.handleServiceError(r.Context(), w,
			application.NewValidationError("status", "status cannot be edited; members become active by accepting their invite"))
		return
	}

	user, err := h.service.UpdateMember(r.Context(), application.UpdateMemberParams{
		Principal: principalOf(r),
		UserID:    userID,
		Input: application.MemberPatch{
			Email:   req.Email,
			Name:    req.Name,
			IsAdmin: req.IsAdmin,
		},
	})
	if err != nil {
		logFailure(r.Context(), logger, "member update failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member updated", "user_id", user.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, memberResponse{Member: toMemberDTO(user)})
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Delete")

	var req memberRequest
	if r.URL.Query().Get("user_id") == "" {
		if err := decodeJSON(w, r, &req); err != nil {
			logger.WarnContext(r.Context(), "failed to decode member removal", "error", err, "error_kind", "bad_request")
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
	}
	userID, err := req.targetID(r)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if err := h.service.RemoveMember(r.Context(), principalOf(r), userID); err != nil {
		logFailure(r.Context(), logger, "member removal failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member removed", "user_id", userID)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, removedResponse{Removed: true, UserID: userID})
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	users, err := h.service.ListMembers(r.Context(), principalOf(r))
	if err != nil {
		logFailure(r.Context(), logger, "member list failed", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.DebugContext(r.Context(), "members listed", "result_count", len(users))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMembersResponse{Members: toMemberDTOs(users)})
}

type memberRequest struct {
	UserID  flexibleID `json:"user_id"`
	Email   *string    `json:"email"`
	Name    *string    `json:"name"`
	IsAdmin *bool      `json:"is_admin"`
	Status  *string    `json:"status"`
}

// targetID prefers the user_id query parameter over the body field.
func (m memberRequest) targetID(r *http.Request) (int64, error) {
	if value := r.URL.Query().Get("user_id"); value != "" {
		return parseID("user_id", value)
	}
	return m.UserID.required("user_id")
}

type memberResponse struct {
	Member memberDTO `json:"member"`
}

type listMembersResponse struct {
	Members []memberDTO `json:"members"`
}

type removedResponse struct {
	Removed bool  `json:"removed"`
	UserID  int64 `json:"user_id"`
}
