package handlers

import (
	"net/http"

	"github.com/rahulvm-dev/messagely/internal/auth"
	"github.com/rahulvm-dev/messagely/internal/repositories"
	"github.com/rahulvm-dev/messagely/internal/utils"
	"gorm.io/gorm"
)

type UserHandler struct {
	Users    repositories.UserStore
	Messages repositories.MessageStore
}

func NewUserHandler(users repositories.UserStore, messages repositories.MessageStore) *UserHandler {
	return &UserHandler{Users: users, Messages: messages}
}

// GET /api/v1/users
// ListUsers godoc
// @Summary List all users
// @Tags Users
// @Produce json
// @Success 200 {object} utils.Payload "Users retrieved"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Router /api/v1/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAuthenticated(r.Context()); err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	users, err := h.Users.ListAll()
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database query failed",
		})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Users retrieved successfully",
		Data:    map[string]any{"users": users},
	})
}

// GET /api/v1/users/{username}
// GetUser godoc
// @Summary Get a user's own profile
// @Description Only the named user may view; other principals get 401.
// @Tags Users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} utils.Payload "User retrieved"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Failure 404 {object} utils.Payload "User not found"
// @Router /api/v1/users/{username} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	if _, err := auth.RequireSamePrincipal(r.Context(), username); err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	user, err := h.Users.FindByUsername(username)
	switch err {
	case nil:
		// found
	case gorm.ErrRecordNotFound:
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "User not found",
		})
		return
	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database query failed",
		})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "User retrieved successfully",
		Data:    map[string]any{"user": user},
	})
}

// GET /api/v1/users/{username}/to
// MessagesToUser godoc
// @Summary Messages received by the user
// @Description Each entry carries the sender's profile.
// @Tags Users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} utils.Payload "Messages retrieved"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Router /api/v1/users/{username}/to [get]
func (h *UserHandler) MessagesToUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	if _, err := auth.RequireSamePrincipal(r.Context(), username); err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	msgs, err := h.Messages.FindByToUser(username)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database query failed",
		})
		return
	}

	out := make([]inboxMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toInboxMessage(m))
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Messages retrieved successfully",
		Data:    map[string]any{"messages": out},
	})
}

// GET /api/v1/users/{username}/from
// MessagesFromUser godoc
// @Summary Messages sent by the user
// @Description Each entry carries the recipient's profile.
// @Tags Users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} utils.Payload "Messages retrieved"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Router /api/v1/users/{username}/from [get]
func (h *UserHandler) MessagesFromUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	if _, err := auth.RequireSamePrincipal(r.Context(), username); err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	msgs, err := h.Messages.FindByFromUser(username)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database query failed",
		})
		return
	}

	out := make([]outboxMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toOutboxMessage(m))
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Messages retrieved successfully",
		Data:    map[string]any{"messages": out},
	})
}
