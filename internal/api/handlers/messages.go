package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rahulvm-dev/messagely/internal/auth"
	"github.com/rahulvm-dev/messagely/internal/models"
	"github.com/rahulvm-dev/messagely/internal/repositories"
	"github.com/rahulvm-dev/messagely/internal/utils"
	"gorm.io/gorm"
)

type MessageHandler struct {
	Users    repositories.UserStore
	Messages repositories.MessageStore
}

func NewMessageHandler(users repositories.UserStore, messages repositories.MessageStore) *MessageHandler {
	return &MessageHandler{Users: users, Messages: messages}
}

// inboxMessage is a received message with the sender's profile joined in.
type inboxMessage struct {
	ID       uint           `json:"id"`
	Body     string         `json:"body"`
	SentAt   time.Time      `json:"sent_at"`
	ReadAt   *time.Time     `json:"read_at"`
	FromUser models.Profile `json:"from_user"`
}

// outboxMessage is a sent message with the recipient's profile joined in.
type outboxMessage struct {
	ID     uint           `json:"id"`
	Body   string         `json:"body"`
	SentAt time.Time      `json:"sent_at"`
	ReadAt *time.Time     `json:"read_at"`
	ToUser models.Profile `json:"to_user"`
}

type messageDetail struct {
	ID       uint           `json:"id"`
	Body     string         `json:"body"`
	SentAt   time.Time      `json:"sent_at"`
	ReadAt   *time.Time     `json:"read_at"`
	FromUser models.Profile `json:"from_user"`
	ToUser   models.Profile `json:"to_user"`
}

func toInboxMessage(m models.Message) inboxMessage {
	out := inboxMessage{ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt}
	if m.FromUser != nil {
		out.FromUser = m.FromUser.Profile()
	}
	return out
}

func toOutboxMessage(m models.Message) outboxMessage {
	out := outboxMessage{ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt}
	if m.ToUser != nil {
		out.ToUser = m.ToUser.Profile()
	}
	return out
}

func toMessageDetail(m models.Message) messageDetail {
	out := messageDetail{ID: m.ID, Body: m.Body, SentAt: m.SentAt, ReadAt: m.ReadAt}
	if m.FromUser != nil {
		out.FromUser = m.FromUser.Profile()
	}
	if m.ToUser != nil {
		out.ToUser = m.ToUser.Profile()
	}
	return out
}

// POST /api/v1/messages
// CreateMessage godoc
// @Summary Send a message
// @Description The sender is the authenticated principal; the recipient must exist.
// @Tags Messages
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload "Message created"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Failure 404 {object} utils.Payload "Recipient not found"
// @Router /api/v1/messages [post]
func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	principal, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	var input struct {
		ToUsername string `json:"to_username"`
		Body       string `json:"body"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	if input.ToUsername == "" || input.Body == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	// The recipient must resolve to a registered user before anything
	// is written.
	_, err = h.Users.FindByUsername(input.ToUsername)
	switch err {
	case nil:
		// recipient exists
	case gorm.ErrRecordNotFound:
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "Recipient not found",
		})
		return
	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database query failed",
		})
		return
	}

	msg := models.Message{
		FromUsername: principal.Username,
		ToUsername:   input.ToUsername,
		Body:         input.Body,
	}

	if err := h.Messages.Create(&msg); err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database insert failed",
		})
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "Message created successfully",
		Data: map[string]any{"message": map[string]any{
			"id":            msg.ID,
			"from_username": msg.FromUsername,
			"to_username":   msg.ToUsername,
			"body":          msg.Body,
			"sent_at":       msg.SentAt,
		}},
	})
}

// GET /api/v1/messages/{id}
// GetMessage godoc
// @Summary Get a message
// @Description Visible to the sender or the recipient; anyone else gets 401.
// @Tags Messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} utils.Payload "Message retrieved"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Failure 404 {object} utils.Payload "Message not found"
// @Router /api/v1/messages/{id} [get]
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	principal, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	id, ok := messageID(w, r)
	if !ok {
		return
	}

	msg, err := h.Messages.FindByID(id)
	switch err {
	case nil:
		// found
	case gorm.ErrRecordNotFound:
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "Message not found",
		})
		return
	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database query failed",
		})
		return
	}

	if !auth.CanViewMessage(principal, msg) {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Message retrieved successfully",
		Data:    map[string]any{"message": toMessageDetail(msg)},
	})
}

// POST /api/v1/messages/{id}/read
// MarkMessageRead godoc
// @Summary Mark a message read
// @Description Only the recipient may mark read. Re-marking an already
// read message succeeds without changing the original timestamp.
// @Tags Messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} utils.Payload "Message marked read"
// @Failure 401 {object} utils.Payload "Unauthorized"
// @Failure 404 {object} utils.Payload "Message not found"
// @Router /api/v1/messages/{id}/read [post]
func (h *MessageHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	principal, err := auth.RequireAuthenticated(r.Context())
	if err != nil {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	id, ok := messageID(w, r)
	if !ok {
		return
	}

	msg, err := h.Messages.FindByID(id)
	switch err {
	case nil:
		// found
	case gorm.ErrRecordNotFound:
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "Message not found",
		})
		return
	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database query failed",
		})
		return
	}

	if !auth.CanMarkRead(principal, msg) {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	// The store applies read_at conditionally, so an already-read
	// message comes back unchanged and the first timestamp survives.
	updated, err := h.Messages.MarkRead(id, time.Now())
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database update failed",
		})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Message marked as read",
		Data: map[string]any{"message": map[string]any{
			"id":      updated.ID,
			"read_at": updated.ReadAt,
		}},
	})
}

func messageID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := r.PathValue("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid message id",
		})
		return 0, false
	}
	return uint(id), true
}
