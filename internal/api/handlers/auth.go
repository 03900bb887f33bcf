package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rahulvm-dev/messagely/internal/auth"
	"github.com/rahulvm-dev/messagely/internal/models"
	"github.com/rahulvm-dev/messagely/internal/repositories"
	"github.com/rahulvm-dev/messagely/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler serves registration and login. Collaborators are injected
// so tests can run against fakes with per-test secrets and costs.
type AuthHandler struct {
	Users  repositories.UserStore
	Hasher *auth.PasswordHasher
	Tokens *auth.TokenService
}

func NewAuthHandler(users repositories.UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{Users: users, Hasher: hasher, Tokens: tokens}
}

// POST /auth/register
// Register godoc
// @Summary Register a new user
// @Description Creates an account and returns a session token.
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload "User registered"
// @Failure 400 {object} utils.Payload "Invalid input or username taken"
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	var input struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
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

	if input.Username == "" || input.Password == "" || input.FirstName == "" || input.LastName == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	// Check if username already exists
	_, err := h.Users.FindByUsername(input.Username)
	switch err {
	case nil:
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Username is already taken",
		})
		return
	case gorm.ErrRecordNotFound:
		// new user, continue
	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database query failed",
		})
		return
	}

	hashedPassword, err := h.Hasher.Hash(input.Password)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to hash password",
		})
		return
	}

	newUser := models.User{
		Username:  input.Username,
		Password:  hashedPassword,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	}

	if err := h.Users.Create(&newUser); err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database insert failed",
		})
		return
	}

	// Registering logs the user in, so the login timestamp is recorded
	// before the token goes out.
	if err := h.Users.UpdateLastLogin(newUser.Username, time.Now()); err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database update failed",
		})
		return
	}

	tokenString, err := h.Tokens.Issue(newUser.Username)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to create token",
		})
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "User registered successfully",
		Data:    map[string]string{"token": tokenString},
	})
}

// POST /auth/login
// Login godoc
// @Summary Log in
// @Description Verifies credentials and returns a session token.
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} utils.Payload "Login successful"
// @Failure 401 {object} utils.Payload "Invalid credentials"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.JSONResponse(w, http.StatusMethodNotAllowed, utils.Payload{
			Success: false,
			Message: "Method not allowed",
		})
		return
	}

	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
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

	if input.Username == "" || input.Password == "" {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	user, err := h.Users.FindByUsername(input.Username)
	switch err {
	case nil:
		// user found
	case gorm.ErrRecordNotFound:
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Invalid credentials",
		})
		return
	default:
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database error",
		})
		return
	}

	if !h.Hasher.Verify(input.Password, user.Password) {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Invalid credentials",
		})
		return
	}

	if err := h.Users.UpdateLastLogin(user.Username, time.Now()); err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Database update failed",
		})
		return
	}

	tokenString, err := h.Tokens.Issue(user.Username)
	if err != nil {
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Failed to create token",
		})
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Login successful",
		Data:    map[string]string{"token": tokenString},
	})
}
