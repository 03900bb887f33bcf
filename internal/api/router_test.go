package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rahulvm-dev/messagely/internal/api"
	"github.com/rahulvm-dev/messagely/internal/api/handlers"
	"github.com/rahulvm-dev/messagely/internal/auth"
	"github.com/rahulvm-dev/messagely/internal/config"
	"github.com/rahulvm-dev/messagely/internal/models"
)

// ---------- in-memory stores ----------

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]models.User{}}
}

func (s *fakeUserStore) Create(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = uuid.New()
	user.JoinedAt = time.Now()
	s.users[user.Username] = *user
	return nil
}

func (s *fakeUserStore) FindByUsername(username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *fakeUserStore) UpdateLastLogin(username string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[username]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.LastLoginAt = &at
	s.users[username] = user
	return nil
}

func (s *fakeUserStore) ListAll() ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profiles := make([]models.Profile, 0, len(s.users))
	for _, u := range s.users {
		profiles = append(profiles, u.Profile())
	}
	return profiles, nil
}

type fakeMessageStore struct {
	mu     sync.Mutex
	users  *fakeUserStore
	nextID uint
	msgs   map[uint]models.Message
}

func newFakeMessageStore(users *fakeUserStore) *fakeMessageStore {
	return &fakeMessageStore{users: users, nextID: 1, msgs: map[uint]models.Message{}}
}

func (s *fakeMessageStore) Create(message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message.ID = s.nextID
	s.nextID++
	message.SentAt = time.Now()
	s.msgs[message.ID] = *message
	return nil
}

func (s *fakeMessageStore) FindByID(id uint) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined(id)
}

// MarkRead mirrors the conditional UPDATE the real store issues: the
// timestamp only lands when read_at is still null.
func (s *fakeMessageStore) MarkRead(id uint, at time.Time) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.msgs[id]
	if !ok {
		return models.Message{}, gorm.ErrRecordNotFound
	}
	if msg.ReadAt == nil {
		msg.ReadAt = &at
		s.msgs[id] = msg
	}
	return s.joined(id)
}

func (s *fakeMessageStore) FindByFromUser(username string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for id, m := range s.msgs {
		if m.FromUsername == username {
			joined, _ := s.joined(id)
			out = append(out, joined)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) FindByToUser(username string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for id, m := range s.msgs {
		if m.ToUsername == username {
			joined, _ := s.joined(id)
			out = append(out, joined)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) joined(id uint) (models.Message, error) {
	msg, ok := s.msgs[id]
	if !ok {
		return models.Message{}, gorm.ErrRecordNotFound
	}
	if from, ok := s.users.users[msg.FromUsername]; ok {
		f := from
		msg.FromUser = &f
	}
	if to, ok := s.users.users[msg.ToUsername]; ok {
		u := to
		msg.ToUser = &u
	}
	return msg, nil
}

// ---------- harness ----------

type envelope struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		JWTSecret:  "test-secret-" + t.Name(),
		BcryptCost: 4,
		TokenTTL:   time.Hour,
		CorsConfig: config.CorsConfig(),
	}
	users := newFakeUserStore()
	messages := newFakeMessageStore(users)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	return api.SetupRouter(
		cfg,
		tokens,
		handlers.NewAuthHandler(users, hasher, tokens),
		handlers.NewUserHandler(users, messages),
		handlers.NewMessageHandler(users, messages),
	)
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec.Code, env
}

func register(t *testing.T, router http.Handler, username, password string) string {
	t.Helper()
	status, env := doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username":   username,
		"password":   password,
		"first_name": "Test",
		"last_name":  "User",
		"phone":      "555-0100",
	})
	require.Equal(t, http.StatusCreated, status)
	var token string
	require.NoError(t, json.Unmarshal(env.Data["token"], &token))
	require.NotEmpty(t, token)
	return token
}

// ---------- tests ----------

func TestRegisterAndLogin(t *testing.T) {
	router := newTestRouter(t)

	register(t, router, "alice", "secret1")

	status, env := doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	var token string
	require.NoError(t, json.Unmarshal(env.Data["token"], &token))
	assert.NotEmpty(t, token)

	status, _ = doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	router := newTestRouter(t)
	register(t, router, "alice", "secret1")

	status, _ := doRequest(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username":   "alice",
		"password":   "another",
		"first_name": "Other",
		"last_name":  "Alice",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLoginRecordsTimestamp(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "secret1")

	status, env := doRequest(t, router, http.MethodGet, "/api/v1/users/alice", token, nil)
	require.Equal(t, http.StatusOK, status)

	var user models.User
	require.NoError(t, json.Unmarshal(env.Data["user"], &user))
	assert.NotNil(t, user.LastLoginAt, "registration should record a login")
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{"/api/v1/users", "/api/v1/messages/1"}
	for _, path := range paths {
		status, _ := doRequest(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}

	// A forged token is as good as no token.
	status, _ := doRequest(t, router, http.MethodGet, "/api/v1/users", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	other := auth.NewTokenService("some-other-secret", time.Hour)
	forged, err := other.Issue("alice")
	require.NoError(t, err)
	status, _ = doRequest(t, router, http.MethodGet, "/api/v1/users", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestUserProfileGuard(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := register(t, router, "alice", "secret1")
	register(t, router, "bob", "secret2")

	status, _ := doRequest(t, router, http.MethodGet, "/api/v1/users/alice", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// alice cannot read bob's profile or mailbox
	status, _ = doRequest(t, router, http.MethodGet, "/api/v1/users/bob", aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = doRequest(t, router, http.MethodGet, "/api/v1/users/bob/to", aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestListUsers(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "secret1")
	register(t, router, "bob", "secret2")

	status, env := doRequest(t, router, http.MethodGet, "/api/v1/users", token, nil)
	require.Equal(t, http.StatusOK, status)

	var users []models.Profile
	require.NoError(t, json.Unmarshal(env.Data["users"], &users))
	assert.Len(t, users, 2)
}

func TestMessageLifecycle(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := register(t, router, "alice", "secret1")
	bobToken := register(t, router, "bob", "secret2")
	carolToken := register(t, router, "carol", "secret3")

	// alice sends bob a message; it starts unread
	status, env := doRequest(t, router, http.MethodPost, "/api/v1/messages", aliceToken, map[string]string{
		"to_username": "bob",
		"body":        "hello bob",
	})
	require.Equal(t, http.StatusCreated, status)

	var created struct {
		ID           uint   `json:"id"`
		FromUsername string `json:"from_username"`
		ToUsername   string `json:"to_username"`
	}
	require.NoError(t, json.Unmarshal(env.Data["message"], &created))
	assert.Equal(t, "alice", created.FromUsername)
	assert.Equal(t, "bob", created.ToUsername)

	// sender and recipient can both fetch it, a stranger cannot
	status, env = doRequest(t, router, http.MethodGet, "/api/v1/messages/1", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	var fetched struct {
		Body   string     `json:"body"`
		ReadAt *time.Time `json:"read_at"`
	}
	require.NoError(t, json.Unmarshal(env.Data["message"], &fetched))
	assert.Equal(t, "hello bob", fetched.Body)
	assert.Nil(t, fetched.ReadAt)

	status, _ = doRequest(t, router, http.MethodGet, "/api/v1/messages/1", aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doRequest(t, router, http.MethodGet, "/api/v1/messages/1", carolToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// only the recipient may mark read
	status, _ = doRequest(t, router, http.MethodPost, "/api/v1/messages/1/read", aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = doRequest(t, router, http.MethodPost, "/api/v1/messages/1/read", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	var marked struct {
		ReadAt *time.Time `json:"read_at"`
	}
	require.NoError(t, json.Unmarshal(env.Data["message"], &marked))
	require.NotNil(t, marked.ReadAt)
	first := *marked.ReadAt

	// re-marking succeeds and keeps the original timestamp
	status, env = doRequest(t, router, http.MethodPost, "/api/v1/messages/1/read", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data["message"], &marked))
	require.NotNil(t, marked.ReadAt)
	assert.True(t, first.Equal(*marked.ReadAt))
}

func TestMessageNotFound(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "secret1")

	status, _ := doRequest(t, router, http.MethodGet, "/api/v1/messages/999", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doRequest(t, router, http.MethodPost, "/api/v1/messages/999/read", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateMessageUnknownRecipient(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "secret1")

	status, _ := doRequest(t, router, http.MethodPost, "/api/v1/messages", token, map[string]string{
		"to_username": "nobody",
		"body":        "hello?",
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMailboxListings(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := register(t, router, "alice", "secret1")
	bobToken := register(t, router, "bob", "secret2")

	for _, body := range []string{"first", "second"} {
		status, _ := doRequest(t, router, http.MethodPost, "/api/v1/messages", aliceToken, map[string]string{
			"to_username": "bob",
			"body":        body,
		})
		require.Equal(t, http.StatusCreated, status)
	}

	status, env := doRequest(t, router, http.MethodGet, "/api/v1/users/bob/to", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	var inbox []struct {
		Body     string         `json:"body"`
		FromUser models.Profile `json:"from_user"`
	}
	require.NoError(t, json.Unmarshal(env.Data["messages"], &inbox))
	require.Len(t, inbox, 2)
	assert.Equal(t, "alice", inbox[0].FromUser.Username)

	status, env = doRequest(t, router, http.MethodGet, "/api/v1/users/alice/from", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	var outbox []struct {
		Body   string         `json:"body"`
		ToUser models.Profile `json:"to_user"`
	}
	require.NoError(t, json.Unmarshal(env.Data["messages"], &outbox))
	require.Len(t, outbox, 2)
	assert.Equal(t, "bob", outbox[0].ToUser.Username)

	status, env = doRequest(t, router, http.MethodGet, "/api/v1/users/bob/from", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	var empty []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data["messages"], &empty))
	assert.Empty(t, empty)
}

func TestHealthIsPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
