package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	events "productif-agent/contracts/mq"
	"productif-agent/internal/dispatch"
	"productif-agent/internal/intent"
	"productif-agent/internal/model"
	"productif-agent/internal/productif"
	"productif-agent/internal/reply"
	"productif-agent/internal/session"
)

type fakeValidator struct {
	valid map[string]bool
	err   error
	calls int
}

func (f *fakeValidator) ValidateToken(_ context.Context, credential string) (bool, error) {
	f.calls++
	return f.valid[credential], f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	keys   []string
	events []any
}

func (r *recordingPublisher) Publish(_ context.Context, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	r.events = append(r.events, payload)
	return nil
}

type countingCompleter struct {
	label string
	calls int
}

func (c *countingCompleter) Complete(context.Context, string) (string, error) {
	c.calls++
	return c.label, nil
}

type fixture struct {
	pipeline  *Pipeline
	store     *session.MemoryStore
	validator *fakeValidator
	events    *recordingPublisher
	completer *countingCompleter
	apiCalls  map[string]int
}

var fixedNow = time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC)

const user = "33612345678"

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		store:     session.NewMemoryStore(),
		validator: &fakeValidator{valid: map[string]bool{}},
		events:    &recordingPublisher{},
		completer: &countingCompleter{label: "GET_HABITS"},
		apiCalls:  map[string]int{},
	}

	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		f.apiCalls[r.Method+" "+r.URL.Path]++
		mu.Unlock()
		switch r.Method + " " + r.URL.Path {
		case "GET /api/habits/agent":
			_ = json.NewEncoder(w).Encode([]model.Habit{{ID: "h1", Name: "Méditation"}, {ID: "h2", Name: "Note de sa journée"}})
		case "POST /api/habits/agent":
			w.WriteHeader(http.StatusCreated)
		case "PATCH /api/users/preferences":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	logger := zaptest.NewLogger(t)
	dates := intent.NewDateResolver(func() time.Time { return fixedNow }, time.UTC)
	classifier := intent.NewClassifier(f.completer, dates, time.Second, logger)
	dispatcher := dispatch.NewDispatcher(productif.NewClient(srv.URL, time.Second, logger), dispatch.Options{}, logger)

	f.pipeline = New(f.store, classifier, dispatcher, f.validator, f.events, logger)
	f.pipeline.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) handle(t *testing.T, text string) (string, error) {
	return f.pipeline.Handle(context.Background(), model.InboundMessage{ID: "wamid.x", UserID: user, Text: text})
}

func (f *fixture) authenticate(t *testing.T) {
	require.NoError(t, f.store.Save(context.Background(), model.Session{
		UserID: user, Credential: "tok", Authenticated: true,
	}))
}

func TestNewUserGetsWelcome(t *testing.T) {
	f := newFixture(t)

	out, err := f.handle(t, "bonjour")
	require.NoError(t, err)
	assert.Equal(t, reply.Welcome, out)

	sess, found, _ := f.store.Load(context.Background(), user)
	require.True(t, found)
	assert.False(t, sess.Authenticated)
	assert.Zero(t, f.completer.calls)
}

func TestUnauthenticatedUserIsAskedForToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Save(context.Background(), model.Session{UserID: user}))

	out, err := f.handle(t, "j'ai fait méditation")
	assert.ErrorIs(t, err, dispatch.ErrAuthenticationRequired)
	assert.Equal(t, reply.AuthPrompt, out)
	assert.Empty(t, f.apiCalls)
}

func TestTokenAuthenticatesSessionOnce(t *testing.T) {
	f := newFixture(t)
	f.validator.valid["abc.def.ghi"] = true

	out, err := f.handle(t, "abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, reply.TokenAccepted, out)

	sess, _, _ := f.store.Load(context.Background(), user)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "abc.def.ghi", sess.Credential)
	assert.Zero(t, f.completer.calls, "tokens bypass classification")
	assert.Equal(t, []string{events.RoutingSessionAuthenticated}, f.events.keys)

	// 再次提交无效凭证不会让会话回到未认证
	out, err = f.handle(t, "bad.token.here")
	assert.ErrorIs(t, err, dispatch.ErrInvalidCredential)
	assert.Equal(t, reply.TokenRejected, out)
	sess, _, _ = f.store.Load(context.Background(), user)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "abc.def.ghi", sess.Credential)
}

func TestExpiredJWTIsRejectedLocally(t *testing.T) {
	f := newFixture(t)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": fixedNow.Add(-time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	f.validator.valid[expired] = true

	out, err := f.handle(t, expired)
	assert.ErrorIs(t, err, dispatch.ErrInvalidCredential)
	assert.Equal(t, reply.TokenExpired, out)
	assert.Zero(t, f.validator.calls)
}

func TestValidatorErrorDoesNotAuthenticate(t *testing.T) {
	f := newFixture(t)
	f.validator.err = errors.New("network down")

	out, err := f.handle(t, "abc.def.ghi")
	assert.Error(t, err)
	assert.Equal(t, reply.TokenCheckErr, out)
	_, found, _ := f.store.Load(context.Background(), user)
	assert.False(t, found)
}

func TestCompletionPhraseEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.authenticate(t)

	out, err := f.handle(t, "j'ai fait méditation et yoga")
	require.NoError(t, err)
	assert.Contains(t, out, "✅ Habitudes marquées comme terminées :\n• Méditation")
	assert.Contains(t, out, "❌ Habitudes non trouvées :\n• yoga")
	assert.Zero(t, f.completer.calls)
	assert.Equal(t, 1, f.apiCalls["GET /api/habits/agent"])
	assert.Equal(t, 1, f.apiCalls["POST /api/habits/agent"])

	require.Len(t, f.events.events, 1)
	ev := f.events.events[0].(events.DispatchCompletedPayload)
	assert.Equal(t, "complete_items", ev.Intent)
	assert.Equal(t, "phrase", ev.Source)
	assert.Equal(t, 1, ev.Succeeded)
	assert.Equal(t, 1, ev.NotFound)
	assert.Equal(t, "****5678", ev.User)
}

func TestFreeFormGoesThroughCompleter(t *testing.T) {
	f := newFixture(t)
	f.authenticate(t)

	out, err := f.handle(t, "montre-moi mes habitudes")
	require.NoError(t, err)
	assert.Contains(t, out, "📋 Voici le détail de vos habitudes")
	assert.Equal(t, 1, f.completer.calls)
}

func TestPreferencesAreStoredOnSession(t *testing.T) {
	f := newFixture(t)
	f.authenticate(t)
	f.completer.label = "UPDATE_PREFERENCES"

	out, err := f.handle(t, "je me réveille à 7h")
	require.NoError(t, err)
	assert.Contains(t, out, "Réveil : 07:00")

	sess, _, _ := f.store.Load(context.Background(), user)
	assert.Equal(t, "07:00", sess.Preferences.WakeUpTime)
	assert.True(t, sess.Authenticated)
}

func TestLooksLikeToken(t *testing.T) {
	assert.True(t, LooksLikeToken("eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig-_=+/"))
	assert.True(t, LooksLikeToken("  abc.def  "))
	assert.False(t, LooksLikeToken("j'ai fait sport."))
	assert.False(t, LooksLikeToken("bonjour"))
	assert.False(t, LooksLikeToken("⭐ 8"))
}
