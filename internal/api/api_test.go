package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"group_ledger/internal/api"
	"group_ledger/internal/domain"
	"group_ledger/internal/events"
	"group_ledger/internal/store"
	"group_ledger/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const token = "test-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type fixture struct {
	router *gin.Engine
	db     *gorm.DB
	pub    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	pub := &recordingPublisher{}
	return &fixture{router: api.NewRouter(store.New(gdb), pub, token), db: gdb, pub: pub}
}

// do sends a request with an optional JSON body and bearer token
func (f *fixture) do(t *testing.T, method, target string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth_NoTokenRequired(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/health", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestDataEndpoints_RequireToken(t *testing.T) {
	f := newFixture(t)
	msg := map[string]any{"message": "hi", "sender": "alice", "group_name": "g1"}
	tx := map[string]any{"item_id": 1, "item": "bolt", "user": "bob", "amount": 5, "group_name": "g1"}
	seed := f.do(t, http.MethodPost, "/api/messages", msg, token)
	require.Equal(t, http.StatusCreated, seed.Code)

	requests := []struct {
		method string
		target string
		body   any
	}{
		{http.MethodGet, "/api/messages", nil},
		{http.MethodPost, "/api/messages", msg},
		{http.MethodDelete, "/api/messages/1", nil},
		{http.MethodGet, "/api/transactions", nil},
		{http.MethodPost, "/api/transactions", tx},
	}
	for _, bearer := range []string{"", "wrong"} {
		for _, rq := range requests {
			w := f.do(t, rq.method, rq.target, rq.body, bearer)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s with %q", rq.method, rq.target, bearer)
		}
	}

	assert.Equal(t, int64(1), f.count(t, &domain.Message{}), "no message may be created or deleted")
	assert.Equal(t, int64(0), f.count(t, &domain.Transaction{}))
}

func TestDataEndpoints_TokenInQueryAndBody(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/messages?token="+token, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := map[string]any{"token": token, "message": "hi", "sender": "alice", "group_name": "g1"}
	w = f.do(t, http.MethodPost, "/api/messages", body, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "hi", decode[domain.Message](t, w).Message)
}

func TestCreateMessage_OptionalFieldsAreNull(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/messages", map[string]any{"message": "hi", "sender": "alice", "group_name": "g1"}, token)

	require.Equal(t, http.StatusCreated, w.Code)
	raw := decode[map[string]any](t, w)
	assert.Contains(t, raw, "item_id")
	assert.Nil(t, raw["item_id"])
	assert.Contains(t, raw, "amount")
	assert.Nil(t, raw["amount"])
	assert.NotZero(t, raw["id"])
	assert.NotEmpty(t, raw["created_at"])
	assert.Equal(t, "hi", raw["message"])
	assert.Equal(t, "alice", raw["sender"])
	assert.Equal(t, "g1", raw["group_name"])

	require.Len(t, f.pub.Events(), 1)
	assert.Equal(t, events.MessageCreated, f.pub.Events()[0].Type)
	assert.Equal(t, "g1", f.pub.Events()[0].GroupName)
}

func TestCreateMessage_ZeroOptionalsAreKept(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/messages", map[string]any{
		"message": "hi", "sender": "alice", "group_name": "g1", "item_id": 0, "amount": 0,
	}, token)

	require.Equal(t, http.StatusCreated, w.Code)
	m := decode[domain.Message](t, w)
	require.NotNil(t, m.ItemID)
	require.NotNil(t, m.Amount)
	assert.Equal(t, int64(0), *m.ItemID)
	assert.Equal(t, int64(0), *m.Amount)
}

func TestCreateMessage_MissingRequiredField(t *testing.T) {
	f := newFixture(t)
	for _, missing := range []string{"message", "sender", "group_name"} {
		body := map[string]any{"message": "hi", "sender": "alice", "group_name": "g1"}
		delete(body, missing)
		w := f.do(t, http.MethodPost, "/api/messages", body, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, missing)
		assert.Contains(t, decode[map[string]string](t, w)["error"], "Missing required fields")
	}
	w := f.do(t, http.MethodPost, "/api/messages", map[string]any{"message": "", "sender": "alice", "group_name": "g1"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty string counts as missing")

	assert.Equal(t, int64(0), f.count(t, &domain.Message{}))
	assert.Empty(t, f.pub.Events())
}

func TestCreateTransaction_ThenList(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"item_id": 1, "item": "bolt", "user": "bob", "amount": 5, "group_name": "g1",
	}, token)

	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[domain.Transaction](t, w)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, int64(1), created.ItemID)
	assert.Equal(t, "bolt", created.Item)
	assert.Equal(t, "bob", created.User)
	assert.Equal(t, int64(5), created.Amount)
	assert.Equal(t, "g1", created.GroupName)

	w = f.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"item_id": 2, "item": "nut", "user": "bob", "amount": -2, "group_name": "g1",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	newer := decode[domain.Transaction](t, w)

	w = f.do(t, http.MethodGet, "/api/transactions?group_name=g1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]domain.Transaction](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID, "most recent first")
	assert.Equal(t, created.ID, list[1].ID)

	evs := f.pub.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, events.TransactionCreated, evs[0].Type)
}

func TestCreateTransaction_MissingRequiredField(t *testing.T) {
	f := newFixture(t)
	for _, missing := range []string{"item_id", "item", "user", "amount", "group_name"} {
		body := map[string]any{"item_id": 1, "item": "bolt", "user": "bob", "amount": 5, "group_name": "g1"}
		delete(body, missing)
		w := f.do(t, http.MethodPost, "/api/transactions", body, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, missing)
	}
	w := f.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"item_id": 1, "item": "bolt", "user": "bob", "amount": nil, "group_name": "g1",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code, "null amount is undefined")

	assert.Equal(t, int64(0), f.count(t, &domain.Transaction{}))
}

func TestCreateTransaction_ZeroAmountAccepted(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"item_id": 3, "item": "bolt", "user": "bob", "amount": 0, "group_name": "g1",
	}, token)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(0), decode[domain.Transaction](t, w).Amount)
}

func TestCreate_MalformedBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(`{"item_id":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteMessage(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/messages", map[string]any{"message": "hi", "sender": "alice", "group_name": "g1"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	m := decode[domain.Message](t, w)
	target := "/api/messages/" + jsonNumber(m.ID)

	w = f.do(t, http.MethodDelete, "/api/messages/9999", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, int64(1), f.count(t, &domain.Message{}))

	w = f.do(t, http.MethodDelete, target+"?group_name=g2", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code, "partition filter must isolate")
	assert.Equal(t, int64(1), f.count(t, &domain.Message{}))

	w = f.do(t, http.MethodDelete, target+"?group_name=g1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Message deleted"}`, w.Body.String())
	assert.Equal(t, int64(0), f.count(t, &domain.Message{}))

	evs := f.pub.Events()
	require.Len(t, evs, 2)
	assert.Equal(t, events.MessageDeleted, evs[1].Type)

	w = f.do(t, http.MethodDelete, target, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMessage_InvalidID(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"abc", "0", "-1"} {
		w := f.do(t, http.MethodDelete, "/api/messages/"+id, nil, token)
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
}

func TestListMessages_LimitReturnsNewest(t *testing.T) {
	f := newFixture(t)
	var ids []uint
	for i := 0; i < 5; i++ {
		w := f.do(t, http.MethodPost, "/api/messages", map[string]any{"message": "m", "sender": "alice", "group_name": "g1"}, token)
		require.Equal(t, http.StatusCreated, w.Code)
		ids = append(ids, decode[domain.Message](t, w).ID)
	}
	w := f.do(t, http.MethodPost, "/api/messages", map[string]any{"message": "m", "sender": "eve", "group_name": "g2"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodGet, "/api/messages?group_name=g1&limit=2", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]domain.Message](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, ids[4], list[0].ID)
	assert.Equal(t, ids[3], list[1].ID)

	w = f.do(t, http.MethodGet, "/api/messages?group_name=g1&limit=2&offset=2", nil, token)
	list = decode[[]domain.Message](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)

	w = f.do(t, http.MethodGet, "/api/messages?limit=bogus&offset=-4", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Message](t, w), 6, "invalid paging falls back to defaults")
}

func TestList_EmptyIsArray(t *testing.T) {
	f := newFixture(t)
	for _, target := range []string{"/api/messages?group_name=none", "/api/transactions?group_name=none"} {
		w := f.do(t, http.MethodGet, target, nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String(), target)
	}
}

func TestStoreFailure_IsGeneric500(t *testing.T) {
	f := newFixture(t)
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := f.do(t, http.MethodGet, "/api/messages", nil, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch messages"}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/transactions", map[string]any{
		"item_id": 1, "item": "bolt", "user": "bob", "amount": 5, "group_name": "g1",
	}, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to create transaction"}`, w.Body.String())

	w = f.do(t, http.MethodDelete, "/api/messages/1", nil, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, f.pub.Events())
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
