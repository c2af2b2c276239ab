package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Gather/internal/config"
	"github.com/dkeye/Gather/internal/core"
)

func testConfig() *config.Config {
	return &config.Config{
		Mode:           "release",
		Port:           0,
		ReadLimit:      30000,
		JoinTimeout:    10 * time.Second,
		RoomBacklog:    64,
		SweepInterval:  time.Minute,
		RoomTTL:        720 * time.Hour,
		AllowedOrigins: []string{"*"},
	}
}

func newTestRouter(t *testing.T) (*core.Registry, http.Handler) {
	t.Helper()
	reg := core.NewRegistry(64)
	return reg, SetupRouter(context.Background(), testConfig(), reg)
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetRoom(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/rooms", `{"username":"alice"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var created CreateRoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Len(t, string(created.RoomID), 36)
	assert.Equal(t, 5, len(strings.Split(string(created.RoomID), "-")))
	assert.NotEmpty(t, created.OwnerToken)
	assert.NotEmpty(t, created.MemberToken)
	assert.NotEqual(t, created.OwnerToken, created.MemberToken)
	assert.Equal(t, "alice", string(created.Username))

	w = doJSON(t, r, http.MethodGet, "/api/rooms/"+string(created.RoomID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info RoomInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.True(t, info.Exists)
	assert.False(t, info.HasPassword)
}

func TestCreateRoomWithPassword(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/rooms", `{"username":"alice","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var created CreateRoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, http.MethodGet, "/api/rooms/"+string(created.RoomID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info RoomInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.True(t, info.Exists)
	assert.True(t, info.HasPassword)
}

func TestCreateRoomValidation(t *testing.T) {
	_, r := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing username", body: `{}`},
		{name: "username too short", body: `{"username":"a"}`},
		{name: "username bad charset", body: `{"username":"al ice"}`},
		{name: "password too short", body: `{"username":"alice","password":"abc"}`},
		{name: "malformed body", body: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/rooms", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetUnknownRoom(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/rooms/550e8400-e29b-41d4-a716-446655440000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info RoomInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.False(t, info.Exists)

	w = doJSON(t, r, http.MethodGet, "/api/rooms/not-a-room-id-at-all-really-not-one", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteRoomAuthorization(t *testing.T) {
	_, r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/rooms", `{"username":"alice"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created CreateRoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := "/api/rooms/" + string(created.RoomID)

	// missing header
	w = doJSON(t, r, http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// wrong owner token: room stays resolvable
	w = doJSON(t, r, http.MethodDelete, path, "", map[string]string{"X-Owner-Token": created.MemberToken})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info RoomInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.True(t, info.Exists)

	// correct owner token
	w = doJSON(t, r, http.MethodDelete, path, "", map[string]string{"X-Owner-Token": created.OwnerToken})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, path, "", map[string]string{"X-Owner-Token": created.OwnerToken})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.False(t, info.Exists)
}
