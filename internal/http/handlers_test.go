package httpx

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenroom/internal/room"
	"screenroom/pkg/auth"
)

func newTestAPI() (*RoomsAPI, *room.Registry) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := room.NewRegistry(logger)
	return &RoomsAPI{
		Registry: reg,
		Tokens:   auth.New("test-secret"),
		TokenTTL: time.Hour,
	}, reg
}

func doCreate(t *testing.T, api *RoomsAPI) createResp {
	t.Helper()
	rec := httptest.NewRecorder()
	api.Create(rec, httptest.NewRequest(http.MethodPost, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp createResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func doJoin(t *testing.T, api *RoomsAPI, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/join", strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	api.Join(rec, req)
	return rec
}

func TestCreateRoom(t *testing.T) {
	api, reg := newTestAPI()

	resp := doCreate(t, api)
	assert.True(t, resp.IsMaster)
	assert.NotEmpty(t, resp.RoomCode)
	assert.NotEmpty(t, resp.SessionToken)
	assert.True(t, reg.Exists(resp.RoomCode))

	// The token resolves to the identity the registry knows as master.
	id, err := api.Tokens.Resolve(resp.SessionToken)
	require.NoError(t, err)
	role, err := reg.Join(resp.RoomCode, id, "boss")
	require.NoError(t, err)
	assert.Equal(t, room.RoleMaster, role)
}

func TestJoinValidation(t *testing.T) {
	api, _ := newTestAPI()

	for _, body := range []string{
		`{}`,
		`{"roomCode":"abc"}`,
		`{"username":"alice"}`,
		`{"roomCode":"  ","username":"alice"}`,
		`not json`,
	} {
		rec := doJoin(t, api, body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)

		var resp errorResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Message)
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	api, _ := newTestAPI()

	rec := doJoin(t, api, `{"roomCode":"nope","username":"alice"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinFullRoom(t *testing.T) {
	api, _ := newTestAPI()
	created := doCreate(t, api)

	for i := 0; i < room.Capacity; i++ {
		rec := doJoin(t, api, fmt.Sprintf(`{"roomCode":%q,"username":"user%d"}`, created.RoomCode, i), "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJoin(t, api, fmt.Sprintf(`{"roomCode":%q,"username":"late"}`, created.RoomCode), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp errorResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "room is full", resp.Message)

	// The master still gets in with their token.
	rec = doJoin(t, api, fmt.Sprintf(`{"roomCode":%q,"username":"boss"}`, created.RoomCode), created.SessionToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var jr joinResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jr))
	assert.True(t, jr.IsMaster)
}

func TestJoinAsParticipant(t *testing.T) {
	api, reg := newTestAPI()
	created := doCreate(t, api)

	rec := doJoin(t, api, fmt.Sprintf(`{"roomCode":%q,"username":"alice"}`, created.RoomCode), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp joinResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.IsMaster)
	assert.NotEmpty(t, resp.SessionToken)
	assert.Equal(t, 1, reg.Count(created.RoomCode))

	// Re-join with the issued token keeps the same identity.
	rec = doJoin(t, api, fmt.Sprintf(`{"roomCode":%q,"username":"alice"}`, created.RoomCode), resp.SessionToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, reg.Count(created.RoomCode))
}
