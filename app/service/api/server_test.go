package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipechat/app/config"
	"recipechat/app/model"
	"recipechat/app/service/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	enabled bool
}

func (f fakeTranscriber) Enabled() bool {
	return f.enabled
}

func (f fakeTranscriber) Transcribe(_ context.Context, filename string, audio io.Reader) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}
	return "سمعت " + string(data) + " من " + filename, nil
}

func newTestServer(t *testing.T, transcriber Transcriber) *Server {
	t.Helper()

	storeSvc, err := store.NewService(t.TempDir())
	require.NoError(t, err)

	return NewServer(context.Background(), config.Server{
		Listen:         ":0",
		AllowedOrigins: "*",
	}, storeSvc, transcriber, nil)
}

func doJSON(t *testing.T, s *Server, method, target string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	return send(t, s, req)
}

func send(t *testing.T, s *Server, req *http.Request) (int, map[string]any) {
	t.Helper()

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		_ = json.Unmarshal(data, &result)
	}

	return resp.StatusCode, result
}

func signupBody() map[string]any {
	return map[string]any{
		"email":      "mona@example.com",
		"password":   "secret",
		"gender":     "female",
		"name":       "منى",
		"profession": "engineer",
		"likes":      []string{"محشي"},
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, fakeTranscriber{})

	code, body := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestSignupAndLogin(t *testing.T) {
	s := newTestServer(t, fakeTranscriber{})

	code, body := doJSON(t, s, http.MethodPost, "/signup", signupBody())
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["user_id"])

	code, _ = doJSON(t, s, http.MethodPost, "/signup", signupBody())
	assert.Equal(t, http.StatusConflict, code)

	code, body = doJSON(t, s, http.MethodPost, "/signup", map[string]any{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["detail"])

	code, body = doJSON(t, s, http.MethodPost, "/login", map[string]any{
		"email":    "mona@example.com",
		"password": "secret",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "mona@example.com", body["email"])

	code, _ = doJSON(t, s, http.MethodPost, "/login", map[string]any{
		"email":    "mona@example.com",
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = doJSON(t, s, http.MethodPost, "/login", map[string]any{"email": "mona@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t, fakeTranscriber{})

	code, _ := doJSON(t, s, http.MethodGet, "/get-profile?email=mona@example.com", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, s, http.MethodPost, "/signup", signupBody())
	require.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, s, http.MethodPost, "/update-profile", map[string]any{
		"email":       "mona@example.com",
		"field":       "allergies",
		"updatedList": []string{"جمبري"},
	})
	assert.Equal(t, http.StatusOK, code)

	code, _ = doJSON(t, s, http.MethodPost, "/update-profile", map[string]any{
		"email":       "mona@example.com",
		"field":       "password",
		"updatedList": []string{"x"},
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := doJSON(t, s, http.MethodGet, "/get-profile?email=mona@example.com", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "منى", body["name"])
	assert.Equal(t, []any{"محشي"}, body["likes"])
	assert.Equal(t, []any{"جمبري"}, body["allergies"])

	code, _ = doJSON(t, s, http.MethodGet, "/get-profile", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFavorites(t *testing.T) {
	s := newTestServer(t, fakeTranscriber{})

	favorite := map[string]any{
		"email":  "mona@example.com",
		"title":  "شوربة عدس",
		"recipe": "عدس، جزر، بصل",
	}

	code, _ := doJSON(t, s, http.MethodPost, "/add-favourite", favorite)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = doJSON(t, s, http.MethodPost, "/signup", signupBody())
	require.Equal(t, http.StatusOK, code)

	code, body := doJSON(t, s, http.MethodPost, "/add-favourite", favorite)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])

	code, body = doJSON(t, s, http.MethodPost, "/add-favourite", favorite)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "exists", body["status"])

	code, _ = doJSON(t, s, http.MethodPost, "/add-favourite", map[string]any{"email": "mona@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = doJSON(t, s, http.MethodGet, "/get-favourites?email=mona@example.com", nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["favourites"], 1)

	entry := body["favourites"].([]any)[0].(map[string]any)
	assert.Equal(t, "شوربة عدس", entry["title"])
	assert.Equal(t, "عدس، جزر، بصل", entry["recipe"])
}

func TestChatLogs(t *testing.T) {
	s := newTestServer(t, fakeTranscriber{})

	require.NoError(t, s.store.PersistTurns(context.Background(), "mona@example.com", []model.Turn{
		{Role: model.RoleUser, Text: "ازيك"},
		{Role: model.RoleAssistant, Text: "تمام"},
	}))

	code, body := doJSON(t, s, http.MethodGet, "/get-chat-logs?email=mona@example.com", nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["chats"], 1)

	chat := body["chats"].([]any)[0].(map[string]any)
	assert.Len(t, chat["chat"], 2)
}

func audioRequest(t *testing.T, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/transcribe-audio", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req
}

func TestTranscribeAudio(t *testing.T) {
	disabled := newTestServer(t, fakeTranscriber{})

	code, _ := send(t, disabled, audioRequest(t, "abc"))
	assert.Equal(t, http.StatusServiceUnavailable, code)

	enabled := newTestServer(t, fakeTranscriber{enabled: true})

	code, body := send(t, enabled, audioRequest(t, "abc"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "سمعت abc من audio.webm", body["text"])

	code, _ = doJSON(t, enabled, http.MethodPost, "/transcribe-audio", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestChatRequiresUpgrade(t *testing.T) {
	s := newTestServer(t, fakeTranscriber{})

	code, _ := doJSON(t, s, http.MethodGet, "/ws/chat", nil)
	assert.Equal(t, http.StatusUpgradeRequired, code)
}
