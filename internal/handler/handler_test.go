package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/retrieval"
	"github.com/user/garybot/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeChat struct {
	reply    model.Reply
	err      error
	resetErr error
	requests []service.AskRequest
	resets   []string
}

func (f *fakeChat) Ask(_ context.Context, req service.AskRequest) (model.Reply, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeChat) Reset(_ context.Context, sessionID string) (int64, error) {
	f.resets = append(f.resets, sessionID)
	return 1, f.resetErr
}

type fakeStatus struct {
	status *model.DatabaseStatus
	err    error
}

func (f fakeStatus) Status(context.Context) (*model.DatabaseStatus, error) {
	return f.status, f.err
}

func newTestRouter(chat *fakeChat, status fakeStatus) *gin.Engine {
	episodes := retrieval.NewSearcher(retrieval.NewMemoryStore(
		model.Episode{ID: 1, Season: model.IntPtr(1), Number: model.IntPtr(2), Title: model.StrPtr("Sandy's Rocket"), Summary: model.StrPtr("Gary finds Sandy's old rocket buried in the yard.")},
		model.Episode{ID: 2, Title: model.StrPtr("Rock Bottom"), Summary: model.StrPtr("SpongeBob gets lost.")},
	))
	h := NewHandler(chat, episodes, status, nil)

	r := gin.New()
	r.GET("/health", h.Health)
	r.POST("/ask", h.Ask)
	r.POST("/reset", h.Reset)
	r.GET("/api/episodes/search", h.SearchEpisodes)
	r.GET("/api/status", h.DatabaseStatus)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "ref.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAsk(t *testing.T) {
	chat := &fakeChat{reply: model.Reply{Type: model.ReplyImage, Content: "/images/a.png"}}
	r := newTestRouter(chat, fakeStatus{})

	body, ct := multipartBody(t, map[string]string{
		"question":             "dibújame",
		"session_id":           "s1",
		"character_sheet_path": "data/ficha/gary.yaml",
	}, []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/ask", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"type":"image","content":"/images/a.png"}`, w.Body.String())
	require.Len(t, chat.requests, 1)
	assert.Equal(t, service.AskRequest{
		Question:  "dibújame",
		SessionID: "s1",
		Image:     []byte("png"),
		SheetPath: "data/ficha/gary.yaml",
	}, chat.requests[0])
}

func TestAsk_WithoutImage(t *testing.T) {
	chat := &fakeChat{reply: model.Reply{Type: model.ReplyText, Content: "Miau"}}
	r := newTestRouter(chat, fakeStatus{})

	body, ct := multipartBody(t, map[string]string{"question": "hola", "session_id": "s1"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/ask", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, chat.requests, 1)
	assert.Nil(t, chat.requests[0].Image)
}

func TestAsk_Errors(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		chat := &fakeChat{}
		r := newTestRouter(chat, fakeStatus{})
		body, ct := multipartBody(t, map[string]string{"question": "hola"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/ask", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, chat.requests)
	})

	t.Run("invalid sheet", func(t *testing.T) {
		chat := &fakeChat{err: service.ErrInvalidSheetPath}
		r := newTestRouter(chat, fakeStatus{})
		body, ct := multipartBody(t, map[string]string{"question": "hola", "session_id": "s1"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/ask", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		chat := &fakeChat{err: errors.New("db down")}
		r := newTestRouter(chat, fakeStatus{})
		body, ct := multipartBody(t, map[string]string{"question": "hola", "session_id": "s1"}, nil)
		req := httptest.NewRequest(http.MethodPost, "/ask", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"type":"text","content":"Miau... (Tuve un problema para pensar)."}`, w.Body.String())
	})
}

func TestReset(t *testing.T) {
	chat := &fakeChat{}
	r := newTestRouter(chat, fakeStatus{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reset", strings.NewReader(`{"session_id":"abc"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Historial para la sesión abc ha sido reiniciado."}`, w.Body.String())
	assert.Equal(t, []string{"abc"}, chat.resets)

	chat.resetErr = errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reset", strings.NewReader(`{"session_id":"abc"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Error al reiniciar el historial."}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reset", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Items []EpisodeHit `json:"items"`
	} `json:"data"`
}

func TestSearchEpisodes(t *testing.T) {
	r := newTestRouter(&fakeChat{}, fakeStatus{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/episodes/search?q=sandy+rocket", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, 1, resp.Data.Items[0].Episode.ID)
	assert.Equal(t, "[S01E02] Sandy's Rocket — Gary finds Sandy's old rocket buried in the yard.", resp.Data.Items[0].Citation)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/episodes/search?q=y+o+de", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Items)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/episodes/search", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEpisodes_Limit(t *testing.T) {
	r := newTestRouter(&fakeChat{}, fakeStatus{})

	var resp searchResponse
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/episodes/search?q=gary+spongebob", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Items, 2)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/episodes/search?q=gary+spongebob&limit=0", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Data.Items)

	for _, bad := range []string{"-1", "muchos"} {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/episodes/search?q=gary&limit="+bad, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestDatabaseStatus(t *testing.T) {
	r := newTestRouter(&fakeChat{}, fakeStatus{status: &model.DatabaseStatus{TotalEpisodes: 4, EnrichedEpisodes: 1, Pending: 3, Percentage: 25}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":200,"message":"success","success":true,
		"data":{"total_episodes":4,"enriched_episodes":1,"pending_episodes":3,"percentage":25}}`, w.Body.String())

	r = newTestRouter(&fakeChat{}, fakeStatus{err: errors.New("db down")})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeChat{}, fakeStatus{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
