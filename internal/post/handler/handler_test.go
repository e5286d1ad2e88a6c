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
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/blogdraft/internal/export"
	"github.com/gogotex/blogdraft/internal/kv"
	"github.com/gogotex/blogdraft/internal/post/repository"
	"github.com/gogotex/blogdraft/internal/post/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{ *kv.MemoryStore }

func (brokenStore) Set(context.Context, string, string) error { return errors.New("disk full") }

type memSaver struct {
	mu    sync.Mutex
	files map[string][]byte
	saved chan string
}

func newMemSaver() *memSaver {
	return &memSaver{files: map[string][]byte{}, saved: make(chan string, 4)}
}

func (m *memSaver) SaveBlob(_ context.Context, data []byte, filename, _ string) (string, error) {
	m.mu.Lock()
	m.files[filename] = data
	m.mu.Unlock()
	m.saved <- filename
	return filename, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(t *testing.T, store kv.Store, saver export.BlobSaver) *gin.Engine {
	t.Helper()
	g := gin.New()
	svc := service.New(repository.New(store, ""))
	RegisterPostRoutes(g, svc, export.NewPipeline(), saver)
	return g
}

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	g.ServeHTTP(w, req)
	return w
}

func TestSaveListGetDeletePost(t *testing.T) {
	g := setup(t, kv.NewMemoryStore(), nil)

	// SAVE DRAFT
	w := do(g, http.MethodPost, "/api/posts", `{"title":"Hello","tags":"go, , web","content":"<p>hi</p>"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var saved map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	id, ok := saved["id"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(id, "post_"))
	assert.Equal(t, []interface{}{"go", "web"}, saved["tags"])
	assert.Equal(t, false, saved["published"])

	// PUBLISH same identity
	w = do(g, http.MethodPost, "/api/posts", `{"id":"`+id+`","title":"Hello v2","tags":"go","content":"<p>hi</p>","published":true}`)
	require.Equal(t, http.StatusOK, w.Code)

	// LIST
	w = do(g, http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Hello v2", list[0]["title"])
	assert.Equal(t, true, list[0]["published"])

	// GET
	w = do(g, http.MethodGet, "/api/posts/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	// DELETE twice
	w = do(g, http.MethodDelete, "/api/posts/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(g, http.MethodDelete, "/api/posts/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(g, http.MethodGet, "/api/posts/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListShowsUntitledAndImages(t *testing.T) {
	g := setup(t, kv.NewMemoryStore(), nil)
	w := do(g, http.MethodPost, "/api/posts", `{"title":"","content":"<p>a<img src=\"data:image/png;base64,AA==\"></p>"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(g, http.MethodGet, "/api/posts", "")
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "(Untitled)", list[0]["displayTitle"])
	assert.Len(t, list[0]["images"], 1)
}

func TestSaveStorageFailureEchoesDraft(t *testing.T) {
	g := setup(t, brokenStore{kv.NewMemoryStore()}, nil)
	w := do(g, http.MethodPost, "/api/posts", `{"title":"Keep me","content":"<p>x</p>"}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Error string `json:"error"`
		Draft struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, "Keep me", body.Draft.Title)
	assert.Empty(t, body.Draft.ID, "a failed first save must not assign identity")
}

func TestEditorOpensStoredOrNewDraft(t *testing.T) {
	g := setup(t, kv.NewMemoryStore(), nil)
	w := do(g, http.MethodPost, "/api/posts", `{"title":"T","tags":"a,b","content":"c"}`)
	var saved map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	id := saved["id"].(string)

	w = do(g, http.MethodGet, "/api/editor/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	type openResponse struct {
		Draft struct {
			ID   string `json:"id"`
			Tags string `json:"tags"`
		} `json:"draft"`
		IsNew bool `json:"isNew"`
	}
	var opened openResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opened))
	assert.Equal(t, id, opened.Draft.ID)
	assert.Equal(t, "a, b", opened.Draft.Tags)
	assert.False(t, opened.IsNew)

	w = do(g, http.MethodGet, "/api/editor/post_missing", "")
	require.Equal(t, http.StatusOK, w.Code)
	var fresh openResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fresh))
	assert.True(t, fresh.IsNew)
	assert.Empty(t, fresh.Draft.ID)
}

func TestExportStoredPost(t *testing.T) {
	g := setup(t, kv.NewMemoryStore(), nil)
	w := do(g, http.MethodPost, "/api/posts", `{"title":"My  Post","tags":"x","content":"<p>body</p>"}`)
	var saved map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	id := saved["id"].(string)

	w = do(g, http.MethodGet, "/api/posts/"+id+"/export/json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "My_Post.json")
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "My  Post", doc["title"])

	w = do(g, http.MethodGet, "/api/posts/"+id+"/export/html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>My  Post</h1>")

	w = do(g, http.MethodGet, "/api/posts/"+id+"/export/rtf", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(g, http.MethodGet, "/api/posts/post_missing/export/json", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportDraftDocx(t *testing.T) {
	g := setup(t, kv.NewMemoryStore(), nil)
	w := do(g, http.MethodPost, "/api/export/docx", `{"title":"","content":"<p>x</p>"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "post.docx")
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestSaveExportSyncAndAsync(t *testing.T) {
	saver := newMemSaver()
	g := setup(t, kv.NewMemoryStore(), saver)

	w := do(g, http.MethodPost, "/api/export/markup/save", `{"title":"Trip Notes","content":"<p>x</p>"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Trip_Notes.html")
	assert.Equal(t, "Trip_Notes.html", <-saver.saved)

	w = do(g, http.MethodPost, "/api/export/pdf/save", `{"title":"Trip Notes","content":"<p>x</p>"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	select {
	case name := <-saver.saved:
		assert.Equal(t, "Trip_Notes.pdf", name)
	case <-time.After(10 * time.Second):
		t.Fatal("fixed-layout export was not delivered")
	}
	saver.mu.Lock()
	defer saver.mu.Unlock()
	assert.True(t, bytes.HasPrefix(saver.files["Trip_Notes.pdf"], []byte("%PDF-")))
}

func TestSaveExportRouteNeedsSaver(t *testing.T) {
	g := setup(t, kv.NewMemoryStore(), nil)
	w := do(g, http.MethodPost, "/api/export/json/save", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEmbedImage(t *testing.T) {
	g := setup(t, kv.NewMemoryStore(), nil)

	upload := func(payload []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("image", "pic.png")
		require.NoError(t, err)
		_, err = fw.Write(payload)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/images", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		g.ServeHTTP(w, req)
		return w
	}

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	w := upload(png)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body["dataUri"], "data:image/png;base64,"))

	w = upload([]byte("just some text"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestEmbedImageIntoContent(t *testing.T) {
	g := setup(t, kv.NewMemoryStore(), nil)
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	upload := func(fields map[string]string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, v := range fields {
			require.NoError(t, mw.WriteField(k, v))
		}
		fw, err := mw.CreateFormFile("image", "pic.png")
		require.NoError(t, err)
		_, err = fw.Write(png)
		require.NoError(t, err)
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/images", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		g.ServeHTTP(w, req)
		return w
	}

	tests := []struct {
		name   string
		offset string
		prefix string
		suffix string
	}{
		{"between paragraphs", "10", "<p>one</p>", "<p>two</p>"},
		{"inside a tag", "12", "<p>one</p><p>", "two</p>"},
		{"past the end", "500", "<p>one</p><p>two</p>", ""},
		{"negative", "-3", "", "<p>one</p><p>two</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := upload(map[string]string{"content": "<p>one</p><p>two</p>", "offset": tt.offset})
			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			tag := `<p><img src="` + body["dataUri"] + `"></p>`
			assert.Equal(t, tt.prefix+tag+tt.suffix, body["content"])
		})
	}

	w := upload(nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body, "content")

	w = upload(map[string]string{"content": "<p>x</p>", "offset": "start"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditorClear(t *testing.T) {
	g := setup(t, kv.NewMemoryStore(), nil)

	w := do(g, http.MethodPost, "/api/editor/clear", `{"id":"p-1","title":"T","tags":"a","content":"<p>c</p>","published":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Draft struct {
			ID        string `json:"id"`
			Title     string `json:"title"`
			Tags      string `json:"tags"`
			Content   string `json:"content"`
			Published bool   `json:"published"`
		} `json:"draft"`
		IsNew bool `json:"isNew"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "p-1", body.Draft.ID, "clearing keeps identity")
	assert.False(t, body.IsNew)
	assert.Empty(t, body.Draft.Title)
	assert.Empty(t, body.Draft.Tags)
	assert.Empty(t, body.Draft.Content)

	w = do(g, http.MethodPost, "/api/editor/clear", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEditorPreviewToggle(t *testing.T) {
	g := setup(t, kv.NewMemoryStore(), nil)
	type previewResponse struct {
		Preview bool    `json:"preview"`
		HTML    *string `json:"html"`
		Draft   struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			Preview bool   `json:"preview"`
		} `json:"draft"`
	}

	w := do(g, http.MethodPost, "/api/editor/preview", `{"title":"Trip","tags":"go, web","content":"<p>day one</p>"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var on previewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &on))
	assert.True(t, on.Preview)
	assert.True(t, on.Draft.Preview)
	assert.Equal(t, "<p>day one</p>", on.Draft.Content, "preview does not touch the content")
	require.NotNil(t, on.HTML)
	assert.Contains(t, *on.HTML, "<h1>Trip</h1>")
	assert.Contains(t, *on.HTML, "go, web")
	assert.Contains(t, *on.HTML, "<p>day one</p>")

	w = do(g, http.MethodPost, "/api/editor/preview", `{"title":"Trip","content":"<p>day one</p>","preview":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	var off previewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &off))
	assert.False(t, off.Preview)
	assert.False(t, off.Draft.Preview)
	assert.Nil(t, off.HTML)
}

func TestSwaggerEndpoints(t *testing.T) {
	g := gin.New()
	RegisterSwagger(g)

	w := do(g, http.MethodGet, "/swagger/index.html", "")
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "swagger-ui")

	w = do(g, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "openapi")
	require.Contains(t, w.Body.String(), "/api/posts/{id}/export/{format}")
	require.Contains(t, w.Body.String(), "/api/images")
	require.Contains(t, w.Body.String(), "/api/editor/clear")
	require.Contains(t, w.Body.String(), "/api/editor/preview")
}
