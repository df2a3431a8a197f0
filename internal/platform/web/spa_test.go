package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	fsys := fstest.MapFS{
		"index.html":    {Data: []byte("<html>app</html>")},
		"assets/app.js": {Data: []byte("console.log(1)")},
	}
	r := gin.New()
	r.NoRoute(SPA(fsys, "/api/", "/uploads/"))
	return r
}

func get(r http.Handler, p string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
	return w
}

func TestSPAServesFilesAndFallsBack(t *testing.T) {
	r := newRouter()

	w := get(r, "/assets/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())
	assert.Contains(t, w.Header().Get("Cache-Control"), "immutable")

	w = get(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>app</html>", w.Body.String())

	w = get(r, "/informes/mensual")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>app</html>", w.Body.String())
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
}

func TestSPASkipsAPI(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusNotFound, get(r, "/api/nope").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/uploads/missing.jpg").Code)
}
