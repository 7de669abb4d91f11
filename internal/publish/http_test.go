package publish

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(service *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, service)
	return router
}

func TestServeSetsCacheControlAndContentType(t *testing.T) {
	env := newTestEnv()
	env.addObject("img/logo.png", []byte{0x89, 'P', 'N', 'G'})
	router := newTestRouter(env.service)

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/s/alice/demo/img/logo.png", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Cache-Control"); got != "public, max-age=3600" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if got := rr.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("Content-Type = %q", got)
	}
}

func TestServeRootServesIndex(t *testing.T) {
	env := newTestEnv()
	env.addObject("index.html", []byte("<html><head></head></html>"))
	router := newTestRouter(env.service)

	rr := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/s/alice/demo", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "<base href=") {
		t.Fatalf("expected injected base tag in body")
	}
}

func TestServeOpaque404(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env.service)

	bodies := map[string]bool{}
	for _, path := range []string{
		"/s/nobody/demo",
		"/s/alice/missing-site",
		"/s/alice/demo/missing.css",
	} {
		rr := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", path, rr.Code)
		}
		bodies[rr.Body.String()] = true
	}
	if len(bodies) != 1 {
		t.Fatalf("404 bodies must not distinguish cause: %v", bodies)
	}
}
