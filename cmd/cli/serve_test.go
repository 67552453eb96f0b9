package cli

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cv/internal/procfs"
	"cv/internal/procfs/procfstest"
	"cv/internal/progress"
)

func TestWebRouter(t *testing.T) {
	tree := procfstest.New(t)
	tree.AddProcess(7, "dd", "/usr/bin/dd")
	tree.AddFile(7, 0, 4096, 1024)
	router := newWebRouter(progress.NewScanner(procfs.New(tree.Root), progress.Options{Commands: []string{"dd"}}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<title>cv</title>") {
		t.Fatalf("status page: %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/progress/7", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"pid":7`) {
		t.Fatalf("api through web router: %d %q", rec.Code, rec.Body.String())
	}
}
