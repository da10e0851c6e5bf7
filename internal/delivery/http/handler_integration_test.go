package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grocerlist/usdaimport/config"
	"github.com/grocerlist/usdaimport/internal/domain"
	"github.com/grocerlist/usdaimport/internal/infrastructure/cache"
	"github.com/grocerlist/usdaimport/internal/infrastructure/storage"
	"github.com/grocerlist/usdaimport/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"https://preview-*", "http://localhost:3000"},
		},
	}
}

// failingSearcher always returns err
type failingSearcher struct {
	err error
}

func (f failingSearcher) Search(ctx context.Context, query string, limit int) ([]usecase.SearchResult, error) {
	return nil, f.err
}

// writeSnapshot saves items to a temp snapshot file and returns its store
func writeSnapshot(t *testing.T, items []domain.GroceryItem) *storage.FileStore {
	t.Helper()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "grocery_usda.json"))
	if err := store.Save(context.Background(), items); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}
	return store
}

func snapshotItems() []domain.GroceryItem {
	brand := "Orchard Co"
	fall := domain.SeasonFall
	return []domain.GroceryItem{
		{
			ID: "171688", SourceID: "171688", Name: "Apples, raw, with skin", Category: "Produce",
			Price: domain.PlaceholderPrice, Season: &fall, IsVegan: true, IsGlutenFree: true,
			Nutrients:  []domain.Nutrient{{NutrientName: "Energy", Amount: 52, Unit: "KCAL"}},
			DataSource: domain.DataSourceUSDA,
		},
		{
			ID: "2001", SourceID: "2001", Name: "Apple juice", Category: "Beverages",
			Price: domain.PlaceholderPrice, BrandOwner: &brand, IsGlutenFree: true,
			Nutrients:  []domain.Nutrient{},
			DataSource: domain.DataSourceUSDA,
		},
		{
			ID: "173944", SourceID: "173944", Name: "Bananas, raw", Category: "Produce",
			Price: domain.PlaceholderPrice, IsVegan: true, IsGlutenFree: true,
			Nutrients:  []domain.Nutrient{},
			DataSource: domain.DataSourceUSDA,
		},
	}
}

// setupTestRouter wires the real search service over a snapshot file
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := writeSnapshot(t, snapshotItems())
	service := usecase.NewSearchService(store, cache.NewMemoryCache(cache.DefaultSize, time.Minute), nil)
	return SetupRouter(testConfig(), NewHandler(service, nil), nil)
}

func decodeItems(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var response struct {
		Items []map[string]interface{} `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Items == nil {
		t.Fatalf("response has no items array: %s", w.Body.String())
	}
	return response.Items
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(t)

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "grocerlist-catalogue" {
			t.Errorf("service = %v, want grocerlist-catalogue", response["service"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(t)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

// TestGrocerySearchEndpoint tests keyword search over the snapshot
func TestGrocerySearchEndpoint(t *testing.T) {
	t.Run("returns matching items in snapshot order", func(t *testing.T) {
		router := setupTestRouter(t)

		req, _ := http.NewRequest("GET", "/api/v1/groceries/search?q=apple", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		items := decodeItems(t, w)
		if len(items) != 2 {
			t.Fatalf("got %d items, want 2", len(items))
		}
		if items[0]["id"] != "171688" || items[1]["id"] != "2001" {
			t.Errorf("ids = %v, %v, want 171688, 2001", items[0]["id"], items[1]["id"])
		}
		if items[0]["season"] != "fall" {
			t.Errorf("season = %v, want fall", items[0]["season"])
		}
		if items[0]["brandOwner"] != nil {
			t.Errorf("brandOwner = %v, want null", items[0]["brandOwner"])
		}
		if items[1]["season"] != nil {
			t.Errorf("season = %v, want null", items[1]["season"])
		}
		if _, ok := items[0]["price"]; ok {
			t.Errorf("search results should not carry price")
		}
	})

	t.Run("honors limit", func(t *testing.T) {
		router := setupTestRouter(t)

		req, _ := http.NewRequest("GET", "/api/v1/groceries/search?q=ap&limit=1", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if items := decodeItems(t, w); len(items) != 1 {
			t.Errorf("got %d items, want 1", len(items))
		}
	})

	t.Run("invalid limit falls back to the default", func(t *testing.T) {
		router := setupTestRouter(t)

		req, _ := http.NewRequest("GET", "/api/v1/groceries/search?q=raw&limit=lots", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if items := decodeItems(t, w); len(items) != 2 {
			t.Errorf("got %d items, want 2", len(items))
		}
	})

	t.Run("short query returns no items", func(t *testing.T) {
		router := setupTestRouter(t)

		req, _ := http.NewRequest("GET", "/api/v1/groceries/search?q=a", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if items := decodeItems(t, w); len(items) != 0 {
			t.Errorf("got %d items, want 0", len(items))
		}
	})

	t.Run("missing snapshot returns 500", func(t *testing.T) {
		store := storage.NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
		service := usecase.NewSearchService(store, cache.NewMemoryCache(1, time.Minute), nil)
		router := SetupRouter(testConfig(), NewHandler(service, nil), nil)

		req, _ := http.NewRequest("GET", "/api/v1/groceries/search?q=apple", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})

	t.Run("search failure is reported as JSON", func(t *testing.T) {
		handler := NewHandler(failingSearcher{err: errors.New("snapshot unreadable")}, nil)
		router := SetupRouter(testConfig(), handler, nil)

		req, _ := http.NewRequest("GET", "/api/v1/groceries/search?q=apple", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}

		var response map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["error"] != "USDA search failed: snapshot unreadable" {
			t.Errorf("error = %q", response["error"])
		}
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for preview deployments", func(t *testing.T) {
		router := setupTestRouter(t)

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "https://preview-7.grocerlist.app")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		gotOrigin := w.Header().Get("Access-Control-Allow-Origin")
		if gotOrigin != "https://preview-7.grocerlist.app" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", gotOrigin, "https://preview-7.grocerlist.app")
		}
	})

	t.Run("search endpoint has CORS for localhost", func(t *testing.T) {
		router := setupTestRouter(t)

		req, _ := http.NewRequest("GET", "/api/v1/groceries/search?q=apple", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		gotOrigin := w.Header().Get("Access-Control-Allow-Origin")
		if gotOrigin != "http://localhost:3000" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", gotOrigin, "http://localhost:3000")
		}
	})
}

// TestAPIVersioning tests that API v1 routes are correctly versioned
func TestAPIVersioning(t *testing.T) {
	router := setupTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/groceries/search?q=apple", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// TestJSONResponses tests that all responses are valid JSON
func TestJSONResponses(t *testing.T) {
	for _, path := range []string{"/health", "/api/v1/groceries/search?q=banana"} {
		t.Run(path, func(t *testing.T) {
			router := setupTestRouter(t)

			req, _ := http.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			gotContentType := w.Header().Get("Content-Type")
			if !strings.HasPrefix(gotContentType, "application/json") {
				t.Errorf("Content-Type = %q, want application/json", gotContentType)
			}
			if !json.Valid(w.Body.Bytes()) {
				t.Errorf("response is not valid JSON: %s", w.Body.String())
			}
		})
	}
}
