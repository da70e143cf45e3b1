package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rationbook/internal/cache"
	"rationbook/internal/models"
	"rationbook/internal/ration"
)

type stubService struct {
	upsertRes ration.UpsertResult
	upsertErr error
	readRes   ration.ReadResult
	readErr   error
}

func (s *stubService) Upsert(ctx context.Context, req models.SubmitRequest) (ration.UpsertResult, error) {
	return s.upsertRes, s.upsertErr
}

func (s *stubService) Read(ctx context.Context, name, weekStart string) (ration.ReadResult, error) {
	return s.readRes, s.readErr
}

type stubNames struct {
	rows  [][]string
	err   error
	calls int
}

func (s *stubNames) ReadNamelist(ctx context.Context) ([][]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubNames) NamelistCacheKey() string { return "sid:Namelist:A2:A" }

func newTestRouter(svc RationService, names NamelistSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewHandler(svc, names, cache.New(time.Minute, nil), zerolog.Nop())
	RegisterRoutes(engine.Group("/api"), h)
	return engine
}

func TestSubmitRation(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &stubService{upsertRes: ration.UpsertResult{WeekStart: "2025-06-16", Updated: 5, Appended: 0}}
		router := newTestRouter(svc, &stubNames{})

		body, _ := json.Marshal(models.SubmitRequest{
			Name:       "Alice",
			RationType: "vi",
			WeekStart:  "2025-06-16",
			Plan:       &models.WeekPlan{WeekStart: "2025-06-16", Days: map[string]models.DayPlan{}},
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rations", bytes.NewReader(body))
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var res models.SubmitResponse
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatal(err)
		}
		if !res.OK || res.Updated != 5 || res.Appended != 0 || res.TotalWritten != 5 {
			t.Errorf("unexpected response: %+v", res)
		}
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		svc := &stubService{upsertErr: &ration.ValidationError{Field: "rationType"}}
		router := newTestRouter(svc, &stubNames{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rations", bytes.NewReader([]byte(`{"name":"Alice"}`)))
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
		var res map[string]string
		json.Unmarshal(w.Body.Bytes(), &res)
		if res["error"] != "Missing rationType" {
			t.Errorf("error = %q", res["error"])
		}
	})

	t.Run("store error maps to 500", func(t *testing.T) {
		svc := &stubService{upsertErr: errors.New("sheet down")}
		router := newTestRouter(svc, &stubNames{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rations", bytes.NewReader([]byte(`{}`)))
		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", w.Code)
		}
		var res map[string]string
		json.Unmarshal(w.Body.Bytes(), &res)
		if res["error"] != "Failed to add ration" {
			t.Errorf("error = %q, internal detail must not leak", res["error"])
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(&stubService{}, &stubNames{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/rations", bytes.NewReader([]byte("{nope")))
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestGetRation(t *testing.T) {
	rt := "vi"
	svc := &stubService{readRes: ration.ReadResult{
		WeekStart:  "2025-06-16",
		RationType: &rt,
		Plan: models.WeekPlan{WeekStart: "2025-06-16", Days: map[string]models.DayPlan{
			"2025-06-17": {Enabled: true, Meals: models.MealFlags{L: true}},
		}},
	}}
	router := newTestRouter(svc, &stubNames{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/rations?name=Alice&weekStart=2025-06-16", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res models.ReadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.OK || res.Name != "Alice" || res.WeekStart != "2025-06-16" {
		t.Errorf("unexpected response: %+v", res)
	}
	if res.RationType == nil || *res.RationType != "vi" {
		t.Errorf("rationType = %v", res.RationType)
	}
	if !res.Plan.Days["2025-06-17"].Meals.L {
		t.Error("plan lost in transit")
	}

	t.Run("missing query param", func(t *testing.T) {
		svc := &stubService{readErr: &ration.ValidationError{Field: "weekStart"}}
		router := newTestRouter(svc, &stubNames{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/rations?name=Alice", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})
}

func TestGetNamelist(t *testing.T) {
	names := &stubNames{rows: [][]string{{"Alice"}, {"Bob"}}}
	router := newTestRouter(&stubService{}, names)

	get := func(url string) (int, models.NamelistResponse) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		router.ServeHTTP(w, req)
		var res models.NamelistResponse
		json.Unmarshal(w.Body.Bytes(), &res)
		return w.Code, res
	}

	// First hit goes to the API and fills the cache.
	code, res := get("/api/namelist")
	if code != http.StatusOK || res.Source != "api" || len(res.Rows) != 2 {
		t.Fatalf("first call: code=%d res=%+v", code, res)
	}

	// Second hit is served from cache.
	code, res = get("/api/namelist")
	if code != http.StatusOK || res.Source != "cache" {
		t.Fatalf("second call: code=%d source=%s", code, res.Source)
	}
	if names.calls != 1 {
		t.Errorf("namelist fetched %d times, want 1", names.calls)
	}

	// reload=true bypasses the cache read but still counts a fetch.
	code, res = get("/api/namelist?reload=true")
	if code != http.StatusOK || res.Source != "api_forced" {
		t.Fatalf("forced call: code=%d source=%s", code, res.Source)
	}
	if names.calls != 2 {
		t.Errorf("namelist fetched %d times, want 2", names.calls)
	}

	t.Run("upstream failure", func(t *testing.T) {
		router := newTestRouter(&stubService{}, &stubNames{err: errors.New("boom")})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/namelist", nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", w.Code)
		}
	})
}
