package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"hecos/internal/controller"
	"hecos/internal/ingest"
	"hecos/internal/metrics"
	"hecos/internal/model"
)

const monthlyCSV = "Month,Revenue,Orders,TotalUnitsSold,NewCustomers,ReturningCustomers,AverageOrderValue\n" +
	"Jan,1000,10,30,4,6,100\n" +
	"Feb,1234.5,12,40,5,7,102.875\n"

const goalsCSV = "GoalType,CurrentValue,TargetValue,AchievementPercentage,Status,Deadline\n" +
	"Revenue,100,100,100,Excellent,2024-12-31\n"

type testEnv struct {
	router *gin.Engine
	ctrl   *controller.Controller
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sheets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/monthly":
			_, _ = w.Write([]byte(monthlyCSV))
		case "/goals":
			_, _ = w.Write([]byte(goalsCSV))
		case "/empty":
			_, _ = w.Write([]byte("Hour,Sales\n"))
		default:
			http.Error(w, "gone", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(sheets.Close)

	sources := []model.SheetSource{
		{Label: "Monthly Sales Data", URL: sheets.URL + "/monthly", Kind: model.SheetKindMonthlySales},
		{Label: "Goals & Targets", URL: sheets.URL + "/goals", Kind: model.SheetKindGoals},
		{Label: "Hourly Sales Today", URL: sheets.URL + "/empty", Kind: model.SheetKindHourlySales},
		{Label: "Broken", URL: sheets.URL + "/broken", Kind: model.SheetKindDailySales},
	}
	ctrl := controller.New(controller.Config{
		Sources:      sources,
		Fetcher:      ingest.NewClient(5*time.Second, nil),
		TickInterval: 20 * time.Millisecond,
	})
	t.Cleanup(ctrl.Close)
	if err := ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start controller: %v", err)
	}

	h := NewHandler(ctrl, metrics.DefaultRegistry(), nil)
	r := gin.New()
	r.GET("/", h.Page)
	h.RegisterRoutes(r.Group("/api"))

	return &testEnv{router: r, ctrl: ctrl}
}

func (e *testEnv) do(method, path string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) waitState(t *testing.T, index int, want model.FetchState) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if v, err := e.ctrl.View(index); err == nil && v.State == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	v, _ := e.ctrl.View(index)
	t.Fatalf("sheet %d did not reach %s (now %s, err=%s)", index, want, v.State, v.Error)
}

func TestStatusAndSummary(t *testing.T) {
	env := newTestEnv(t)
	env.waitState(t, 0, model.FetchStateReady)

	w := env.do(http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	var status StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if status.Index != 0 || status.State != model.FetchStateReady || status.SheetCount != 4 || status.ClockText == "" {
		t.Fatalf("unexpected status: %+v", status)
	}

	w = env.do(http.MethodGet, "/api/sheets/0/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected summary status: %d", w.Code)
	}
	var resp summaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if resp.Summary == nil || len(resp.Summary.Cards) != 6 || resp.Summary.Cards[0].Value != "$1,234.5" {
		t.Fatalf("unexpected summary: %+v", resp.Summary)
	}

	// 未加载的数据表没有 summary
	w = env.do(http.MethodGet, "/api/sheets/1/summary", "")
	resp = summaryResponse{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal idle summary: %v", err)
	}
	if resp.Summary != nil || resp.State != model.FetchStateIdle {
		t.Fatalf("idle sheet should carry no summary: %+v", resp)
	}
}

func TestSelectSheet(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(http.MethodPost, "/api/sheets/select", `{"index":1}`); w.Code != http.StatusOK {
		t.Fatalf("select: %d body=%s", w.Code, w.Body.String())
	}
	env.waitState(t, 1, model.FetchStateReady)
	if snap := env.ctrl.Snapshot(); snap.Index != 1 {
		t.Fatalf("active not switched: %d", snap.Index)
	}

	if w := env.do(http.MethodPost, "/api/sheets/select", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing index should be 400, got %d", w.Code)
	}
	if w := env.do(http.MethodPost, "/api/sheets/select", `{"index":9}`); w.Code != http.StatusNotFound {
		t.Fatalf("out of range should be 404, got %d", w.Code)
	}

	w := env.do(http.MethodGet, "/api/sheets", "")
	var list listSheetsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if list.Active != 1 || len(list.Items) != 4 || !list.Items[1].Active || list.Items[1].Label != "Goals & Targets" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestFailedSheetAndRefresh(t *testing.T) {
	env := newTestEnv(t)

	if w := env.do(http.MethodPost, "/api/sheets/3/refresh", ""); w.Code != http.StatusAccepted {
		t.Fatalf("refresh: %d", w.Code)
	}
	env.waitState(t, 3, model.FetchStateFailed)

	if w := env.do(http.MethodGet, "/api/sheets/3/export", ""); w.Code != http.StatusConflict {
		t.Fatalf("export without data should be 409, got %d", w.Code)
	}
	if w := env.do(http.MethodPost, "/api/sheets/x/refresh", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad index should be 400, got %d", w.Code)
	}

	// 失败且无缓存的数据表在选中时会重试，等它再次失败后再渲染页面
	if w := env.do(http.MethodPost, "/api/sheets/select", `{"index":3}`); w.Code != http.StatusOK {
		t.Fatalf("select: %d", w.Code)
	}
	env.waitState(t, 3, model.FetchStateFailed)

	w := env.do(http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("page: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Failed to load") {
		t.Fatalf("failed page should show failure:\n%s", w.Body.String())
	}
}

func TestChartAndExport(t *testing.T) {
	env := newTestEnv(t)
	env.waitState(t, 0, model.FetchStateReady)

	w := env.do(http.MethodGet, "/api/sheets/0/charts/revenue-trend", "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("chart: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "<svg") {
		t.Fatalf("chart body is not svg")
	}

	if w := env.do(http.MethodGet, "/api/sheets/0/charts/nope", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown chart should be 404, got %d", w.Code)
	}

	w = env.do(http.MethodGet, "/api/sheets/0/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "hecos-monthly-sales-data.xlsx") {
		t.Fatalf("unexpected disposition: %s", w.Header().Get("Content-Disposition"))
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Data")
	if err != nil || len(rows) != 3 {
		t.Fatalf("unexpected data rows: %v err=%v", rows, err)
	}
}

func TestEmptySheetPage(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/?sheet=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("page: %d", w.Code)
	}
	env.waitState(t, 2, model.FetchStateReady)

	w = env.do(http.MethodGet, "/", "")
	body := w.Body.String()
	if !strings.Contains(body, "No data") || !strings.Contains(body, "HECOS") {
		t.Fatalf("empty sheet page should say No data:\n%s", body)
	}

	if w := env.do(http.MethodGet, "/?sheet=abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid sheet param should be 400, got %d", w.Code)
	}
}

func TestEvents(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "data: ") || !strings.Contains(body, `"clockText"`) {
		t.Fatalf("unexpected event stream: %s", body)
	}
	if strings.Count(body, "data: ") < 2 {
		t.Fatalf("expected several events, got: %s", body)
	}
}
