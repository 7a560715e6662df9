package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	intconfig "busmanager/internal/config"
	"busmanager/internal/db"
	"busmanager/internal/db/dbtest"
	"busmanager/internal/domain/models"
	"busmanager/internal/gateway/wire"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	intconfig.DB = dbtest.Open(t)
	intconfig.Dialect = db.DialectSQLite
	t.Cleanup(func() { intconfig.DB = nil })
	return NewRouter(intconfig.Env{CORSAllowedOrigins: []string{"http://localhost:5173"}})
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const busBody = `{"Brand":"ПАЗ","BusModel":"3205","RegisterNumber":"А123ВС","AssemblyDate":"2015-02-01T00:00:00Z","LastRepairDate":"2023-10-10T00:00:00Z"}`

func TestHealthAndRequestID(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID")
	}

	if w := do(t, r, http.MethodGet, "/api/db-check", ""); w.Code != http.StatusOK {
		t.Fatalf("db-check status = %d body=%s", w.Code, w.Body)
	}
	if w := do(t, r, http.MethodGet, "/api/routes-table", ""); !strings.Contains(w.Body.String(), "/api/rpc/:entity/:method") {
		t.Fatalf("routes-table body = %s", w.Body)
	}
}

func TestBusREST(t *testing.T) {
	r := newTestRouter(t)

	if w := do(t, r, http.MethodGet, "/api/buses", ""); w.Body.String() != "[]" {
		t.Fatalf("empty list body = %s", w.Body)
	}

	w := do(t, r, http.MethodPost, "/api/buses", busBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", w.Code, w.Body)
	}
	var bus models.Bus
	if err := json.Unmarshal(w.Body.Bytes(), &bus); err != nil || bus.ID == "" {
		t.Fatalf("create body = %s err=%v", w.Body, err)
	}

	if w := do(t, r, http.MethodPost, "/api/buses", busBody); w.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/buses", `{"Brand":""}`); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status = %d", w.Code)
	}

	upd := strings.Replace(busBody, "ПАЗ", "Scania", 1)
	if w := do(t, r, http.MethodPut, "/api/buses/"+bus.ID, upd); w.Code != http.StatusOK {
		t.Fatalf("update status = %d body=%s", w.Code, w.Body)
	}
	w = do(t, r, http.MethodGet, "/api/buses/"+bus.ID, "")
	if !strings.Contains(w.Body.String(), "Scania") {
		t.Fatalf("get body = %s", w.Body)
	}

	if w := do(t, r, http.MethodDelete, "/api/buses/"+bus.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/buses/"+bus.ID, ""); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", w.Code)
	}
}

func TestRouteLinksAndDetails(t *testing.T) {
	r := newTestRouter(t)

	var route models.Route
	w := do(t, r, http.MethodPost, "/api/routes", `{"Number":"42"}`)
	_ = json.Unmarshal(w.Body.Bytes(), &route)
	var stop models.Stop
	w = do(t, r, http.MethodPost, "/api/stops", `{"Name":"Центр","Lat":55.7558,"Long":37.6173}`)
	_ = json.Unmarshal(w.Body.Bytes(), &stop)
	if route.ID == "" || stop.ID == "" {
		t.Fatalf("setup failed: route=%+v stop=%+v", route, stop)
	}
	if stop.Geohash == "" {
		t.Fatal("stop geohash not computed")
	}

	if w := do(t, r, http.MethodPost, "/api/routes/"+route.ID+"/stops/"+stop.ID, ""); w.Code != http.StatusCreated {
		t.Fatalf("assign status = %d body=%s", w.Code, w.Body)
	}
	if w := do(t, r, http.MethodPost, "/api/routes/"+route.ID+"/stops/"+stop.ID, ""); w.Code != http.StatusConflict {
		t.Fatalf("duplicate assign status = %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/routes/"+route.ID+"/drivers/missing", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing driver status = %d", w.Code)
	}

	var details models.RouteDetails
	w = do(t, r, http.MethodGet, "/api/routes/"+route.ID+"/details", "")
	if err := json.Unmarshal(w.Body.Bytes(), &details); err != nil {
		t.Fatalf("details body = %s", w.Body)
	}
	if details.Route.Number != "42" || len(details.Stops) != 1 {
		t.Fatalf("details = %+v", details)
	}

	w = do(t, r, http.MethodGet, "/api/stops/nearby?lat=55.7559&long=37.6172", "")
	if !strings.Contains(w.Body.String(), stop.ID) {
		t.Fatalf("nearby body = %s", w.Body)
	}
	if w := do(t, r, http.MethodGet, "/api/stops/nearby?lat=x&long=1", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad nearby status = %d", w.Code)
	}

	if w := do(t, r, http.MethodDelete, "/api/routes/"+route.ID+"/stops/"+stop.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("unassign status = %d", w.Code)
	}
}

func TestRPC(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/rpc/bus/GetAll", `{"args":[]}`)
	if w.Code != http.StatusOK || w.Body.String() != "null" {
		t.Fatalf("GetAll = %d %s", w.Code, w.Body)
	}

	args, _ := json.Marshal(map[string][]string{"args": {busBody}})
	w = do(t, r, http.MethodPost, "/api/rpc/bus/Add", string(args))
	if w.Code != http.StatusOK || wire.ErrorOf(w.Body.String()) != "" {
		t.Fatalf("Add = %d %s", w.Code, w.Body)
	}

	w = do(t, r, http.MethodPost, "/api/rpc/bus/Add", string(args))
	if w.Code != http.StatusOK || !strings.Contains(wire.ErrorOf(w.Body.String()), "already exists") {
		t.Fatalf("duplicate Add = %d %s", w.Code, w.Body)
	}

	if w := do(t, r, http.MethodPost, "/api/rpc/bus/Fly", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown procedure status = %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/api/rpc/bus/GetById", `{"args":[]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("arity status = %d", w.Code)
	}
}

func TestFleetReport(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/api/buses", busBody)

	w := do(t, r, http.MethodGet, "/api/reports/fleet", "")
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d body=%s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("body is not a PDF")
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/buses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
}
