package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/juliaconfecciones/production-backend/internal/audit"
	"github.com/juliaconfecciones/production-backend/internal/employees"
	"github.com/juliaconfecciones/production-backend/internal/materials"
	"github.com/juliaconfecciones/production-backend/internal/notifications"
	"github.com/juliaconfecciones/production-backend/internal/payments"
	"github.com/juliaconfecciones/production-backend/internal/production"
	"github.com/juliaconfecciones/production-backend/internal/testdb"
	"github.com/juliaconfecciones/production-backend/pkg/config"
	"github.com/juliaconfecciones/production-backend/pkg/db"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
	"github.com/juliaconfecciones/production-backend/pkg/metrics"
	"github.com/juliaconfecciones/production-backend/pkg/outbox"
)

const adminKey = "taller-admin-key"

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "production-backend",
			ExpirationMinutes: 60,
		},
		Admin: config.AdminConfig{APIKey: adminKey},
	}
}

type testServer struct {
	handler http.Handler
	client  *db.Client
}

func newTestServer(t *testing.T, dbPinger db.Pinger) *testServer {
	t.Helper()
	client := testdb.Open(t)
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})

	recorder, err := audit.NewService(audit.NewRepository(client.DB()))
	require.NoError(t, err)
	ledger, err := materials.NewService(materials.NewRepository(client.DB()), recorder, client, logg)
	require.NoError(t, err)
	staff, err := employees.NewService(employees.NewRepository(client.DB()), recorder, client, logg)
	require.NoError(t, err)
	inbox, err := notifications.NewService(notifications.ServiceParams{
		Repo:   notifications.NewRepository(client.DB()),
		Outbox: outbox.NewService(outbox.NewRepository(client.DB()), logg),
		Logger: logg,
	})
	require.NoError(t, err)
	orders := production.NewRepository(client.DB())
	workflow, err := production.NewService(production.ServiceParams{
		Repo:          orders,
		Materials:     ledger,
		Employees:     staff,
		Audit:         recorder,
		Notifications: inbox,
		Tx:            client,
		Logger:        logg,
	})
	require.NoError(t, err)
	pay, err := payments.NewService(payments.ServiceParams{
		Repo:          payments.NewRepository(client.DB()),
		Orders:        orders,
		Employees:     staff,
		Audit:         recorder,
		Notifications: inbox,
		Tx:            client,
		Logger:        logg,
	})
	require.NoError(t, err)

	if dbPinger == nil {
		dbPinger = client
	}
	reg := prometheus.NewRegistry()
	metrics.NewCronJobMetrics(reg).IncSuccess("task-reminders")

	handler := NewRouter(testConfig(), logg, dbPinger, nil, reg, staff, ledger, workflow, pay, recorder, inbox)
	return &testServer{handler: handler, client: client}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func admin() map[string]string { return map[string]string{"X-Admin-Key": adminKey} }

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dest))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	envelope := struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	live := srv.do(t, http.MethodGet, "/health/live", nil, nil)
	require.Equal(t, http.StatusOK, live.Code)
	require.Equal(t, "test", live.Header().Get("X-Production-Env"))

	ready := srv.do(t, http.MethodGet, "/health/ready", nil, nil)
	require.Equal(t, http.StatusOK, ready.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decodeData(t, ready, &body)
	require.Equal(t, "ready", body.Status)
	require.Equal(t, "up", body.Checks["database"])
	require.Equal(t, "skipped", body.Checks["redis"])
}

func TestReadyReportsDatabaseOutage(t *testing.T) {
	srv := newTestServer(t, stubPinger{err: errors.New("connection refused")})
	rec := srv.do(t, http.MethodGet, "/health/ready", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "DEPENDENCY_ERROR", errorCode(t, rec))
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := srv.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "task-reminders")
}

func TestBackOfficeRequiresAdminKey(t *testing.T) {
	srv := newTestServer(t, nil)

	missing := srv.do(t, http.MethodGet, "/api/v1/employees", nil, nil)
	require.Equal(t, http.StatusUnauthorized, missing.Code)

	wrong := srv.do(t, http.MethodGet, "/api/v1/employees", nil, map[string]string{"X-Admin-Key": "nope"})
	require.Equal(t, http.StatusForbidden, wrong.Code)

	ok := srv.do(t, http.MethodGet, "/api/v1/employees", nil, admin())
	require.Equal(t, http.StatusOK, ok.Code)
}

func TestPortalRequiresToken(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := srv.do(t, http.MethodGet, "/api/v1/portal/tasks", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	login := srv.do(t, http.MethodPost, "/api/v1/portal/login", map[string]string{"access_code": "NOPE1234"}, nil)
	require.NotEqual(t, http.StatusOK, login.Code)
}

type idBody struct {
	ID string `json:"id"`
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/employees", map[string]any{
		"tax_id":           "12.345.678-9",
		"name":             "Carla Corte",
		"role":             "cutter",
		"fixed_wage":       "0",
		"per_garment_rate": 500,
	}, admin())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cutter struct {
		ID         string `json:"id"`
		AccessCode string `json:"access_code"`
	}
	decodeData(t, rec, &cutter)
	require.NotEmpty(t, cutter.AccessCode)

	rec = srv.do(t, http.MethodPost, "/api/v1/materials", map[string]any{
		"name":              "Tela Algodón",
		"category":          "tela",
		"unit":              "m",
		"quantity_on_hand":  "100",
		"reorder_threshold": "20",
		"unit_cost":         "1000",
	}, admin())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var tela idBody
	decodeData(t, rec, &tela)

	rec = srv.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"order_ref":     "O-100",
		"garment_count": 10,
		"materials":     []map[string]any{{"material_id": tela.ID, "quantity": "85"}},
	}, admin())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order idBody
	decodeData(t, rec, &order)

	short := srv.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"order_ref":     "O-101",
		"garment_count": 5,
		"materials":     []map[string]any{{"material_id": tela.ID, "quantity": "50"}},
	}, admin())
	require.Equal(t, http.StatusConflict, short.Code)
	require.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, short))

	rec = srv.do(t, http.MethodGet, "/api/v1/materials/below-threshold", nil, admin())
	require.Equal(t, http.StatusOK, rec.Code)
	var low []idBody
	decodeData(t, rec, &low)
	require.Len(t, low, 1)
	require.Equal(t, tela.ID, low[0].ID)

	rec = srv.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/stages/cut/dispatch",
		map[string]string{"employee_id": cutter.ID}, admin())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	bad := srv.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/stages/press/dispatch",
		map[string]string{"employee_id": cutter.ID}, admin())
	require.Equal(t, http.StatusBadRequest, bad.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/portal/login", map[string]string{"access_code": cutter.AccessCode}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	decodeData(t, rec, &session)
	require.NotEmpty(t, session.Token)

	rec = srv.do(t, http.MethodGet, "/api/v1/portal/tasks", nil, bearer(session.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []struct {
		OrderID string `json:"order_id"`
		Stage   string `json:"stage"`
		Status  string `json:"status"`
	}
	decodeData(t, rec, &tasks)
	require.Len(t, tasks, 1)
	require.Equal(t, order.ID, tasks[0].OrderID)
	require.Equal(t, "in_process", tasks[0].Status)

	early := srv.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/stages/cut/paid", nil, admin())
	require.Equal(t, http.StatusUnprocessableEntity, early.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/portal/tasks/"+order.ID+"/stages/cut/confirm",
		map[string]string{"notes": "  listo  "}, bearer(session.Token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	again := srv.do(t, http.MethodPost, "/api/v1/portal/tasks/"+order.ID+"/stages/cut/confirm", nil, bearer(session.Token))
	require.Equal(t, http.StatusConflict, again.Code)
	require.Equal(t, "INVALID_STAGE_TRANSITION", errorCode(t, again))

	rec = srv.do(t, http.MethodGet, "/api/v1/portal/pay-summary", nil, bearer(session.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	var summary payments.Summary
	decodeData(t, rec, &summary)
	require.EqualValues(t, 1, summary.CountCompleted)
	require.Equal(t, "5000", summary.AmountPending.String())

	rec = srv.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/stages/cut/paid", nil, admin())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var paid payments.MarkPaidResult
	decodeData(t, rec, &paid)
	require.False(t, paid.AlreadyPaid)

	rec = srv.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/stages/cut/paid", nil, admin())
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &paid)
	require.True(t, paid.AlreadyPaid)

	rec = srv.do(t, http.MethodGet, "/api/v1/employees/"+cutter.ID+"/pay-summary", nil, admin())
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &summary)
	require.True(t, summary.AmountPending.IsZero())
	require.Equal(t, "5000", summary.AmountPaid.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/orders/"+order.ID+"/shipments", nil, admin())
	require.Equal(t, http.StatusOK, rec.Code)
	var shipments []struct {
		ReceiptState string `json:"receipt_state"`
	}
	decodeData(t, rec, &shipments)
	require.Len(t, shipments, 1)
	require.Equal(t, "received", shipments[0].ReceiptState)

	rec = srv.do(t, http.MethodGet, "/api/v1/orders/"+order.ID+"/audit", nil, admin())
	require.Equal(t, http.StatusOK, rec.Code)
	var trail []struct {
		Action string `json:"action"`
	}
	decodeData(t, rec, &trail)
	actions := make([]string, 0, len(trail))
	for _, e := range trail {
		actions = append(actions, e.Action)
	}
	require.Equal(t, []string{"order_created", "dispatched_to_cut", "cut_completed", "payment_marked"}, actions)

	rec = srv.do(t, http.MethodGet, "/api/v1/portal/notifications", nil, bearer(session.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	var inbox notifications.ListResult
	decodeData(t, rec, &inbox)
	require.Len(t, inbox.Items, 2)

	rec = srv.do(t, http.MethodPost, "/api/v1/portal/notifications/"+inbox.Items[0].ID.String()+"/read", nil, bearer(session.Token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/production", nil, admin())
	require.Equal(t, http.StatusOK, rec.Code)
	var report []production.ReportRow
	decodeData(t, rec, &report)
	require.Len(t, report, 1)
	require.EqualValues(t, 1, report[0].Orders)
}

func TestPortalRejectsOtherEmployeesTask(t *testing.T) {
	srv := newTestServer(t, nil)
	owner := testdb.SeedEmployee(t, srv.client, "Carlos Corte", "cutter", 300)
	other := testdb.SeedEmployee(t, srv.client, "Olga Otra", "cutter", 300)
	material := testdb.SeedMaterial(t, srv.client, "Hilo", "10", "1")

	rec := srv.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"order_ref":     "O-7",
		"garment_count": 2,
		"materials":     []map[string]any{{"material_id": material.ID.String(), "quantity": "1"}},
	}, admin())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order idBody
	decodeData(t, rec, &order)

	rec = srv.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/stages/cut/dispatch",
		map[string]string{"employee_id": owner.ID.String()}, admin())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/portal/login", map[string]string{"access_code": other.AccessCode}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var session struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &session)

	rec = srv.do(t, http.MethodPost, "/api/v1/portal/tasks/"+order.ID+"/stages/cut/status",
		map[string]string{"status": "completed"}, bearer(session.Token))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "NOT_ASSIGNEE", errorCode(t, rec))

	rec = srv.do(t, http.MethodPost, "/api/v1/portal/tasks/"+order.ID+"/stages/cut/status",
		map[string]string{"status": "pending"}, bearer(session.Token))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "NOT_ASSIGNEE", errorCode(t, rec))

	rec = srv.do(t, http.MethodPost, "/api/v1/portal/tasks/"+order.ID+"/stages/cut/status",
		map[string]string{"status": "paused"}, bearer(session.Token))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortalBackwardStatusIsInvalidTransition(t *testing.T) {
	srv := newTestServer(t, nil)
	owner := testdb.SeedEmployee(t, srv.client, "Carlos Corte", "cutter", 300)

	rec := srv.do(t, http.MethodPost, "/api/v1/orders", map[string]any{"order_ref": "O-8", "garment_count": 1}, admin())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var order idBody
	decodeData(t, rec, &order)

	rec = srv.do(t, http.MethodPost, "/api/v1/orders/"+order.ID+"/stages/cut/dispatch",
		map[string]string{"employee_id": owner.ID.String()}, admin())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/portal/login", map[string]string{"access_code": owner.AccessCode}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var session struct {
		Token string `json:"token"`
	}
	decodeData(t, rec, &session)
	status := "/api/v1/portal/tasks/" + order.ID + "/stages/cut/status"

	rec = srv.do(t, http.MethodPost, status, map[string]string{"status": "in_process"}, bearer(session.Token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, status, map[string]string{"status": "pending"}, bearer(session.Token))
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	require.Equal(t, "INVALID_STAGE_TRANSITION", errorCode(t, rec))
}

func TestCreateOrderRejectsQuantityFinerThanLedger(t *testing.T) {
	srv := newTestServer(t, nil)
	material := testdb.SeedMaterial(t, srv.client, "Hilo", "10", "1")

	rec := srv.do(t, http.MethodPost, "/api/v1/orders", map[string]any{
		"order_ref": "O-9",
		"materials": []map[string]any{{"material_id": material.ID.String(), "quantity": "0.0004"}},
	}, admin())
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}
