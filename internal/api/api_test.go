package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/highpoint-ops/gearlog/internal/db"
	"github.com/highpoint-ops/gearlog/internal/model"
	"github.com/highpoint-ops/gearlog/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, Config{JWTSecret: testJWTSecret})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)

	return server, database, login(t, server, "admin", "password123")
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}
	return token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func doJSON(t *testing.T, req *http.Request, wantStatus int, target any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d", req.Method, req.URL.Path, wantStatus, resp.StatusCode)
	}
	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
}

func TestLoginEndpoint(t *testing.T) {
	server, _, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	doJSON(t, req, http.StatusOK, nil)

	// The revoked token no longer works.
	req, _ = authRequest("GET", server.URL+"/api/equipment", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/equipment")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	server, database, _ := setupTestServer(t)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "tech", string(hash), model.RoleTechnician)
	techToken := login(t, server, "tech", "password123")

	// Technicians cannot create equipment.
	req, _ := authRequest("POST", server.URL+"/api/equipment", techToken, map[string]any{"type_code": "R"})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for technician creating equipment, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Or see user management.
	req, _ = authRequest("GET", server.URL+"/api/users", techToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for technician accessing users, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// But they can read equipment and record inspections.
	req, _ = authRequest("GET", server.URL+"/api/equipment", techToken, nil)
	doJSON(t, req, http.StatusOK, nil)
}

func TestEquipmentAPIFlow(t *testing.T) {
	server, _, token := setupTestServer(t)

	var created model.Equipment
	req, _ := authRequest("POST", server.URL+"/api/equipment", token, map[string]any{
		"type_code":     "R",
		"name":          "Main line",
		"serial_number": "SN-1",
	})
	doJSON(t, req, http.StatusCreated, &created)
	if created.EquipmentID != "R/001" {
		t.Fatalf("expected R/001, got %s", created.EquipmentID)
	}

	// Detail route spans two path segments because the id embeds a slash.
	var detail struct {
		Equipment     model.Equipment      `json:"equipment"`
		Inspections   []model.Inspection   `json:"inspections"`
		StatusHistory []model.StatusChange `json:"status_history"`
	}
	req, _ = authRequest("GET", server.URL+"/api/equipment/R/001", token, nil)
	doJSON(t, req, http.StatusOK, &detail)
	if detail.Equipment.Status != model.StatusActive {
		t.Errorf("expected ACTIVE, got %s", detail.Equipment.Status)
	}
	if len(detail.StatusHistory) != 1 {
		t.Errorf("expected creation history row, got %d", len(detail.StatusHistory))
	}

	// Record a failing inspection; the equipment red-tags itself.
	req, _ = authRequest("POST", server.URL+"/api/equipment/R/001/inspections", token, map[string]any{
		"inspection_date": model.FormatDate(time.Now()),
		"result":          model.ResultFail,
		"inspector_name":  "Jamie",
	})
	doJSON(t, req, http.StatusCreated, nil)

	req, _ = authRequest("GET", server.URL+"/api/equipment/R/001", token, nil)
	doJSON(t, req, http.StatusOK, &detail)
	if detail.Equipment.Status != model.StatusRedTagged {
		t.Errorf("expected RED_TAGGED after FAIL, got %s", detail.Equipment.Status)
	}

	// Releasing the red tag manually is rejected by default.
	req, _ = authRequest("PUT", server.URL+"/api/equipment/R/001/status", token, map[string]any{
		"status": model.StatusActive,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for red-tag release, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Deleting equipment with inspection history is an integrity conflict.
	req, _ = authRequest("DELETE", server.URL+"/api/equipment/R/001", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for delete with history, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestEquipmentBatchCreate(t *testing.T) {
	server, _, token := setupTestServer(t)

	var result model.BatchResult
	req, _ := authRequest("POST", server.URL+"/api/equipment", token, map[string]any{
		"type_code": "D",
		"quantity":  3,
	})
	doJSON(t, req, http.StatusCreated, &result)
	if result.SuccessCount() != 3 {
		t.Fatalf("expected 3 created, got %+v", result)
	}

	var list []model.Equipment
	req, _ = authRequest("GET", server.URL+"/api/equipment?type=D", token, nil)
	doJSON(t, req, http.StatusOK, &list)
	if len(list) != 3 {
		t.Errorf("expected 3 descenders, got %d", len(list))
	}
}

func TestEquipmentValidationProblems(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/equipment", token, map[string]any{
		"type_code": "nope",
	})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body struct {
		Error    string   `json:"error"`
		Problems []string `json:"problems"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body.Problems) == 0 {
		t.Errorf("expected a problem list, got %+v", body)
	}
}

func TestJobAssignmentFlow(t *testing.T) {
	server, _, token := setupTestServer(t)

	var e model.Equipment
	req, _ := authRequest("POST", server.URL+"/api/equipment", token, map[string]any{"type_code": "R"})
	doJSON(t, req, http.StatusCreated, &e)

	var job model.Job
	req, _ = authRequest("POST", server.URL+"/api/jobs", token, map[string]any{
		"customer_name": "Acme",
		"status":        model.JobStatusActive,
	})
	doJSON(t, req, http.StatusCreated, &job)
	if job.JobID != "A000" {
		t.Fatalf("expected A000, got %s", job.JobID)
	}

	var result model.BatchResult
	req, _ = authRequest("POST", server.URL+"/api/jobs/A000/assign", token, map[string]any{
		"equipment_ids": []string{e.EquipmentID},
	})
	doJSON(t, req, http.StatusOK, &result)
	if result.SuccessCount() != 1 {
		t.Fatalf("unexpected assign result %+v", result)
	}

	var jobDetail struct {
		Job       model.Job         `json:"job"`
		Billing   *model.JobBilling `json:"billing"`
		Equipment []model.Equipment `json:"equipment"`
		Stats     *model.JobStats   `json:"stats"`
	}
	req, _ = authRequest("GET", server.URL+"/api/jobs/A000", token, nil)
	doJSON(t, req, http.StatusOK, &jobDetail)
	if jobDetail.Billing == nil || jobDetail.Billing.PaymentStatus != model.PaymentPending {
		t.Errorf("expected pending billing, got %+v", jobDetail.Billing)
	}
	if len(jobDetail.Equipment) != 1 || jobDetail.Stats.Assigned != 1 {
		t.Errorf("expected 1 assigned, got %+v", jobDetail)
	}

	req, _ = authRequest("POST", server.URL+"/api/jobs/A000/return", token, map[string]any{
		"equipment_ids": []string{e.EquipmentID},
	})
	doJSON(t, req, http.StatusOK, &result)
	if result.SuccessCount() != 1 {
		t.Fatalf("unexpected return result %+v", result)
	}
}

func TestInvoiceAPIFlow(t *testing.T) {
	server, _, token := setupTestServer(t)

	var job model.Job
	req, _ := authRequest("POST", server.URL+"/api/jobs", token, map[string]any{"customer_name": "Acme"})
	doJSON(t, req, http.StatusCreated, &job)

	var inv model.Invoice
	req, _ = authRequest("POST", server.URL+"/api/invoices", token, map[string]any{
		"job_id":   job.JobID,
		"tax_rate": "8.0",
		"line_items": []map[string]any{
			{"description": "Rope access work", "unit_price": "10.00", "quantity": 3},
			{"description": "Gear rental", "unit_price": "5.50", "quantity": 2},
		},
	})
	doJSON(t, req, http.StatusCreated, &inv)
	if inv.TotalAmount != "44.28" {
		t.Errorf("expected total 44.28, got %s", inv.TotalAmount)
	}

	req, _ = authRequest("PUT", server.URL+"/api/invoices/1", token, map[string]any{
		"status":   model.InvoiceSent,
		"tax_rate": inv.TaxRate,
	})
	doJSON(t, req, http.StatusOK, &inv)
	if inv.Status != model.InvoiceSent {
		t.Errorf("expected SENT, got %s", inv.Status)
	}
}

func TestReportsEndpoints(t *testing.T) {
	server, _, token := setupTestServer(t)

	var e model.Equipment
	req, _ := authRequest("POST", server.URL+"/api/equipment", token, map[string]any{"type_code": "D"})
	doJSON(t, req, http.StatusCreated, &e)

	// Never inspected: shows up overdue.
	var overdue []model.OverdueInspection
	req, _ = authRequest("GET", server.URL+"/api/reports/overdue-inspections", token, nil)
	doJSON(t, req, http.StatusOK, &overdue)
	if len(overdue) != 1 || !overdue[0].NeverInspected {
		t.Errorf("expected 1 never-inspected row, got %+v", overdue)
	}

	var summary map[string]int
	req, _ = authRequest("GET", server.URL+"/api/reports/summary", token, nil)
	doJSON(t, req, http.StatusOK, &summary)
	if summary[model.StatusActive] != 1 {
		t.Errorf("unexpected summary %v", summary)
	}

	// XLSX download.
	req, _ = authRequest("GET", server.URL+"/api/reports/overdue-inspections?format=xlsx", token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for xlsx, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, Config{JWTSecret: testJWTSecret, Metrics: NewMetrics()})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Generate one observation.
	resp, _ := http.Get(server.URL + "/api/equipment")
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /metrics, got %d", resp.StatusCode)
	}
}
