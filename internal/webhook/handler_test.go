package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leads_dashboard_backend/internal/leads/repository"
	"leads_dashboard_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeLeadFinder struct {
	byEmail map[string]repository.Lead
	byPhone map[string]repository.Lead
	updates map[uuid.UUID]repository.StudentFlagUpdate
}

func newFakeLeadFinder() *fakeLeadFinder {
	return &fakeLeadFinder{
		byEmail: make(map[string]repository.Lead),
		byPhone: make(map[string]repository.Lead),
		updates: make(map[uuid.UUID]repository.StudentFlagUpdate),
	}
}

func (f *fakeLeadFinder) FindByEmail(_ context.Context, email string) (repository.Lead, error) {
	lead, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeLeadFinder) FindByPhoneDigits(_ context.Context, digits string) (repository.Lead, error) {
	lead, ok := f.byPhone[digits]
	if !ok {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeLeadFinder) UpdateStudentFlags(_ context.Context, id uuid.UUID, update repository.StudentFlagUpdate) error {
	f.updates[id] = update
	return nil
}

func newTestRouter(repo LeadFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(repo, nil, logger.New("test"))
	router := gin.New()
	router.POST("/webhook/student-status", handler.UpdateStudentStatus)
	router.GET("/webhook/student-status", handler.Status)
	return router
}

func TestUpdateStudentStatusByEmail(t *testing.T) {
	leadID := uuid.New()
	repo := newFakeLeadFinder()
	repo.byEmail["ana@example.com"] = repository.Lead{ID: leadID, Nome: "Ana"}
	router := newTestRouter(repo)

	body := `{"type":"subscribe","contact":{"email":"ana@example.com"},"list":{"name":"Alunos Mestre Ye"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/student-status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success      bool   `json:"success"`
		SearchMethod string `json:"searchMethod"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.SearchMethod != "email" {
		t.Errorf("response = %+v", resp)
	}

	update, ok := repo.updates[leadID]
	if !ok {
		t.Fatal("lead was not updated")
	}
	if update.IsAluno == nil || !*update.IsAluno {
		t.Error("expected is_aluno to be set")
	}
	if update.IsAlunoBny2 != nil {
		t.Error("is_aluno_bny2 should stay untouched for a general list")
	}
}

func TestUpdateStudentStatusByPhoneForm(t *testing.T) {
	leadID := uuid.New()
	repo := newFakeLeadFinder()
	repo.byPhone["5511988887777"] = repository.Lead{ID: leadID, Nome: "Ana"}
	router := newTestRouter(repo)

	body := "contact%5Bphone%5D=%2B55+%2811%29+98888-7777&list%5Bname%5D=Alunos+BNY2"
	req := httptest.NewRequest(http.MethodPost, "/webhook/student-status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	update, ok := repo.updates[leadID]
	if !ok {
		t.Fatal("lead was not updated")
	}
	if update.IsAlunoBny2 == nil || !*update.IsAlunoBny2 {
		t.Error("expected is_aluno_bny2 for a BNY list")
	}
	if update.IsAluno == nil || !*update.IsAluno {
		t.Error("expected is_aluno for an aluno list")
	}
}

func TestUpdateStudentStatusUnmatched(t *testing.T) {
	router := newTestRouter(newFakeLeadFinder())

	body := `{"contact":{"email":"ghost@example.com"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/student-status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Unmatched contacts are acknowledged, not errored, so the CRM stops
	// retrying.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"action":"ignored"`) {
		t.Errorf("body = %s, want ignored action", rec.Body.String())
	}
}

func TestUpdateStudentStatusShortPhoneIgnored(t *testing.T) {
	repo := newFakeLeadFinder()
	repo.byPhone["12345"] = repository.Lead{ID: uuid.New()}
	router := newTestRouter(repo)

	body := `{"contact":{"phone":"12345"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/student-status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `"action":"ignored"`) {
		t.Errorf("short phone must not match: %s", rec.Body.String())
	}
}

func TestUpdateStudentStatusNoContact(t *testing.T) {
	router := newTestRouter(newFakeLeadFinder())

	req := httptest.NewRequest(http.MethodPost, "/webhook/student-status", strings.NewReader(`{"type":"subscribe"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStatusProbe(t *testing.T) {
	router := newTestRouter(newFakeLeadFinder())

	req := httptest.NewRequest(http.MethodGet, "/webhook/student-status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"active"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
