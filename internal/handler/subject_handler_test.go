package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/noteman/internal/model"
)

// --- モック ---

type mockSubjectService struct {
	createFn func(ctx context.Context, userID, name, content string) (*model.Subject, error)
	listFn   func(ctx context.Context, userID string) ([]*model.Subject, error)
	getFn    func(ctx context.Context, userID, subjectID string) (*model.Subject, error)
	updateFn func(ctx context.Context, userID, subjectID, name, content string) (*model.Subject, error)
	deleteFn func(ctx context.Context, userID, subjectID string) error
}

func (m *mockSubjectService) Create(ctx context.Context, userID, name, content string) (*model.Subject, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, name, content)
	}
	return nil, nil
}
func (m *mockSubjectService) List(ctx context.Context, userID string) ([]*model.Subject, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockSubjectService) Get(ctx context.Context, userID, subjectID string) (*model.Subject, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, subjectID)
	}
	return nil, nil
}
func (m *mockSubjectService) Update(ctx context.Context, userID, subjectID, name, content string) (*model.Subject, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, subjectID, name, content)
	}
	return nil, nil
}
func (m *mockSubjectService) Delete(ctx context.Context, userID, subjectID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, subjectID)
	}
	return nil
}

// withURLParam はchiのURLパラメータをリクエストコンテキストに設定する。
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// --- テスト ---

func TestSubjectHandler_Create_Success(t *testing.T) {
	svc := &mockSubjectService{
		createFn: func(ctx context.Context, userID, name, content string) (*model.Subject, error) {
			return &model.Subject{ID: "subj-1", UserID: userID, Name: name, Content: content}, nil
		},
	}
	h := NewSubjectHandler(svc)

	body := `{"subjectName":"物理学","subjectContent":"力学"}`
	req := withUserID(httptest.NewRequest(http.MethodPost, "/subjects", strings.NewReader(body)), "user-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var res subjectEnvelope
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if res.Subject.SubjectName != "物理学" {
		t.Errorf("subjectName = %q, want 物理学", res.Subject.SubjectName)
	}
	if res.Message == "" {
		t.Error("expected non-empty message")
	}
}

func TestSubjectHandler_Create_NoClaims_Unauthorized(t *testing.T) {
	h := NewSubjectHandler(&mockSubjectService{})

	req := httptest.NewRequest(http.MethodPost, "/subjects", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestSubjectHandler_Create_ValidationError(t *testing.T) {
	svc := &mockSubjectService{
		createFn: func(ctx context.Context, userID, name, content string) (*model.Subject, error) {
			return nil, model.NewValidationError("科目名を入力してください")
		},
	}
	h := NewSubjectHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodPost, "/subjects", strings.NewReader(`{"subjectName":""}`)), "user-1")
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestSubjectHandler_List_Success(t *testing.T) {
	svc := &mockSubjectService{
		listFn: func(ctx context.Context, userID string) ([]*model.Subject, error) {
			return []*model.Subject{
				{ID: "s1", Name: "物理学"},
				{ID: "s2", Name: "数学"},
			}, nil
		},
	}
	h := NewSubjectHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/subjects", nil), "user-1")
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var res []subjectResponse
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if len(res) != 2 {
		t.Errorf("subjects = %d, want 2", len(res))
	}
}

func TestSubjectHandler_Get_ForeignSubject_Returns404(t *testing.T) {
	svc := &mockSubjectService{
		getFn: func(ctx context.Context, userID, subjectID string) (*model.Subject, error) {
			return nil, model.NewSubjectNotFoundError(subjectID)
		},
	}
	h := NewSubjectHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/subjects/foreign", nil), "user-1")
	req = withURLParam(req, "id", "foreign")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestSubjectHandler_Delete_Success(t *testing.T) {
	deleteCalled := false
	svc := &mockSubjectService{
		deleteFn: func(ctx context.Context, userID, subjectID string) error {
			deleteCalled = true
			if subjectID != "subj-1" {
				t.Errorf("subjectID = %q, want subj-1", subjectID)
			}
			return nil
		},
	}
	h := NewSubjectHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodDelete, "/subjects/subj-1", nil), "user-1")
	req = withURLParam(req, "id", "subj-1")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !deleteCalled {
		t.Error("expected Delete to be called")
	}
}
