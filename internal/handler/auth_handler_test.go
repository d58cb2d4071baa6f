package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/noteman/internal/model"
)

// --- モック ---

type mockAuthService struct {
	registerFn    func(ctx context.Context, firstName, lastName, email, password string) (*model.User, error)
	loginFn       func(ctx context.Context, email, password string) (string, *model.User, error)
	currentUserFn func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, firstName, lastName, email, password)
	}
	return nil, nil
}
func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return "", nil, nil
}
func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return nil, nil
}

// --- POST /users テスト ---

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, firstName, lastName, email, password string) (*model.User, error) {
			return &model.User{
				ID:           "user-1",
				FirstName:    firstName,
				LastName:     lastName,
				Email:        email,
				PasswordHash: "secret-hash",
			}, nil
		},
	}
	h := NewAuthHandler(svc)

	body := `{"firstName":"太郎","lastName":"山田","email":"taro@example.com","password":"Passw0rd!"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var res map[string]any
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if res["email"] != "taro@example.com" {
		t.Errorf("email = %v, want taro@example.com", res["email"])
	}
	// 認証情報ハッシュはレスポンスに含めない
	if _, ok := res["passwordHash"]; ok {
		t.Error("response must not expose password hash")
	}
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("{invalid"))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, firstName, lastName, email, password string) (*model.User, error) {
			return nil, model.NewEmailTakenError()
		},
	}
	h := NewAuthHandler(svc)

	body := `{"firstName":"太郎","lastName":"山田","email":"taken@example.com","password":"Passw0rd!"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var res apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if res.Code != model.ErrCodeEmailTaken {
		t.Errorf("code = %q, want EMAIL_TAKEN", res.Code)
	}
}

// --- POST /auth テスト ---

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *model.User, error) {
			return "signed-token", &model.User{
				ID:        "user-1",
				FirstName: "太郎",
				LastName:  "山田",
				Email:     email,
			}, nil
		},
	}
	h := NewAuthHandler(svc)

	body := `{"email":"taro@example.com","password":"Passw0rd!"}`
	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var res loginResponse
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if res.Token != "signed-token" {
		t.Errorf("token = %q, want signed-token", res.Token)
	}
	if res.ID != "user-1" || res.FirstName != "太郎" {
		t.Errorf("user fields = %+v, want id/firstName populated", res)
	}
}

func TestAuthHandler_Login_InvalidCredentials_Returns400(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (string, *model.User, error) {
			return "", nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc)

	body := `{"email":"taro@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- GET /me テスト ---

func TestAuthHandler_Me_Success(t *testing.T) {
	svc := &mockAuthService{
		currentUserFn: func(ctx context.Context, userID string) (*model.User, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want user-1", userID)
			}
			return &model.User{ID: userID, FirstName: "太郎", Email: "taro@example.com"}, nil
		},
	}
	h := NewAuthHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/me", nil), "user-1")
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthHandler_Me_NoClaims_Unauthorized(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Me_DeletedUser_Returns404(t *testing.T) {
	svc := &mockAuthService{
		currentUserFn: func(ctx context.Context, userID string) (*model.User, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	h := NewAuthHandler(svc)

	req := withUserID(httptest.NewRequest(http.MethodGet, "/me", nil), "gone")
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
