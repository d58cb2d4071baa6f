package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/noteman/internal/auth"
	"github.com/hitoshi/noteman/internal/model"
)

// --- モック ---

type stubVerifier struct {
	claims *auth.Claims
	err    error
}

func (s *stubVerifier) Verify(token string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type stubPinger struct {
	err error
}

func (s *stubPinger) PingContext(ctx context.Context) error {
	return s.err
}

func newTestRouter(t *testing.T, social *mockSocialService) http.Handler {
	t.Helper()

	return NewRouter(&RouterDeps{
		TokenVerifier:     &stubVerifier{claims: &auth.Claims{UserID: "user-1"}},
		CORSAllowedOrigin: "http://localhost:3000",
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),

		AuthService:    &mockAuthService{},
		SubjectService: &mockSubjectService{},
		TopicService:   &mockTopicService{},
		SocialService:  social,
		NoteService:    &mockNoteService{},

		DB: &stubPinger{},
	})
}

// --- テスト ---

func TestRouter_ProtectedRoute_WithoutToken_Returns401(t *testing.T) {
	router := newTestRouter(t, &mockSocialService{})

	req := httptest.NewRequest(http.MethodGet, "/subjects", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_ProtectedRoute_WithToken_Succeeds(t *testing.T) {
	router := newTestRouter(t, &mockSocialService{})

	req := httptest.NewRequest(http.MethodGet, "/subjects", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_InvalidToken_Returns401(t *testing.T) {
	router := NewRouter(&RouterDeps{
		TokenVerifier:     &stubVerifier{err: errors.New("bad token")},
		CORSAllowedOrigin: "*",
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		AuthService:       &mockAuthService{},
		SubjectService:    &mockSubjectService{},
		TopicService:      &mockTopicService{},
		SocialService:     &mockSocialService{},
		NoteService:       &mockNoteService{},
		DB:                &stubPinger{},
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRouter_Register_NoTokenRequired(t *testing.T) {
	router := newTestRouter(t, &mockSocialService{})

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// 認証なしで到達できる（ボディ不正による400は認証エラーの401とは異なる）
	if w.Code == http.StatusUnauthorized {
		t.Errorf("status = %d, registration must not require auth", w.Code)
	}
}

func TestRouter_PublicFeedRoutedBeforeParamRoute(t *testing.T) {
	listPublicCalled := false
	social := &mockSocialService{
		listPublicFn: func(ctx context.Context, viewerID string) ([]model.AnnotatedTopic, error) {
			listPublicCalled = true
			return nil, nil
		},
	}
	router := newTestRouter(t, social)

	// "public" が科目IDとして解釈されないこと
	req := httptest.NewRequest(http.MethodGet, "/topics/public", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !listPublicCalled {
		t.Error("expected /topics/public to hit the public feed handler")
	}
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, &mockSocialService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_Health_DBDown_Returns503(t *testing.T) {
	router := NewRouter(&RouterDeps{
		TokenVerifier:     &stubVerifier{claims: &auth.Claims{UserID: "user-1"}},
		CORSAllowedOrigin: "*",
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		AuthService:       &mockAuthService{},
		SubjectService:    &mockSubjectService{},
		TopicService:      &mockTopicService{},
		SocialService:     &mockSocialService{},
		NoteService:       &mockNoteService{},
		DB:                &stubPinger{err: errors.New("connection refused")},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	router := newTestRouter(t, &mockSocialService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want configured origin", got)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, &mockSocialService{})

	req := httptest.NewRequest(http.MethodOptions, "/subjects", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}
