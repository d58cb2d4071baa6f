package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/noteman/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func newTestService(repo *mockUserRepo) *Service {
	return NewService(repo, NewTokenIssuer("test-secret", time.Hour), ServiceConfig{
		BcryptCost: bcrypt.MinCost,
	})
}

// --- Register テスト ---

func TestService_Register_Success(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := newTestService(repo)

	user, err := svc.Register(context.Background(), "太郎", "山田", "Taro@Example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// メールアドレスは小文字に正規化される
	if user.Email != "taro@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "taro@example.com")
	}
	if user.ID == "" {
		t.Error("expected non-empty ID")
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}

	// 平文パスワードは保存されず、検証可能なハッシュが保存される
	if created.PasswordHash == "Passw0rd!" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("Passw0rd!")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "existing", Email: email}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "太郎", "山田", "taro@example.com", "Passw0rd!")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
		t.Errorf("error = %v, want EMAIL_TAKEN", err)
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	tests := []struct {
		name      string
		firstName string
		lastName  string
		email     string
		password  string
	}{
		{"first name too short", "太", "山田", "taro@example.com", "Passw0rd!"},
		{"last name empty", "太郎", "", "taro@example.com", "Passw0rd!"},
		{"invalid email", "太郎", "山田", "not-an-email", "Passw0rd!"},
		{"password too short", "太郎", "山田", "taro@example.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.firstName, tt.lastName, tt.email, tt.password)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
				t.Errorf("error = %v, want VALIDATION_ERROR", err)
			}
		})
	}
}

// --- Login テスト ---

func TestService_Login_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error = %v", err)
	}

	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			if email != "taro@example.com" {
				t.Errorf("email = %q, want lowercased", email)
			}
			return &model.User{
				ID:           "user-123",
				FirstName:    "太郎",
				Email:        email,
				PasswordHash: string(hash),
			}, nil
		},
	}
	svc := newTestService(repo)

	token, user, err := svc.Login(context.Background(), "Taro@Example.com", "Passw0rd!")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Error("expected non-empty token")
	}
	if user.ID != "user-123" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-123")
	}

	// 発行されたトークンは同一のIssuerで検証できる
	claims, err := svc.tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("claims.UserID = %q, want %q", claims.UserID, "user-123")
	}
}

func TestService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "user-123", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	svc := newTestService(repo)

	_, _, err := svc.Login(context.Background(), "taro@example.com", "wrong-password")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("error = %v, want INVALID_CREDENTIALS", err)
	}
}

func TestService_Login_UnknownEmail_SameError(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "Passw0rd!")

	// メールアドレス不存在もパスワード不一致と同一のエラーを返す
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("error = %v, want INVALID_CREDENTIALS", err)
	}
}

func TestService_Login_EmptyCredentials(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, _, err := svc.Login(context.Background(), "", "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Errorf("error = %v, want INVALID_CREDENTIALS", err)
	}
}

// --- CurrentUser テスト ---

func TestService_CurrentUser_NotFound(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, err := svc.CurrentUser(context.Background(), "gone-user")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error = %v, want USER_NOT_FOUND", err)
	}
}

func TestService_CurrentUser_Success(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, FirstName: "太郎"}, nil
		},
	}
	svc := newTestService(repo)

	user, err := svc.CurrentUser(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user.FirstName != "太郎" {
		t.Errorf("FirstName = %q, want %q", user.FirstName, "太郎")
	}
}
