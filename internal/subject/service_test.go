package subject

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hitoshi/noteman/internal/model"
)

// --- モック ---

type mockSubjectRepo struct {
	findByIDAndUserFn   func(ctx context.Context, id, userID string) (*model.Subject, error)
	listByUserFn        func(ctx context.Context, userID string) ([]*model.Subject, error)
	createFn            func(ctx context.Context, subject *model.Subject) error
	updateFn            func(ctx context.Context, subject *model.Subject) error
	deleteByIDAndUserFn func(ctx context.Context, id, userID string) (bool, error)
}

func (m *mockSubjectRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Subject, error) {
	if m.findByIDAndUserFn != nil {
		return m.findByIDAndUserFn(ctx, id, userID)
	}
	return nil, nil
}
func (m *mockSubjectRepo) ListByUser(ctx context.Context, userID string) ([]*model.Subject, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockSubjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	if m.createFn != nil {
		return m.createFn(ctx, subject)
	}
	return nil
}
func (m *mockSubjectRepo) Update(ctx context.Context, subject *model.Subject) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, subject)
	}
	return nil
}
func (m *mockSubjectRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	if m.deleteByIDAndUserFn != nil {
		return m.deleteByIDAndUserFn(ctx, id, userID)
	}
	return false, nil
}

type mockCascade struct {
	onSubjectDeletedFn func(ctx context.Context, subjectID string) error
}

func (m *mockCascade) OnSubjectDeleted(ctx context.Context, subjectID string) error {
	if m.onSubjectDeletedFn != nil {
		return m.onSubjectDeletedFn(ctx, subjectID)
	}
	return nil
}

// --- テスト ---

func TestService_Create_Success(t *testing.T) {
	var created *model.Subject
	repo := &mockSubjectRepo{
		createFn: func(ctx context.Context, subject *model.Subject) error {
			created = subject
			return nil
		},
	}
	svc := NewService(repo, &mockCascade{})

	subject, err := svc.Create(context.Background(), "user-1", "  物理学  ", "力学の基礎")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if subject.Name != "物理学" {
		t.Errorf("Name = %q, want trimmed %q", subject.Name, "物理学")
	}
	if subject.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", subject.UserID, "user-1")
	}
	if subject.ID == "" {
		t.Error("expected non-empty ID")
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc := NewService(&mockSubjectRepo{}, &mockCascade{})

	tests := []struct {
		name    string
		subject string
		content string
	}{
		{"empty name", "", "内容"},
		{"name too long", strings.Repeat("あ", model.SubjectNameMaxLength+1), "内容"},
		{"empty content", "物理学", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "user-1", tt.subject, tt.content)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
				t.Errorf("error = %v, want VALIDATION_ERROR", err)
			}
		})
	}
}

func TestService_Create_NameAtMaxLength(t *testing.T) {
	svc := NewService(&mockSubjectRepo{}, &mockCascade{})

	// 200文字ちょうどは許可される
	name := strings.Repeat("あ", model.SubjectNameMaxLength)
	if _, err := svc.Create(context.Background(), "user-1", name, "内容"); err != nil {
		t.Errorf("Create() error = %v, want nil", err)
	}
}

func TestService_Get_NotFound(t *testing.T) {
	svc := NewService(&mockSubjectRepo{}, &mockCascade{})

	_, err := svc.Get(context.Background(), "user-1", "missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSubjectNotFound {
		t.Errorf("error = %v, want SUBJECT_NOT_FOUND", err)
	}
}

func TestService_Update_Success(t *testing.T) {
	repo := &mockSubjectRepo{
		findByIDAndUserFn: func(ctx context.Context, id, userID string) (*model.Subject, error) {
			return &model.Subject{ID: id, UserID: userID, Name: "旧名", Content: "旧内容"}, nil
		},
	}
	svc := NewService(repo, &mockCascade{})

	subject, err := svc.Update(context.Background(), "user-1", "subj-1", "新名", "新内容")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if subject.Name != "新名" || subject.Content != "新内容" {
		t.Errorf("got %q/%q, want updated values", subject.Name, subject.Content)
	}
}

func TestService_Delete_Success_TriggersCascade(t *testing.T) {
	cascadeCalled := false
	repo := &mockSubjectRepo{
		deleteByIDAndUserFn: func(ctx context.Context, id, userID string) (bool, error) {
			return true, nil
		},
	}
	casc := &mockCascade{
		onSubjectDeletedFn: func(ctx context.Context, subjectID string) error {
			cascadeCalled = true
			if subjectID != "subj-1" {
				t.Errorf("subjectID = %q, want %q", subjectID, "subj-1")
			}
			return nil
		},
	}
	svc := NewService(repo, casc)

	if err := svc.Delete(context.Background(), "user-1", "subj-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !cascadeCalled {
		t.Error("expected cascade to be triggered")
	}
}

func TestService_Delete_NotFound_SkipsCascade(t *testing.T) {
	casc := &mockCascade{
		onSubjectDeletedFn: func(ctx context.Context, subjectID string) error {
			t.Error("cascade must not run when nothing was deleted")
			return nil
		},
	}
	svc := NewService(&mockSubjectRepo{}, casc)

	err := svc.Delete(context.Background(), "user-1", "missing")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSubjectNotFound {
		t.Errorf("error = %v, want SUBJECT_NOT_FOUND", err)
	}
}
