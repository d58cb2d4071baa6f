// Package subject は科目管理のドメインロジックを提供する。
package subject

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/noteman/internal/model"
	"github.com/hitoshi/noteman/internal/repository"
)

// CascadeDeleter は科目削除後の配下データ削除機能。
type CascadeDeleter interface {
	OnSubjectDeleted(ctx context.Context, subjectID string) error
}

// Service は科目管理のサービス層。
// 作成・一覧・更新・削除のビジネスロジックと入力検証を提供する。
type Service struct {
	subjectRepo repository.SubjectRepository
	cascade     CascadeDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(subjectRepo repository.SubjectRepository, cascade CascadeDeleter) *Service {
	return &Service{
		subjectRepo: subjectRepo,
		cascade:     cascade,
	}
}

// Create は新しい科目を作成する。
// 名前は1〜200文字、内容は空でないことを検証する。
func (s *Service) Create(ctx context.Context, userID, name, content string) (*model.Subject, error) {
	name = strings.TrimSpace(name)
	content = strings.TrimSpace(content)

	if err := validateSubject(name, content); err != nil {
		return nil, err
	}

	now := time.Now()
	subject := &model.Subject{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("科目の作成に失敗しました: %w", err)
	}

	return subject, nil
}

// List は所有者の科目一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Subject, error) {
	subjects, err := s.subjectRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("科目一覧の取得に失敗しました: %w", err)
	}
	return subjects, nil
}

// Get は指定IDの科目を返す。他人の科目と存在しない科目は区別せずNotFoundを返す。
func (s *Service) Get(ctx context.Context, userID, subjectID string) (*model.Subject, error) {
	subject, err := s.subjectRepo.FindByIDAndUser(ctx, subjectID, userID)
	if err != nil {
		return nil, fmt.Errorf("科目の取得に失敗しました: %w", err)
	}
	if subject == nil {
		return nil, model.NewSubjectNotFoundError(subjectID)
	}
	return subject, nil
}

// Update は科目の名前と内容を更新する。
func (s *Service) Update(ctx context.Context, userID, subjectID, name, content string) (*model.Subject, error) {
	name = strings.TrimSpace(name)
	content = strings.TrimSpace(content)

	if err := validateSubject(name, content); err != nil {
		return nil, err
	}

	subject, err := s.subjectRepo.FindByIDAndUser(ctx, subjectID, userID)
	if err != nil {
		return nil, fmt.Errorf("科目の取得に失敗しました: %w", err)
	}
	if subject == nil {
		return nil, model.NewSubjectNotFoundError(subjectID)
	}

	subject.Name = name
	subject.Content = content
	subject.UpdatedAt = time.Now()

	if err := s.subjectRepo.Update(ctx, subject); err != nil {
		return nil, fmt.Errorf("科目の更新に失敗しました: %w", err)
	}

	return subject, nil
}

// Delete は科目と配下の全データ（トピック・ノート・いいね・保存）を削除する。
// 科目本体を先に削除し、その後に配下データをカスケード削除する。
func (s *Service) Delete(ctx context.Context, userID, subjectID string) error {
	deleted, err := s.subjectRepo.DeleteByIDAndUser(ctx, subjectID, userID)
	if err != nil {
		return fmt.Errorf("科目の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewSubjectNotFoundError(subjectID)
	}

	if err := s.cascade.OnSubjectDeleted(ctx, subjectID); err != nil {
		return fmt.Errorf("科目配下データの削除に失敗しました: %w", err)
	}

	return nil
}

// validateSubject は科目の名前と内容を検証する。
func validateSubject(name, content string) error {
	if name == "" {
		return model.NewValidationError("科目名を入力してください")
	}
	if utf8.RuneCountInString(name) > model.SubjectNameMaxLength {
		return model.NewValidationError(fmt.Sprintf("科目名は%d文字以内で入力してください", model.SubjectNameMaxLength))
	}
	if content == "" {
		return model.NewValidationError("科目の内容を入力してください")
	}
	return nil
}
