// Package topic はトピック管理のドメインロジックを提供する。
package topic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/noteman/internal/model"
	"github.com/hitoshi/noteman/internal/repository"
)

// CascadeDeleter はトピック削除後の配下データ削除機能。
type CascadeDeleter interface {
	OnTopicDeleted(ctx context.Context, topicID string) error
}

// Service はトピック管理のサービス層。
// トピックは常に科目に属し、操作前に科目の所有権を検証する。
type Service struct {
	topicRepo   repository.TopicRepository
	subjectRepo repository.SubjectRepository
	cascade     CascadeDeleter
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	topicRepo repository.TopicRepository,
	subjectRepo repository.SubjectRepository,
	cascade CascadeDeleter,
) *Service {
	return &Service{
		topicRepo:   topicRepo,
		subjectRepo: subjectRepo,
		cascade:     cascade,
	}
}

// Create は指定科目配下に新しいトピックを作成する。
// 科目が存在しない、または他人の科目の場合はSubjectNotFoundを返す。
// 新規トピックは常に非公開で作成される。
func (s *Service) Create(ctx context.Context, userID, subjectID, title string) (*model.Topic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.NewValidationError("トピックのタイトルを入力してください")
	}

	if err := s.verifySubjectOwnership(ctx, userID, subjectID); err != nil {
		return nil, err
	}

	now := time.Now()
	topic := &model.Topic{
		ID:        uuid.New().String(),
		SubjectID: subjectID,
		UserID:    userID,
		Title:     title,
		Published: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.topicRepo.Create(ctx, topic); err != nil {
		return nil, fmt.Errorf("トピックの作成に失敗しました: %w", err)
	}

	return topic, nil
}

// ListBySubject は指定科目配下の所有トピック一覧を作成日時の降順で返す。
func (s *Service) ListBySubject(ctx context.Context, userID, subjectID string) ([]*model.Topic, error) {
	if err := s.verifySubjectOwnership(ctx, userID, subjectID); err != nil {
		return nil, err
	}

	topics, err := s.topicRepo.ListBySubjectAndUser(ctx, subjectID, userID)
	if err != nil {
		return nil, fmt.Errorf("トピック一覧の取得に失敗しました: %w", err)
	}
	return topics, nil
}

// Get は指定IDの所有トピックを返す。
func (s *Service) Get(ctx context.Context, userID, topicID string) (*model.Topic, error) {
	topic, err := s.topicRepo.FindByIDAndUser(ctx, topicID, userID)
	if err != nil {
		return nil, fmt.Errorf("トピックの取得に失敗しました: %w", err)
	}
	if topic == nil {
		return nil, model.NewTopicNotFoundError(topicID)
	}
	return topic, nil
}

// Update はトピックのタイトルを更新する。
func (s *Service) Update(ctx context.Context, userID, topicID, title string) (*model.Topic, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.NewValidationError("トピックのタイトルを入力してください")
	}

	topic, err := s.topicRepo.FindByIDAndUser(ctx, topicID, userID)
	if err != nil {
		return nil, fmt.Errorf("トピックの取得に失敗しました: %w", err)
	}
	if topic == nil {
		return nil, model.NewTopicNotFoundError(topicID)
	}

	topic.Title = title
	topic.UpdatedAt = time.Now()

	if err := s.topicRepo.Update(ctx, topic); err != nil {
		return nil, fmt.Errorf("トピックの更新に失敗しました: %w", err)
	}

	return topic, nil
}

// SetPublished はトピックの公開状態を設定する。
// 既に同じ状態の場合も冪等に成功し、現在の状態を返す。
// 非公開化してもいいね・保存のメンバーシップは保持される。
func (s *Service) SetPublished(ctx context.Context, userID, topicID string, published bool) (*model.Topic, error) {
	topic, err := s.topicRepo.FindByIDAndUser(ctx, topicID, userID)
	if err != nil {
		return nil, fmt.Errorf("トピックの取得に失敗しました: %w", err)
	}
	if topic == nil {
		return nil, model.NewTopicNotFoundError(topicID)
	}

	if topic.Published != published {
		if err := s.topicRepo.UpdatePublished(ctx, topicID, published); err != nil {
			return nil, fmt.Errorf("公開状態の更新に失敗しました: %w", err)
		}
		topic.Published = published
		topic.UpdatedAt = time.Now()
	}

	return topic, nil
}

// Delete はトピックと配下のノート・いいね・保存を削除する。
func (s *Service) Delete(ctx context.Context, userID, topicID string) error {
	deleted, err := s.topicRepo.DeleteByIDAndUser(ctx, topicID, userID)
	if err != nil {
		return fmt.Errorf("トピックの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewTopicNotFoundError(topicID)
	}

	if err := s.cascade.OnTopicDeleted(ctx, topicID); err != nil {
		return fmt.Errorf("トピック配下データの削除に失敗しました: %w", err)
	}

	return nil
}

// verifySubjectOwnership は科目が存在し呼び出しユーザーの所有であることを検証する。
func (s *Service) verifySubjectOwnership(ctx context.Context, userID, subjectID string) error {
	subject, err := s.subjectRepo.FindByIDAndUser(ctx, subjectID, userID)
	if err != nil {
		return fmt.Errorf("科目の取得に失敗しました: %w", err)
	}
	if subject == nil {
		return model.NewSubjectNotFoundError(subjectID)
	}
	return nil
}
