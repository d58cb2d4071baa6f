// Package social は公開トピックの閲覧といいね・保存のドメインロジックを提供する。
package social

import (
	"context"
	"fmt"

	"github.com/hitoshi/noteman/internal/model"
	"github.com/hitoshi/noteman/internal/repository"
)

// ToggleMetrics はトグル操作のメトリクス記録機能。
type ToggleMetrics interface {
	RecordReactionToggle(kind string)
}

// Service は公開トピックの閲覧といいね・保存のサービス層。
// いいね・保存は公開中のトピックに対してのみ操作できる。
// 未公開トピックへの操作は存在しないトピックと同様にTopicNotFoundを返す。
type Service struct {
	topicRepo    repository.TopicRepository
	noteRepo     repository.NoteRepository
	reactionRepo repository.ReactionRepository
	metrics      ToggleMetrics
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	topicRepo repository.TopicRepository,
	noteRepo repository.NoteRepository,
	reactionRepo repository.ReactionRepository,
	metrics ToggleMetrics,
) *Service {
	return &Service{
		topicRepo:    topicRepo,
		noteRepo:     noteRepo,
		reactionRepo: reactionRepo,
		metrics:      metrics,
	}
}

// PublicTopicDetail は公開トピックの詳細。トピック配下の全ノートを含む。
type PublicTopicDetail struct {
	Topic model.AnnotatedTopic
	Notes []*model.Note
}

// ListPublic は公開トピック一覧を作成日時の降順で返す。
// 各トピックにはいいね・保存の件数と閲覧者自身の状態が注釈される。
func (s *Service) ListPublic(ctx context.Context, viewerID string) ([]model.AnnotatedTopic, error) {
	topics, err := s.topicRepo.ListPublished(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("公開トピック一覧の取得に失敗しました: %w", err)
	}
	return topics, nil
}

// GetPublic は公開トピックの詳細を配下の全ノート付きで返す。
// 未公開または存在しないトピックはTopicNotFoundを返す。
func (s *Service) GetPublic(ctx context.Context, viewerID, topicID string) (*PublicTopicDetail, error) {
	topic, err := s.topicRepo.FindPublishedByID(ctx, topicID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("公開トピックの取得に失敗しました: %w", err)
	}
	if topic == nil {
		return nil, model.NewTopicNotFoundError(topicID)
	}

	notes, err := s.noteRepo.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, fmt.Errorf("ノート一覧の取得に失敗しました: %w", err)
	}

	return &PublicTopicDetail{
		Topic: *topic,
		Notes: notes,
	}, nil
}

// ToggleResult はトグル操作の結果。反転後の状態と総数を保持する。
type ToggleResult struct {
	Active bool
	Count  int
}

// ToggleLike は公開トピックへのいいねを反転する。
// 同じユーザーが2回実行すると元の状態に戻る。
func (s *Service) ToggleLike(ctx context.Context, userID, topicID string) (*ToggleResult, error) {
	if err := s.verifyPublished(ctx, topicID); err != nil {
		return nil, err
	}

	liked, count, err := s.reactionRepo.ToggleLike(ctx, topicID, userID)
	if err != nil {
		return nil, fmt.Errorf("いいねの更新に失敗しました: %w", err)
	}

	s.metrics.RecordReactionToggle("like")
	return &ToggleResult{Active: liked, Count: count}, nil
}

// ToggleSave は公開トピックの保存を反転する。
func (s *Service) ToggleSave(ctx context.Context, userID, topicID string) (*ToggleResult, error) {
	if err := s.verifyPublished(ctx, topicID); err != nil {
		return nil, err
	}

	saved, count, err := s.reactionRepo.ToggleSave(ctx, topicID, userID)
	if err != nil {
		return nil, fmt.Errorf("保存の更新に失敗しました: %w", err)
	}

	s.metrics.RecordReactionToggle("save")
	return &ToggleResult{Active: saved, Count: count}, nil
}

// ListLiked は閲覧者がいいねしたトピック一覧を注釈付きで返す。
// 非公開化されたトピックも含まれる（メンバーシップは公開状態に依存しない）。
func (s *Service) ListLiked(ctx context.Context, userID string) ([]model.AnnotatedTopic, error) {
	topics, err := s.topicRepo.ListLikedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("いいね一覧の取得に失敗しました: %w", err)
	}
	return topics, nil
}

// ListSaved は閲覧者が保存したトピック一覧を注釈付きで返す。
func (s *Service) ListSaved(ctx context.Context, userID string) ([]model.AnnotatedTopic, error) {
	topics, err := s.topicRepo.ListSavedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("保存一覧の取得に失敗しました: %w", err)
	}
	return topics, nil
}

// verifyPublished はトピックが存在し公開中であることを検証する。
func (s *Service) verifyPublished(ctx context.Context, topicID string) error {
	topic, err := s.topicRepo.FindByID(ctx, topicID)
	if err != nil {
		return fmt.Errorf("トピックの取得に失敗しました: %w", err)
	}
	if topic == nil || !topic.Published {
		return model.NewTopicNotFoundError(topicID)
	}
	return nil
}
