// Package note はノート管理のドメインロジックを提供する。
package note

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/noteman/internal/model"
	"github.com/hitoshi/noteman/internal/repository"
	"github.com/hitoshi/noteman/internal/security"
	"github.com/hitoshi/noteman/internal/storage"
)

// UploadMetrics は画像アップロードのメトリクス記録機能。
type UploadMetrics interface {
	RecordImageUpload()
}

// Service はノート管理のサービス層。
// ノートは常にトピックに属し、操作前にトピックの所有権を検証する。
// 本文HTMLは保存前にサニタイズされる。
type Service struct {
	noteRepo  repository.NoteRepository
	topicRepo repository.TopicRepository
	sanitizer security.ContentSanitizerService
	images    storage.ImageStore
	metrics   UploadMetrics
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	noteRepo repository.NoteRepository,
	topicRepo repository.TopicRepository,
	sanitizer security.ContentSanitizerService,
	images storage.ImageStore,
	metrics UploadMetrics,
) *Service {
	return &Service{
		noteRepo:  noteRepo,
		topicRepo: topicRepo,
		sanitizer: sanitizer,
		images:    images,
		metrics:   metrics,
	}
}

// ImageUpload はアップロードされた画像データ。
type ImageUpload struct {
	Filename string
	Data     io.Reader
}

// Create は指定トピック配下に新しいノートを作成する。
// トピックが存在しない、または他人のトピックの場合はTopicNotFoundを返す。
// 画像が添付されている場合は保存し、参照パスをノートに記録する。
func (s *Service) Create(ctx context.Context, userID, topicID, content string, image *ImageUpload) (*model.Note, error) {
	content = s.sanitizer.Sanitize(strings.TrimSpace(content))
	if content == "" {
		return nil, model.NewValidationError("ノートの内容を入力してください")
	}

	if err := s.verifyTopicOwnership(ctx, userID, topicID); err != nil {
		return nil, err
	}

	imageRef, err := s.saveImage(image)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	note := &model.Note{
		ID:        uuid.New().String(),
		TopicID:   topicID,
		UserID:    userID,
		Content:   content,
		Image:     imageRef,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("ノートの作成に失敗しました: %w", err)
	}

	return note, nil
}

// ListByTopic は指定トピック配下の所有ノート一覧を作成日時の降順で返す。
func (s *Service) ListByTopic(ctx context.Context, userID, topicID string) ([]*model.Note, error) {
	if err := s.verifyTopicOwnership(ctx, userID, topicID); err != nil {
		return nil, err
	}

	notes, err := s.noteRepo.ListByTopicAndUser(ctx, topicID, userID)
	if err != nil {
		return nil, fmt.Errorf("ノート一覧の取得に失敗しました: %w", err)
	}
	return notes, nil
}

// Update はノートの内容を更新する。画像が添付されている場合は差し替える。
func (s *Service) Update(ctx context.Context, userID, noteID, content string, image *ImageUpload) (*model.Note, error) {
	content = s.sanitizer.Sanitize(strings.TrimSpace(content))
	if content == "" {
		return nil, model.NewValidationError("ノートの内容を入力してください")
	}

	note, err := s.noteRepo.FindByIDAndUser(ctx, noteID, userID)
	if err != nil {
		return nil, fmt.Errorf("ノートの取得に失敗しました: %w", err)
	}
	if note == nil {
		return nil, model.NewNoteNotFoundError(noteID)
	}

	note.Content = content
	note.UpdatedAt = time.Now()

	if image != nil {
		imageRef, err := s.saveImage(image)
		if err != nil {
			return nil, err
		}
		note.Image = imageRef
	}

	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("ノートの更新に失敗しました: %w", err)
	}

	return note, nil
}

// Delete は指定IDの所有ノートを削除する。
func (s *Service) Delete(ctx context.Context, userID, noteID string) error {
	deleted, err := s.noteRepo.DeleteByIDAndUser(ctx, noteID, userID)
	if err != nil {
		return fmt.Errorf("ノートの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewNoteNotFoundError(noteID)
	}
	return nil
}

// saveImage は画像を保存して参照パスを返す。imageがnilの場合は空文字を返す。
func (s *Service) saveImage(image *ImageUpload) (string, error) {
	if image == nil {
		return "", nil
	}

	ref, err := s.images.Save(image.Filename, image.Data)
	if err != nil {
		if err == storage.ErrImageTooLarge {
			return "", model.NewValidationError("画像サイズが上限を超えています")
		}
		return "", fmt.Errorf("画像の保存に失敗しました: %w", err)
	}

	s.metrics.RecordImageUpload()
	return ref, nil
}

// verifyTopicOwnership はトピックが存在し呼び出しユーザーの所有であることを検証する。
func (s *Service) verifyTopicOwnership(ctx context.Context, userID, topicID string) error {
	topic, err := s.topicRepo.FindByIDAndUser(ctx, topicID, userID)
	if err != nil {
		return fmt.Errorf("トピックの取得に失敗しました: %w", err)
	}
	if topic == nil {
		return model.NewTopicNotFoundError(topicID)
	}
	return nil
}
