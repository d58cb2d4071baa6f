// Package cascade はサブジェクト・トピック削除時の関連データ削除を調整する。
//
// データベースには外部キー制約を設けず、アプリケーション層で
// 削除順序（ノート → リアクション → トピック）を制御する。
// 各ステップは冪等であり、途中で失敗しても再実行で回復できる。
package cascade

import (
	"context"
	"fmt"
	"log/slog"
)

// TopicIDLister はサブジェクト配下のトピックIDの列挙機能。
type TopicIDLister interface {
	ListIDsBySubject(ctx context.Context, subjectID string) ([]string, error)
}

// TopicBulkDeleter はサブジェクト配下のトピックの一括削除機能。
type TopicBulkDeleter interface {
	DeleteBySubjectID(ctx context.Context, subjectID string) (int64, error)
}

// NoteBulkDeleter はトピック集合に属するノートの一括削除機能。
type NoteBulkDeleter interface {
	DeleteByTopicIDs(ctx context.Context, topicIDs []string) (int64, error)
}

// ReactionBulkDeleter はトピック集合に属するいいね・保存の一括削除機能。
type ReactionBulkDeleter interface {
	DeleteByTopicIDs(ctx context.Context, topicIDs []string) (int64, error)
}

// CascadeMetrics はカスケード削除のメトリクス記録機能。
type CascadeMetrics interface {
	RecordCascadeDeleted(entity string, count int)
}

// Coordinator は親エンティティ削除後の子エンティティ削除を実行する。
type Coordinator struct {
	topicIDs  TopicIDLister
	topics    TopicBulkDeleter
	notes     NoteBulkDeleter
	reactions ReactionBulkDeleter
	metrics   CascadeMetrics
	logger    *slog.Logger
}

// NewCoordinator は新しいCoordinatorを生成する。
func NewCoordinator(
	topicIDs TopicIDLister,
	topics TopicBulkDeleter,
	notes NoteBulkDeleter,
	reactions ReactionBulkDeleter,
	metrics CascadeMetrics,
	logger *slog.Logger,
) *Coordinator {
	return &Coordinator{
		topicIDs:  topicIDs,
		topics:    topics,
		notes:     notes,
		reactions: reactions,
		metrics:   metrics,
		logger:    logger,
	}
}

// OnSubjectDeleted はサブジェクト削除後に配下のトピック・ノート・リアクションを削除する。
// 削除順序: ノート → リアクション → トピック。
// トピックを最後に削除することで、途中失敗時もトピックIDから再実行できる。
func (c *Coordinator) OnSubjectDeleted(ctx context.Context, subjectID string) error {
	topicIDs, err := c.topicIDs.ListIDsBySubject(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("トピックID一覧の取得に失敗: %w", err)
	}

	if len(topicIDs) > 0 {
		if err := c.deleteTopicChildren(ctx, topicIDs); err != nil {
			return err
		}
	}

	deleted, err := c.topics.DeleteBySubjectID(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("トピックの削除に失敗: %w", err)
	}
	c.metrics.RecordCascadeDeleted("topic", int(deleted))

	c.logger.Info("cascade delete completed",
		slog.String("subject_id", subjectID),
		slog.Int("topics", len(topicIDs)),
	)
	return nil
}

// OnTopicDeleted はトピック削除後に配下のノート・リアクションを削除する。
func (c *Coordinator) OnTopicDeleted(ctx context.Context, topicID string) error {
	return c.deleteTopicChildren(ctx, []string{topicID})
}

// deleteTopicChildren はトピック集合に属するノートとリアクションを削除する。
func (c *Coordinator) deleteTopicChildren(ctx context.Context, topicIDs []string) error {
	notesDeleted, err := c.notes.DeleteByTopicIDs(ctx, topicIDs)
	if err != nil {
		return fmt.Errorf("ノートの削除に失敗: %w", err)
	}
	c.metrics.RecordCascadeDeleted("note", int(notesDeleted))

	reactionsDeleted, err := c.reactions.DeleteByTopicIDs(ctx, topicIDs)
	if err != nil {
		return fmt.Errorf("リアクションの削除に失敗: %w", err)
	}
	c.metrics.RecordCascadeDeleted("reaction", int(reactionsDeleted))

	return nil
}
