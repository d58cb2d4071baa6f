// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/noteman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレス（小文字正規化済み）でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスの一意制約違反の場合はmodel.NewEmailTakenError()を返す。
	Create(ctx context.Context, user *model.User) error
}

// SubjectRepository は科目データの永続化インターフェース。
// 読み書きは常に所有者IDでスコープされる。
type SubjectRepository interface {
	// FindByIDAndUser は指定IDかつ指定所有者の科目を取得する。見つからない場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Subject, error)

	// ListByUser は所有者の科目一覧を作成日時の降順で返す。
	ListByUser(ctx context.Context, userID string) ([]*model.Subject, error)

	// Create は科目を作成する。
	Create(ctx context.Context, subject *model.Subject) error

	// Update は科目の名前と内容を更新する。
	Update(ctx context.Context, subject *model.Subject) error

	// DeleteByIDAndUser は指定IDかつ指定所有者の科目を削除する。
	// 削除された場合はtrueを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
}

// TopicRepository はトピックデータの永続化インターフェース。
// 所有者スコープの操作と、公開トピックの注釈付きビューを提供する。
type TopicRepository interface {
	// FindByID は指定IDのトピックを所有者に関係なく取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Topic, error)

	// FindByIDAndUser は指定IDかつ指定所有者のトピックを取得する。見つからない場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Topic, error)

	// ListBySubjectAndUser は指定科目かつ指定所有者のトピック一覧を作成日時の降順で返す。
	ListBySubjectAndUser(ctx context.Context, subjectID, userID string) ([]*model.Topic, error)

	// ListIDsBySubject は指定科目配下の全トピックIDを返す（所有者スコープなし、カスケード削除用）。
	ListIDsBySubject(ctx context.Context, subjectID string) ([]string, error)

	// Create はトピックを作成する。
	Create(ctx context.Context, topic *model.Topic) error

	// Update はトピックのタイトルを更新する。
	Update(ctx context.Context, topic *model.Topic) error

	// UpdatePublished は公開フラグを更新する。同じ値への更新は冪等に成功する。
	UpdatePublished(ctx context.Context, id string, published bool) error

	// DeleteByIDAndUser は指定IDかつ指定所有者のトピックを削除する。
	// 削除された場合はtrueを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)

	// DeleteBySubjectID は指定科目配下の全トピックを削除し、削除件数を返す。
	DeleteBySubjectID(ctx context.Context, subjectID string) (int64, error)

	// ListPublished は公開トピック一覧を作成日時の降順で返す。
	// いいね/保存の件数と閲覧者自身の状態を注釈として付加する。
	ListPublished(ctx context.Context, viewerID string) ([]model.AnnotatedTopic, error)

	// FindPublishedByID は公開中のトピックを注釈付きで取得する。
	// 存在しない、または未公開の場合はnilを返す。
	FindPublishedByID(ctx context.Context, id, viewerID string) (*model.AnnotatedTopic, error)

	// ListLikedBy は指定ユーザーがいいねしたトピック一覧を注釈付きで返す。
	ListLikedBy(ctx context.Context, userID string) ([]model.AnnotatedTopic, error)

	// ListSavedBy は指定ユーザーが保存したトピック一覧を注釈付きで返す。
	ListSavedBy(ctx context.Context, userID string) ([]model.AnnotatedTopic, error)
}

// ReactionRepository はいいね/保存の集合関係の永続化インターフェース。
type ReactionRepository interface {
	// ToggleLike はいいねの集合メンバーシップを原子的に反転する。
	// 反転後の状態（メンバーかどうか）とトグル後の総数を返す。
	ToggleLike(ctx context.Context, topicID, userID string) (liked bool, count int, err error)

	// ToggleSave は保存の集合メンバーシップを原子的に反転する。
	ToggleSave(ctx context.Context, topicID, userID string) (saved bool, count int, err error)

	// DeleteByTopicIDs は指定トピック群のいいね/保存を全て削除し、削除件数を返す。
	// 空のID集合には何もしない。
	DeleteByTopicIDs(ctx context.Context, topicIDs []string) (int64, error)
}

// NoteRepository はノートデータの永続化インターフェース。
type NoteRepository interface {
	// FindByIDAndUser は指定IDかつ指定所有者のノートを取得する。見つからない場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Note, error)

	// ListByTopicAndUser は指定トピックかつ指定所有者のノート一覧を作成日時の降順で返す。
	ListByTopicAndUser(ctx context.Context, topicID, userID string) ([]*model.Note, error)

	// ListByTopic は指定トピック配下の全ノートを所有者に関係なく返す（公開ビュー用）。
	ListByTopic(ctx context.Context, topicID string) ([]*model.Note, error)

	// Create はノートを作成する。
	Create(ctx context.Context, note *model.Note) error

	// Update はノートの内容と画像参照を更新する。
	Update(ctx context.Context, note *model.Note) error

	// DeleteByIDAndUser は指定IDかつ指定所有者のノートを削除する。
	// 削除された場合はtrueを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)

	// DeleteByTopicIDs は指定トピック群配下の全ノートを削除し、削除件数を返す。
	// 空のID集合には何もしない。
	DeleteByTopicIDs(ctx context.Context, topicIDs []string) (int64, error)
}
