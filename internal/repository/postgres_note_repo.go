package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/noteman/internal/model"
)

// PostgresNoteRepo はPostgreSQLを使用したノートリポジトリ。
type PostgresNoteRepo struct {
	db *sql.DB
}

// NewPostgresNoteRepo はPostgresNoteRepoを生成する。
func NewPostgresNoteRepo(db *sql.DB) *PostgresNoteRepo {
	return &PostgresNoteRepo{db: db}
}

// FindByIDAndUser は指定IDかつ指定所有者のノートを取得する。見つからない場合はnilを返す。
func (r *PostgresNoteRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Note, error) {
	note := &model.Note{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, topic_id, user_id, content, image, created_at, updated_at
		 FROM notes WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&note.ID, &note.TopicID, &note.UserID, &note.Content, &note.Image,
		&note.CreatedAt, &note.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ノートの取得に失敗しました: %w", err)
	}

	return note, nil
}

// ListByTopicAndUser は指定トピックかつ指定所有者のノート一覧を作成日時の降順で返す。
func (r *PostgresNoteRepo) ListByTopicAndUser(ctx context.Context, topicID, userID string) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, topic_id, user_id, content, image, created_at, updated_at
		 FROM notes WHERE topic_id = $1 AND user_id = $2
		 ORDER BY created_at DESC`,
		topicID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ノート一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// ListByTopic は指定トピック配下の全ノートを所有者に関係なく返す。
// 公開トピックの閲覧ビュー専用。呼び出し側が公開状態を確認していることが前提。
func (r *PostgresNoteRepo) ListByTopic(ctx context.Context, topicID string) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, topic_id, user_id, content, image, created_at, updated_at
		 FROM notes WHERE topic_id = $1
		 ORDER BY created_at DESC`,
		topicID,
	)
	if err != nil {
		return nil, fmt.Errorf("トピック配下ノートの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectNotes(rows)
}

// Create はノートを作成する。
func (r *PostgresNoteRepo) Create(ctx context.Context, note *model.Note) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, topic_id, user_id, content, image, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		note.ID, note.TopicID, note.UserID, note.Content, note.Image,
		note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ノートの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はノートの内容と画像参照を更新する。
func (r *PostgresNoteRepo) Update(ctx context.Context, note *model.Note) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notes SET content = $3, image = $4, updated_at = $5
		 WHERE id = $1 AND user_id = $2`,
		note.ID, note.UserID, note.Content, note.Image, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ノートの更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByIDAndUser は指定IDかつ指定所有者のノートを削除する。削除された場合はtrueを返す。
func (r *PostgresNoteRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("ノートの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}

	return rowsAffected > 0, nil
}

// DeleteByTopicIDs は指定トピック群配下の全ノートを削除し、削除件数を返す。
// 既に削除済みのノートに対しては何もしない（再実行安全）。
func (r *PostgresNoteRepo) DeleteByTopicIDs(ctx context.Context, topicIDs []string) (int64, error) {
	if len(topicIDs) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE topic_id = ANY($1)`,
		pq.Array(topicIDs),
	)
	if err != nil {
		return 0, fmt.Errorf("トピック配下ノートの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}

	return rowsAffected, nil
}

// collectNotes はノートの行集合を読み取る。
func collectNotes(rows *sql.Rows) ([]*model.Note, error) {
	var notes []*model.Note
	for rows.Next() {
		note := &model.Note{}
		if err := rows.Scan(&note.ID, &note.TopicID, &note.UserID, &note.Content, &note.Image,
			&note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ノートの読み取りに失敗しました: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ノートの走査に失敗しました: %w", err)
	}

	return notes, nil
}

// compile-time interface check
var _ NoteRepository = (*PostgresNoteRepo)(nil)
