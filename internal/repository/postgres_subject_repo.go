package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/noteman/internal/model"
)

// PostgresSubjectRepo はPostgreSQLを使用した科目リポジトリ。
type PostgresSubjectRepo struct {
	db *sql.DB
}

// NewPostgresSubjectRepo はPostgresSubjectRepoを生成する。
func NewPostgresSubjectRepo(db *sql.DB) *PostgresSubjectRepo {
	return &PostgresSubjectRepo{db: db}
}

// FindByIDAndUser は指定IDかつ指定所有者の科目を取得する。見つからない場合はnilを返す。
func (r *PostgresSubjectRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Subject, error) {
	subject := &model.Subject{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, content, created_at, updated_at
		 FROM subjects WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&subject.ID, &subject.UserID, &subject.Name, &subject.Content,
		&subject.CreatedAt, &subject.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("科目の取得に失敗しました: %w", err)
	}

	return subject, nil
}

// ListByUser は所有者の科目一覧を作成日時の降順で返す。
func (r *PostgresSubjectRepo) ListByUser(ctx context.Context, userID string) ([]*model.Subject, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, content, created_at, updated_at
		 FROM subjects WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("科目一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var subjects []*model.Subject
	for rows.Next() {
		subject := &model.Subject{}
		if err := rows.Scan(&subject.ID, &subject.UserID, &subject.Name, &subject.Content,
			&subject.CreatedAt, &subject.UpdatedAt); err != nil {
			return nil, fmt.Errorf("科目一覧の読み取りに失敗しました: %w", err)
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("科目一覧の走査に失敗しました: %w", err)
	}

	return subjects, nil
}

// Create は科目を作成する。
func (r *PostgresSubjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subjects (id, user_id, name, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		subject.ID, subject.UserID, subject.Name, subject.Content,
		subject.CreatedAt, subject.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("科目の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は科目の名前と内容を更新する。
// WHERE句で所有者を再確認するため、他ユーザーの科目は更新されない。
func (r *PostgresSubjectRepo) Update(ctx context.Context, subject *model.Subject) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE subjects SET name = $3, content = $4, updated_at = $5
		 WHERE id = $1 AND user_id = $2`,
		subject.ID, subject.UserID, subject.Name, subject.Content, subject.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("科目の更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByIDAndUser は指定IDかつ指定所有者の科目を削除する。削除された場合はtrueを返す。
func (r *PostgresSubjectRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM subjects WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("科目の削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ SubjectRepository = (*PostgresSubjectRepo)(nil)
