package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/noteman/internal/model"
)

// PostgresTopicRepo はPostgreSQLを使用したトピックリポジトリ。
type PostgresTopicRepo struct {
	db *sql.DB
}

// NewPostgresTopicRepo はPostgresTopicRepoを生成する。
func NewPostgresTopicRepo(db *sql.DB) *PostgresTopicRepo {
	return &PostgresTopicRepo{db: db}
}

// FindByID は指定IDのトピックを所有者に関係なく取得する。見つからない場合はnilを返す。
func (r *PostgresTopicRepo) FindByID(ctx context.Context, id string) (*model.Topic, error) {
	topic := &model.Topic{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, subject_id, user_id, title, published, created_at, updated_at
		 FROM topics WHERE id = $1`,
		id,
	).Scan(&topic.ID, &topic.SubjectID, &topic.UserID, &topic.Title, &topic.Published,
		&topic.CreatedAt, &topic.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("トピックの取得に失敗しました: %w", err)
	}

	return topic, nil
}

// FindByIDAndUser は指定IDかつ指定所有者のトピックを取得する。見つからない場合はnilを返す。
func (r *PostgresTopicRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Topic, error) {
	topic := &model.Topic{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, subject_id, user_id, title, published, created_at, updated_at
		 FROM topics WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&topic.ID, &topic.SubjectID, &topic.UserID, &topic.Title, &topic.Published,
		&topic.CreatedAt, &topic.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("トピックの取得に失敗しました: %w", err)
	}

	return topic, nil
}

// ListBySubjectAndUser は指定科目かつ指定所有者のトピック一覧を作成日時の降順で返す。
func (r *PostgresTopicRepo) ListBySubjectAndUser(ctx context.Context, subjectID, userID string) ([]*model.Topic, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, subject_id, user_id, title, published, created_at, updated_at
		 FROM topics WHERE subject_id = $1 AND user_id = $2
		 ORDER BY created_at DESC`,
		subjectID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("トピック一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var topics []*model.Topic
	for rows.Next() {
		topic := &model.Topic{}
		if err := rows.Scan(&topic.ID, &topic.SubjectID, &topic.UserID, &topic.Title,
			&topic.Published, &topic.CreatedAt, &topic.UpdatedAt); err != nil {
			return nil, fmt.Errorf("トピック一覧の読み取りに失敗しました: %w", err)
		}
		topics = append(topics, topic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("トピック一覧の走査に失敗しました: %w", err)
	}

	return topics, nil
}

// ListIDsBySubject は指定科目配下の全トピックIDを返す。カスケード削除用。
func (r *PostgresTopicRepo) ListIDsBySubject(ctx context.Context, subjectID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM topics WHERE subject_id = $1`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("トピックIDの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("トピックIDの読み取りに失敗しました: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("トピックIDの走査に失敗しました: %w", err)
	}

	return ids, nil
}

// Create はトピックを作成する。
func (r *PostgresTopicRepo) Create(ctx context.Context, topic *model.Topic) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO topics (id, subject_id, user_id, title, published, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		topic.ID, topic.SubjectID, topic.UserID, topic.Title, topic.Published,
		topic.CreatedAt, topic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("トピックの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はトピックのタイトルを更新する。
func (r *PostgresTopicRepo) Update(ctx context.Context, topic *model.Topic) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE topics SET title = $3, updated_at = $4
		 WHERE id = $1 AND user_id = $2`,
		topic.ID, topic.UserID, topic.Title, topic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("トピックの更新に失敗しました: %w", err)
	}
	return nil
}

// UpdatePublished は公開フラグを更新する。同じ値への更新は冪等に成功する。
func (r *PostgresTopicRepo) UpdatePublished(ctx context.Context, id string, published bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE topics SET published = $2, updated_at = now() WHERE id = $1`,
		id, published,
	)
	if err != nil {
		return fmt.Errorf("公開状態の更新に失敗しました: %w", err)
	}
	return nil
}

// DeleteByIDAndUser は指定IDかつ指定所有者のトピックを削除する。削除された場合はtrueを返す。
func (r *PostgresTopicRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM topics WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("トピックの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}

	return rowsAffected > 0, nil
}

// DeleteBySubjectID は指定科目配下の全トピックを削除し、削除件数を返す。
func (r *PostgresTopicRepo) DeleteBySubjectID(ctx context.Context, subjectID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM topics WHERE subject_id = $1`,
		subjectID,
	)
	if err != nil {
		return 0, fmt.Errorf("科目配下トピックの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
	}

	return rowsAffected, nil
}

// annotatedTopicQuery は注釈付きトピックビューの共通SELECT句。
// $1は閲覧者のユーザーID。呼び出し側がWHERE句以降を連結する。
const annotatedTopicQuery = `
	SELECT t.id, t.subject_id, t.user_id, t.title, t.published, t.created_at, t.updated_at,
	       u.first_name, u.last_name,
	       (SELECT count(*) FROM topic_likes l WHERE l.topic_id = t.id) AS likes_count,
	       (SELECT count(*) FROM topic_saves s WHERE s.topic_id = t.id) AS saves_count,
	       EXISTS (SELECT 1 FROM topic_likes l WHERE l.topic_id = t.id AND l.user_id = $1) AS liked,
	       EXISTS (SELECT 1 FROM topic_saves s WHERE s.topic_id = t.id AND s.user_id = $1) AS saved
	FROM topics t
	JOIN users u ON u.id = t.user_id`

// scanAnnotatedTopic は注釈付きトピックビューの1行を読み取る。
func scanAnnotatedTopic(scan func(dest ...any) error) (*model.AnnotatedTopic, error) {
	at := &model.AnnotatedTopic{}
	err := scan(
		&at.ID, &at.SubjectID, &at.UserID, &at.Title, &at.Published,
		&at.CreatedAt, &at.UpdatedAt,
		&at.Author.FirstName, &at.Author.LastName,
		&at.LikesCount, &at.SavesCount, &at.Liked, &at.Saved,
	)
	if err != nil {
		return nil, err
	}
	at.Author.ID = at.UserID
	return at, nil
}

// ListPublished は公開トピック一覧を作成日時の降順で返す。
func (r *PostgresTopicRepo) ListPublished(ctx context.Context, viewerID string) ([]model.AnnotatedTopic, error) {
	rows, err := r.db.QueryContext(ctx,
		annotatedTopicQuery+`
		 WHERE t.published = TRUE
		 ORDER BY t.created_at DESC`,
		viewerID,
	)
	if err != nil {
		return nil, fmt.Errorf("公開トピック一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectAnnotatedTopics(rows)
}

// FindPublishedByID は公開中のトピックを注釈付きで取得する。
// 存在しない、または未公開の場合はnilを返す。
func (r *PostgresTopicRepo) FindPublishedByID(ctx context.Context, id, viewerID string) (*model.AnnotatedTopic, error) {
	at, err := scanAnnotatedTopic(r.db.QueryRowContext(ctx,
		annotatedTopicQuery+`
		 WHERE t.id = $2 AND t.published = TRUE`,
		viewerID, id,
	).Scan)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("公開トピックの取得に失敗しました: %w", err)
	}

	return at, nil
}

// ListLikedBy は指定ユーザーがいいねしたトピック一覧を注釈付きで返す。
func (r *PostgresTopicRepo) ListLikedBy(ctx context.Context, userID string) ([]model.AnnotatedTopic, error) {
	rows, err := r.db.QueryContext(ctx,
		annotatedTopicQuery+`
		 WHERE t.id IN (SELECT topic_id FROM topic_likes WHERE user_id = $1)
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("いいね済みトピック一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectAnnotatedTopics(rows)
}

// ListSavedBy は指定ユーザーが保存したトピック一覧を注釈付きで返す。
func (r *PostgresTopicRepo) ListSavedBy(ctx context.Context, userID string) ([]model.AnnotatedTopic, error) {
	rows, err := r.db.QueryContext(ctx,
		annotatedTopicQuery+`
		 WHERE t.id IN (SELECT topic_id FROM topic_saves WHERE user_id = $1)
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("保存済みトピック一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectAnnotatedTopics(rows)
}

// collectAnnotatedTopics は注釈付きトピックビューの行集合を読み取る。
func collectAnnotatedTopics(rows *sql.Rows) ([]model.AnnotatedTopic, error) {
	var topics []model.AnnotatedTopic
	for rows.Next() {
		at, err := scanAnnotatedTopic(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("注釈付きトピックの読み取りに失敗しました: %w", err)
		}
		topics = append(topics, *at)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("注釈付きトピックの走査に失敗しました: %w", err)
	}

	return topics, nil
}

// compile-time interface check
var _ TopicRepository = (*PostgresTopicRepo)(nil)
