package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// PostgresReactionRepo はPostgreSQLを使用したいいね/保存リポジトリ。
// topic_likes / topic_saves テーブルを対象とする。
type PostgresReactionRepo struct {
	db *sql.DB
}

// NewPostgresReactionRepo はPostgresReactionRepoを生成する。
func NewPostgresReactionRepo(db *sql.DB) *PostgresReactionRepo {
	return &PostgresReactionRepo{db: db}
}

// ToggleLike はいいねの集合メンバーシップを原子的に反転する。
func (r *PostgresReactionRepo) ToggleLike(ctx context.Context, topicID, userID string) (bool, int, error) {
	return r.toggle(ctx, "topic_likes", topicID, userID)
}

// ToggleSave は保存の集合メンバーシップを原子的に反転する。
func (r *PostgresReactionRepo) ToggleSave(ctx context.Context, topicID, userID string) (bool, int, error) {
	return r.toggle(ctx, "topic_saves", topicID, userID)
}

// toggle は集合メンバーシップを反転する。
// 読み取り後に書き込むラウンドトリップではなく、複合主キーを利用した
// INSERT ... ON CONFLICT DO NOTHING を先に試すことで追加を原子的に行う。
// 挿入が競合した（既にメンバーだった）場合のみDELETEで除去する。
// tableは固定の定数名のみ渡される（SQL組み立てにユーザー入力は混入しない）。
func (r *PostgresReactionRepo) toggle(ctx context.Context, table, topicID, userID string) (bool, int, error) {
	result, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (topic_id, user_id, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (topic_id, user_id) DO NOTHING`, table),
		topicID, userID,
	)
	if err != nil {
		return false, 0, fmt.Errorf("メンバーシップの追加に失敗しました: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("トグル結果の取得に失敗しました: %w", err)
	}

	member := inserted > 0
	if !member {
		// 既にメンバーだったので除去する（アンライク/アンセーブ）
		if _, err := r.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE topic_id = $1 AND user_id = $2`, table),
			topicID, userID,
		); err != nil {
			return false, 0, fmt.Errorf("メンバーシップの除去に失敗しました: %w", err)
		}
	}

	var count int
	if err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s WHERE topic_id = $1`, table),
		topicID,
	).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("メンバー数の取得に失敗しました: %w", err)
	}

	return member, count, nil
}

// DeleteByTopicIDs は指定トピック群のいいね/保存を全て削除し、削除件数を返す。
func (r *PostgresReactionRepo) DeleteByTopicIDs(ctx context.Context, topicIDs []string) (int64, error) {
	if len(topicIDs) == 0 {
		return 0, nil
	}

	var total int64
	for _, table := range []string{"topic_likes", "topic_saves"} {
		result, err := r.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE topic_id = ANY($1)`, table),
			pq.Array(topicIDs),
		)
		if err != nil {
			return total, fmt.Errorf("リアクションの削除に失敗しました: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("削除結果の取得に失敗しました: %w", err)
		}
		total += n
	}

	return total, nil
}

// compile-time interface check
var _ ReactionRepository = (*PostgresReactionRepo)(nil)
