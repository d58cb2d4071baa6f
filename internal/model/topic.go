// Package model はドメインモデルを定義する。
package model

import "time"

// Topic は科目配下のタイトル付き単位を表す。
// publishedがtrueの場合のみ、所有者以外のユーザーから閲覧・いいね・保存できる。
type Topic struct {
	ID        string
	SubjectID string
	UserID    string
	Title     string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TopicAuthor は公開ビューに埋め込むトピック作成者の表示情報。
type TopicAuthor struct {
	ID        string
	FirstName string
	LastName  string
}

// AnnotatedTopic はトピックに閲覧者視点の集計情報を付加したモデル。
// topic_likes / topic_saves テーブルとJOINして取得される。
type AnnotatedTopic struct {
	Topic
	Author     TopicAuthor
	LikesCount int
	SavesCount int
	Liked      bool // 閲覧者がいいね済みか
	Saved      bool // 閲覧者が保存済みか
}
