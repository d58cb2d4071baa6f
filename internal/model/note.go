// Package model はドメインモデルを定義する。
package model

import "time"

// Note はトピック配下のリッチテキストエントリを表す。
type Note struct {
	ID        string
	TopicID   string
	UserID    string
	Content   string // サニタイズ済みHTML
	Image     string // 画像参照パス（例: /uploads/xxx.png）。未添付の場合は空文字列。
	CreatedAt time.Time
	UpdatedAt time.Time
}
