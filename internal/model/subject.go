// Package model はドメインモデルを定義する。
package model

import "time"

// Subject はトピックを束ねる最上位のユーザー所有フォルダを表す。
// UserIDは作成時に認証プリンシパルから設定され、以後変更されない。
type Subject struct {
	ID        string
	UserID    string
	Name      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// 科目名の最大長（文字数）。
const SubjectNameMaxLength = 200
