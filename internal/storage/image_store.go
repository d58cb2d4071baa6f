// Package storage はノート画像のファイル保存を提供する。
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrImageTooLarge は画像サイズが上限を超えた場合のエラー。
var ErrImageTooLarge = fmt.Errorf("画像サイズが上限を超えています")

// ImageStore はノート画像の保存機能のインターフェースを定義する。
type ImageStore interface {
	// Save は画像データを保存し、配信用の参照パス（/uploads/<ファイル名>）を返す。
	// サイズ上限を超える場合はErrImageTooLargeを返す。
	Save(filename string, r io.Reader) (string, error)
}

// DiskImageStore はローカルディスクに画像を保存するImageStoreの実装。
type DiskImageStore struct {
	dir     string
	maxSize int64
}

// NewDiskImageStore は新しいDiskImageStoreを生成する。
// 保存先ディレクトリが存在しない場合は作成する。
func NewDiskImageStore(dir string, maxSize int64) (*DiskImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("アップロードディレクトリの作成に失敗: %w", err)
	}
	return &DiskImageStore{
		dir:     dir,
		maxSize: maxSize,
	}, nil
}

// Save は画像データをディスクに保存し、配信用の参照パスを返す。
// ファイル名はタイムスタンプで一意化し、元のファイル名の拡張子のみ引き継ぐ。
func (s *DiskImageStore) Save(filename string, r io.Reader) (string, error) {
	name := uniqueName(filename)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("画像ファイルの作成に失敗: %w", err)
	}
	defer f.Close()

	// maxSize+1バイトまで読み、超過を検出する
	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("画像ファイルの書き込みに失敗: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return "", ErrImageTooLarge
	}

	return "/uploads/" + name, nil
}

// Dir は保存先ディレクトリを返す。静的配信の設定に使用する。
func (s *DiskImageStore) Dir() string {
	return s.dir
}

// uniqueName はタイムスタンプベースの一意なファイル名を生成する。
// 拡張子は元のファイル名から引き継ぎ、英数字とドット以外は除去する。
func uniqueName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	var b strings.Builder
	for _, r := range ext {
		if r == '.' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return fmt.Sprintf("%d%s", time.Now().UnixNano(), b.String())
}
