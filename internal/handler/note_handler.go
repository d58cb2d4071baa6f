package handler

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/noteman/internal/middleware"
	"github.com/hitoshi/noteman/internal/model"
	"github.com/hitoshi/noteman/internal/note"
)

// NoteServiceInterface はノートハンドラーが必要とするサービスインターフェース。
type NoteServiceInterface interface {
	// Create は指定トピック配下にノートを作成する。
	Create(ctx context.Context, userID, topicID, content string, image *note.ImageUpload) (*model.Note, error)
	// ListByTopic は指定トピック配下の所有ノート一覧を返す。
	ListByTopic(ctx context.Context, userID, topicID string) ([]*model.Note, error)
	// Update はノートの内容と画像を更新する。
	Update(ctx context.Context, userID, noteID, content string, image *note.ImageUpload) (*model.Note, error)
	// Delete は指定IDの所有ノートを削除する。
	Delete(ctx context.Context, userID, noteID string) error
}

// NoteHandler はノート管理のHTTPハンドラー。
// 作成・更新はmultipart/form-data（画像添付あり）とJSON（添付なし）の両方を受け付ける。
type NoteHandler struct {
	service NoteServiceInterface
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(service NoteServiceInterface) *NoteHandler {
	return &NoteHandler{
		service: service,
	}
}

// noteRequest はJSON形式のノート作成・更新リクエストのボディ。
type noteRequest struct {
	Content string `json:"content"`
}

// noteResponse はノート情報のAPIレスポンス。
type noteResponse struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topicId"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// noteEnvelope はメッセージ付きのノートレスポンス。
type noteEnvelope struct {
	Message string       `json:"message"`
	Note    noteResponse `json:"note"`
}

// multipartMemoryLimit はmultipartパース時にメモリへ保持する最大バイト数。
// 超過分は一時ファイルに書き出される。
const multipartMemoryLimit = 1 << 20

// parseNoteRequest はContent-Typeに応じてノートの内容と画像添付を取り出す。
// multipart/form-dataの場合はcontentフィールドとimageファイルフィールド、
// それ以外はJSONボディとして解析する。
func parseNoteRequest(r *http.Request) (string, *note.ImageUpload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
			return "", nil, model.NewInvalidRequestError()
		}

		content := r.FormValue("content")

		file, header, err := r.FormFile("image")
		if err != nil {
			// 画像フィールドなしは添付なしとして扱う
			return content, nil, nil
		}
		return content, &note.ImageUpload{
			Filename: header.Filename,
			Data:     file,
		}, nil
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", nil, model.NewInvalidRequestError()
	}
	return req.Content, nil, nil
}

// Create は指定トピック配下に新しいノートを作成する。
// POST /notes/{id}（idはトピックID）
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	content, image, err := parseNoteRequest(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), userID, chi.URLParam(r, "id"), content, image)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, noteEnvelope{
		Message: "ノートを作成しました",
		Note:    toNoteResponse(created),
	})
}

// ListByTopic は指定トピック配下の所有ノート一覧を返す。
// GET /notes/{id}（idはトピックID）
func (h *NoteHandler) ListByTopic(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	notes, err := h.service.ListByTopic(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]noteResponse, len(notes))
	for i, n := range notes {
		res[i] = toNoteResponse(n)
	}
	writeJSON(w, http.StatusOK, res)
}

// Update はノートの内容を更新する。画像が添付されている場合は差し替える。
// PUT /notes/{id}（idはノートID）
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	content, image, err := parseNoteRequest(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), content, image)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, noteEnvelope{
		Message: "ノートを更新しました",
		Note:    toNoteResponse(updated),
	})
}

// Delete は指定IDの所有ノートを削除する。
// DELETE /notes/{id}（idはノートID）
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "ノートを削除しました"})
}

// toNoteResponse はドメインモデルをAPIレスポンスに変換する。
func toNoteResponse(n *model.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		TopicID:   n.TopicID,
		Content:   n.Content,
		Image:     n.Image,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
