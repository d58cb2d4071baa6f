package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/noteman/internal/middleware"
	"github.com/hitoshi/noteman/internal/model"
)

// TopicServiceInterface はトピックハンドラーが必要とするサービスインターフェース。
type TopicServiceInterface interface {
	// Create は指定科目配下にトピックを作成する。
	Create(ctx context.Context, userID, subjectID, title string) (*model.Topic, error)
	// ListBySubject は指定科目配下の所有トピック一覧を返す。
	ListBySubject(ctx context.Context, userID, subjectID string) ([]*model.Topic, error)
	// Update はトピックのタイトルを更新する。
	Update(ctx context.Context, userID, topicID, title string) (*model.Topic, error)
	// SetPublished は公開状態を設定する。
	SetPublished(ctx context.Context, userID, topicID string, published bool) (*model.Topic, error)
	// Delete はトピックと配下のノートを削除する。
	Delete(ctx context.Context, userID, topicID string) error
}

// TopicHandler はトピック管理のHTTPハンドラー。
type TopicHandler struct {
	service TopicServiceInterface
}

// NewTopicHandler はTopicHandlerを生成する。
func NewTopicHandler(service TopicServiceInterface) *TopicHandler {
	return &TopicHandler{
		service: service,
	}
}

// topicRequest はトピック作成・更新リクエストのボディ。
type topicRequest struct {
	Title string `json:"title"`
}

// publishRequest は公開状態設定リクエストのボディ。
type publishRequest struct {
	Published bool `json:"published"`
}

// topicResponse は所有トピックのAPIレスポンス。
type topicResponse struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subjectId"`
	Title     string    `json:"title"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// topicEnvelope はメッセージ付きのトピックレスポンス。
type topicEnvelope struct {
	Message string        `json:"message"`
	Topic   topicResponse `json:"topic"`
}

// Create は指定科目配下に新しいトピックを作成する。
// POST /topics/{id}（idは科目ID）
func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	topic, err := h.service.Create(r.Context(), userID, chi.URLParam(r, "id"), req.Title)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, topicEnvelope{
		Message: "トピックを作成しました",
		Topic:   toTopicResponse(topic),
	})
}

// ListBySubject は指定科目配下の所有トピック一覧を返す。
// GET /topics/{id}（idは科目ID）
func (h *TopicHandler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	topics, err := h.service.ListBySubject(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]topicResponse, len(topics))
	for i, t := range topics {
		res[i] = toTopicResponse(t)
	}
	writeJSON(w, http.StatusOK, res)
}

// Update はトピックのタイトルを更新する。
// PUT /topics/{id}（idはトピックID）
func (h *TopicHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req topicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	topic, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req.Title)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, topicEnvelope{
		Message: "トピックを更新しました",
		Topic:   toTopicResponse(topic),
	})
}

// SetPublished はトピックの公開状態を設定する。同じ状態への設定は冪等に成功する。
// PUT /topics/{id}/publish
func (h *TopicHandler) SetPublished(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	topic, err := h.service.SetPublished(r.Context(), userID, chi.URLParam(r, "id"), req.Published)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	message := "トピックを非公開にしました"
	if topic.Published {
		message = "トピックを公開しました"
	}

	writeJSON(w, http.StatusOK, topicEnvelope{
		Message: message,
		Topic:   toTopicResponse(topic),
	})
}

// Delete はトピックと配下のノートを削除する。
// DELETE /topics/{id}（idはトピックID）
func (h *TopicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "トピックを削除しました"})
}

// toTopicResponse はドメインモデルをAPIレスポンスに変換する。
func toTopicResponse(t *model.Topic) topicResponse {
	return topicResponse{
		ID:        t.ID,
		SubjectID: t.SubjectID,
		Title:     t.Title,
		Published: t.Published,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}
