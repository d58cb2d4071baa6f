package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/noteman/internal/middleware"
	"github.com/hitoshi/noteman/internal/model"
	"github.com/hitoshi/noteman/internal/social"
)

// SocialServiceInterface は公開トピックハンドラーが必要とするサービスインターフェース。
type SocialServiceInterface interface {
	// ListPublic は公開トピック一覧を注釈付きで返す。
	ListPublic(ctx context.Context, viewerID string) ([]model.AnnotatedTopic, error)
	// GetPublic は公開トピックの詳細を全ノート付きで返す。
	GetPublic(ctx context.Context, viewerID, topicID string) (*social.PublicTopicDetail, error)
	// ToggleLike はいいねを反転する。
	ToggleLike(ctx context.Context, userID, topicID string) (*social.ToggleResult, error)
	// ToggleSave は保存を反転する。
	ToggleSave(ctx context.Context, userID, topicID string) (*social.ToggleResult, error)
	// ListLiked はいいねしたトピック一覧を返す。
	ListLiked(ctx context.Context, userID string) ([]model.AnnotatedTopic, error)
	// ListSaved は保存したトピック一覧を返す。
	ListSaved(ctx context.Context, userID string) ([]model.AnnotatedTopic, error)
}

// SocialHandler は公開トピックの閲覧といいね・保存のHTTPハンドラー。
type SocialHandler struct {
	service SocialServiceInterface
}

// NewSocialHandler はSocialHandlerを生成する。
func NewSocialHandler(service SocialServiceInterface) *SocialHandler {
	return &SocialHandler{
		service: service,
	}
}

// authorResponse はトピック作成者の表示情報。
type authorResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// annotatedTopicResponse は注釈付きトピックのAPIレスポンス。
type annotatedTopicResponse struct {
	ID         string         `json:"id"`
	SubjectID  string         `json:"subjectId"`
	Title      string         `json:"title"`
	Published  bool           `json:"published"`
	Author     authorResponse `json:"author"`
	LikesCount int            `json:"likesCount"`
	SavesCount int            `json:"savesCount"`
	Liked      bool           `json:"liked"`
	Saved      bool           `json:"saved"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// publicTopicDetailResponse は公開トピック詳細のAPIレスポンス。
type publicTopicDetailResponse struct {
	Topic annotatedTopicResponse `json:"topic"`
	Notes []noteResponse         `json:"notes"`
}

// likeToggleResponse はいいねトグルのAPIレスポンス。
type likeToggleResponse struct {
	LikesCount int  `json:"likesCount"`
	Liked      bool `json:"liked"`
}

// saveToggleResponse は保存トグルのAPIレスポンス。
type saveToggleResponse struct {
	SavesCount int  `json:"savesCount"`
	Saved      bool `json:"saved"`
}

// ListPublic は公開トピック一覧を返す。
// GET /topics/public
func (h *SocialHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	topics, err := h.service.ListPublic(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnnotatedTopicResponses(topics))
}

// GetPublic は公開トピックの詳細を配下の全ノート付きで返す。
// GET /topics/public/{id}
func (h *SocialHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	detail, err := h.service.GetPublic(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	notes := make([]noteResponse, len(detail.Notes))
	for i, n := range detail.Notes {
		notes[i] = toNoteResponse(n)
	}

	writeJSON(w, http.StatusOK, publicTopicDetailResponse{
		Topic: toAnnotatedTopicResponse(detail.Topic),
		Notes: notes,
	})
}

// ToggleLike は公開トピックへのいいねを反転する。
// PUT /topics/{id}/like
func (h *SocialHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	result, err := h.service.ToggleLike(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likeToggleResponse{
		LikesCount: result.Count,
		Liked:      result.Active,
	})
}

// ToggleSave は公開トピックの保存を反転する。
// PUT /topics/{id}/save
func (h *SocialHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	result, err := h.service.ToggleSave(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saveToggleResponse{
		SavesCount: result.Count,
		Saved:      result.Active,
	})
}

// ListLiked はいいねしたトピック一覧を返す。
// GET /topics/liked
func (h *SocialHandler) ListLiked(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	topics, err := h.service.ListLiked(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnnotatedTopicResponses(topics))
}

// ListSaved は保存したトピック一覧を返す。
// GET /topics/saved
func (h *SocialHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	topics, err := h.service.ListSaved(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnnotatedTopicResponses(topics))
}

// toAnnotatedTopicResponse はドメインモデルをAPIレスポンスに変換する。
func toAnnotatedTopicResponse(t model.AnnotatedTopic) annotatedTopicResponse {
	return annotatedTopicResponse{
		ID:        t.ID,
		SubjectID: t.SubjectID,
		Title:     t.Title,
		Published: t.Published,
		Author: authorResponse{
			ID:        t.Author.ID,
			FirstName: t.Author.FirstName,
			LastName:  t.Author.LastName,
		},
		LikesCount: t.LikesCount,
		SavesCount: t.SavesCount,
		Liked:      t.Liked,
		Saved:      t.Saved,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func toAnnotatedTopicResponses(topics []model.AnnotatedTopic) []annotatedTopicResponse {
	res := make([]annotatedTopicResponse, len(topics))
	for i, t := range topics {
		res[i] = toAnnotatedTopicResponse(t)
	}
	return res
}
