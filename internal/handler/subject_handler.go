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

// SubjectServiceInterface は科目ハンドラーが必要とするサービスインターフェース。
type SubjectServiceInterface interface {
	// Create は新しい科目を作成する。
	Create(ctx context.Context, userID, name, content string) (*model.Subject, error)
	// List は所有者の科目一覧を返す。
	List(ctx context.Context, userID string) ([]*model.Subject, error)
	// Get は指定IDの所有科目を返す。
	Get(ctx context.Context, userID, subjectID string) (*model.Subject, error)
	// Update は科目の名前と内容を更新する。
	Update(ctx context.Context, userID, subjectID, name, content string) (*model.Subject, error)
	// Delete は科目と配下の全データを削除する。
	Delete(ctx context.Context, userID, subjectID string) error
}

// SubjectHandler は科目管理のHTTPハンドラー。
type SubjectHandler struct {
	service SubjectServiceInterface
}

// NewSubjectHandler はSubjectHandlerを生成する。
func NewSubjectHandler(service SubjectServiceInterface) *SubjectHandler {
	return &SubjectHandler{
		service: service,
	}
}

// subjectRequest は科目作成・更新リクエストのボディ。
type subjectRequest struct {
	SubjectName    string `json:"subjectName"`
	SubjectContent string `json:"subjectContent"`
}

// subjectResponse は科目情報のAPIレスポンス。
type subjectResponse struct {
	ID             string    `json:"id"`
	SubjectName    string    `json:"subjectName"`
	SubjectContent string    `json:"subjectContent"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// subjectEnvelope はメッセージ付きの科目レスポンス。
type subjectEnvelope struct {
	Message string          `json:"message"`
	Subject subjectResponse `json:"subject"`
}

// Create は新しい科目を作成する。
// POST /subjects
func (h *SubjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req subjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	subject, err := h.service.Create(r.Context(), userID, req.SubjectName, req.SubjectContent)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, subjectEnvelope{
		Message: "科目を作成しました",
		Subject: toSubjectResponse(subject),
	})
}

// List は所有する科目一覧を返す。
// GET /subjects
func (h *SubjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	subjects, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	res := make([]subjectResponse, len(subjects))
	for i, s := range subjects {
		res[i] = toSubjectResponse(s)
	}
	writeJSON(w, http.StatusOK, res)
}

// Get は指定IDの所有科目を返す。
// GET /subjects/{id}
func (h *SubjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	subject, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSubjectResponse(subject))
}

// Update は科目の名前と内容を更新する。
// PUT /subjects/{id}
func (h *SubjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req subjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	subject, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req.SubjectName, req.SubjectContent)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subjectEnvelope{
		Message: "科目を更新しました",
		Subject: toSubjectResponse(subject),
	})
}

// Delete は科目と配下の全データを削除する。
// DELETE /subjects/{id}
func (h *SubjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "科目を削除しました"})
}

// toSubjectResponse はドメインモデルをAPIレスポンスに変換する。
func toSubjectResponse(s *model.Subject) subjectResponse {
	return subjectResponse{
		ID:             s.ID,
		SubjectName:    s.Name,
		SubjectContent: s.Content,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}
