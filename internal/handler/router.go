package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/noteman/internal/metrics"
	"github.com/hitoshi/noteman/internal/middleware"
)

// DBPinger はヘルスチェックに必要なデータベース疎通確認のインターフェース。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	Logger            *slog.Logger
	MetricsRecorder   middleware.HTTPMetricsRecorder

	// サービス
	AuthService    AuthServiceInterface
	SubjectService SubjectServiceInterface
	TopicService   TopicServiceInterface
	SocialService  SocialServiceInterface
	NoteService    NoteServiceInterface

	// 運用エンドポイント
	DB        DBPinger
	Gatherer  prometheus.Gatherer
	UploadDir string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging →（認証ルートのみ）BearerAuth
//
// 認証不要ルート: POST /users, POST /auth, GET /health, GET /metrics, GET /uploads/*
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	authHandler := NewAuthHandler(deps.AuthService)
	subjectHandler := NewSubjectHandler(deps.SubjectService)
	topicHandler := NewTopicHandler(deps.TopicService)
	socialHandler := NewSocialHandler(deps.SocialService)
	noteHandler := NewNoteHandler(deps.NoteService)

	// --- 認証不要のルート ---

	r.Post("/users", authHandler.Register)
	r.Post("/auth", authHandler.Login)

	// ヘルスチェック: DBに疎通できれば200、できなければ503
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
		defer cancel()

		if err := deps.DB.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheusスクレイプエンドポイント
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// アップロード画像の静的配信
	if deps.UploadDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadDir)))
		r.Get("/uploads/*", fileServer.ServeHTTP)
	}

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBearerAuthMiddleware(deps.TokenVerifier))

		r.Get("/me", authHandler.Me)

		// 科目管理
		r.Route("/subjects", func(r chi.Router) {
			r.Get("/", subjectHandler.List)
			r.Post("/", subjectHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", subjectHandler.Get)
				r.Put("/", subjectHandler.Update)
				r.Delete("/", subjectHandler.Delete)
			})
		})

		// トピック管理・公開ビュー
		// 固定パス（public, liked, saved）をパラメータルートより先に定義する
		r.Route("/topics", func(r chi.Router) {
			r.Get("/public", socialHandler.ListPublic)
			r.Get("/public/{id}", socialHandler.GetPublic)
			r.Get("/liked", socialHandler.ListLiked)
			r.Get("/saved", socialHandler.ListSaved)

			r.Route("/{id}", func(r chi.Router) {
				// GET/POSTの{id}は科目ID、PUT/DELETEの{id}はトピックID
				r.Get("/", topicHandler.ListBySubject)
				r.Post("/", topicHandler.Create)
				r.Put("/", topicHandler.Update)
				r.Delete("/", topicHandler.Delete)

				r.Put("/publish", topicHandler.SetPublished)
				r.Put("/like", socialHandler.ToggleLike)
				r.Put("/save", socialHandler.ToggleSave)
			})
		})

		// ノート管理
		r.Route("/notes/{id}", func(r chi.Router) {
			// GET/POSTの{id}はトピックID、PUT/DELETEの{id}はノートID
			r.Get("/", noteHandler.ListByTopic)
			r.Post("/", noteHandler.Create)
			r.Put("/", noteHandler.Update)
			r.Delete("/", noteHandler.Delete)
		})
	})

	return r
}
