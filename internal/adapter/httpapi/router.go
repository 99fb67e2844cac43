package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"groq-chat-backend/internal/usecase/chat"
)

type Options struct {
	FrontendDir    string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(chatSvc *chat.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(RequestID)
	r.Use(AccessLog(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	h := NewChatHandler(chatSvc, logger)
	r.Route("/chat", func(r chi.Router) {
		r.Post("/", h.Chat)
		r.Get("/*", h.Get)
		r.Post("/*", h.End)
	})

	static := NewStaticHandler(opts.FrontendDir)
	r.Get("/", static.Home)
	r.Handle("/frontend/*", http.StripPrefix("/frontend", static.Assets()))

	return r
}
