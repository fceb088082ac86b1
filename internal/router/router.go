package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/servicepulse/datalayer/api/handler"
	"github.com/servicepulse/datalayer/internal/middleware"
)

type Handlers struct {
	Entity *apiHandler.EntityHandler
	Search *apiHandler.SearchHandler
	Ops    *apiHandler.OpsHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Ops.Health)

	// Search is readable without auth; client-supplied actor headers are
	// stripped so anonymous analytics stay anonymous
	r.GET("/api/v1/search/tickets", middleware.ClearActor(handlers.Search.Tickets))
	r.GET("/api/v1/search/knowledge-base", middleware.ClearActor(handlers.Search.KnowledgeBase))

	// Protected routes
	r.POST("/api/v1/users", authMiddleware(handlers.Entity.CreateUser))
	r.PUT("/api/v1/users/{id}", authMiddleware(handlers.Entity.UpdateUser))

	r.POST("/api/v1/tickets", authMiddleware(handlers.Entity.CreateTicket))
	r.PUT("/api/v1/tickets/{id}", authMiddleware(handlers.Entity.UpdateTicket))

	r.POST("/api/v1/kb/articles", authMiddleware(handlers.Entity.CreateArticle))
	r.PUT("/api/v1/kb/articles/{id}", authMiddleware(handlers.Entity.UpdateArticle))

	r.GET("/api/v1/export", authMiddleware(handlers.Ops.Export))
	r.POST("/api/v1/events", authMiddleware(handlers.Ops.LogEvent))

	return r
}
