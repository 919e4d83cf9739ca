// Package finance implements the transaction store: transactions, their
// categories, receipt files and the per-user summary.
package finance

import (
	"fintrack/internal/events"
	"fintrack/internal/notify"
	"fintrack/internal/objectstore"
	"fintrack/internal/peer"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store      Store
	files      objectstore.Store
	insight    *peer.Client
	publisher  events.Publisher
	dispatcher *notify.Dispatcher
	metrics    *Metrics
}

// Deps carries the collaborators of the finance handlers. Only Store is
// required; missing side channels are skipped.
type Deps struct {
	Store      Store
	Files      objectstore.Store
	Insight    *peer.Client
	Publisher  events.Publisher
	Dispatcher *notify.Dispatcher
	Metrics    *Metrics
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		store:      d.Store,
		files:      d.Files,
		insight:    d.Insight,
		publisher:  d.Publisher,
		dispatcher: d.Dispatcher,
		metrics:    d.Metrics,
	}
	if h.files == nil {
		h.files = objectstore.NewMemoryStore()
	}
	if h.metrics == nil {
		h.metrics = NewMetrics()
	}
	return h
}

// RegisterRoutes mounts every finance endpoint under /finance.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/finance")

	g.GET("/health", web.Health("User Finance Service is running!"))

	g.POST("/transactions", h.createTransaction)
	g.GET("/transactions", h.getTransactions)
	g.GET("/transactions/user/:userId", h.getUserTransactions)
	g.GET("/transactions/user/:userId/summary", h.getUserSummary)
	g.POST("/transactions/user/:userId/import", h.importStatement)
	g.GET("/transactions/:id", h.getTransaction)
	g.PUT("/transactions/:id", h.updateTransaction)
	g.DELETE("/transactions/:id", h.deleteTransaction)

	g.POST("/categories", h.createCategory)
	g.POST("/categories/initialize-defaults", h.initializeDefaultCategories)
	g.GET("/categories", h.getCategories)
	g.GET("/categories/:id", h.getCategory)
	g.PUT("/categories/:id", h.updateCategory)
	g.DELETE("/categories/:id", h.deleteCategory)

	g.POST("/files/:bucket", h.uploadFile)
	g.GET("/files/:bucket/:filename", h.downloadFile)
	g.DELETE("/files/:bucket/:filename", h.deleteFile)

	g.GET("/metrics", gin.WrapH(h.metrics.Handler()))
}
