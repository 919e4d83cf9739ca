// Package goals implements the savings-goal store: goals, their categories and
// the progress snapshots written as goals move toward their target.
package goals

import (
	"time"

	"fintrack/internal/notify"
	"fintrack/internal/peer"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	store      Store
	insight    *peer.Client
	finance    *peer.Client
	dispatcher *notify.Dispatcher
	now        func() time.Time
}

// Deps carries the collaborators of the goal handlers. Insight and Finance may
// be nil; the features that need them then degrade.
type Deps struct {
	Store      Store
	Insight    *peer.Client
	Finance    *peer.Client
	Dispatcher *notify.Dispatcher
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		store:      d.Store,
		insight:    d.Insight,
		finance:    d.Finance,
		dispatcher: d.Dispatcher,
		now:        time.Now,
	}
}

// RegisterRoutes mounts every goal endpoint under /goals.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/goals")

	g.GET("/health", web.Health("Goal Service is running"))

	g.POST("/categories", h.createCategory)
	g.GET("/categories", h.getCategories)
	g.GET("/categories/:id", h.getCategory)
	g.PUT("/categories/:id", h.updateCategory)
	g.DELETE("/categories/:id", h.deleteCategory)

	g.POST("", h.createGoal)
	g.GET("", h.getGoals)
	g.GET("/user/:userId", h.getUserGoals)
	g.GET("/user/:userId/insights", h.getUserInsights)
	g.GET("/:id", h.getGoal)
	g.PUT("/:id", h.updateGoal)
	g.DELETE("/:id", h.deleteGoal)
	g.GET("/:id/contributions", h.getContributions)
	g.GET("/:id/snapshots", h.getSnapshots)
}
