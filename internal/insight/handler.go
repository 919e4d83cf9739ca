// Package insight stores notifications, recommendations and spending analytics,
// and combines live finance and goal data into per-user overviews.
package insight

import (
	"time"

	"fintrack/internal/config"
	"fintrack/internal/peer"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	defaultRecentDays   = 7
	defaultRecentMonths = 6
)

type Handler struct {
	store    Store
	finance  *peer.Client
	goals    *peer.Client
	services config.ServicesConfig
	now      func() time.Time
}

// Deps carries the collaborators of the insight handlers. Finance and Goals
// may be nil; the integrated routes then answer with the degraded envelope.
type Deps struct {
	Store    Store
	Finance  *peer.Client
	Goals    *peer.Client
	Services config.ServicesConfig
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		store:    d.Store,
		finance:  d.Finance,
		goals:    d.Goals,
		services: d.Services,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RegisterRoutes mounts the notification, recommendation, analytics,
// integrated and diagnostic endpoints.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	// The edge router strips /insights, so both spellings answer.
	r.GET("/insights/health", web.Health("Insight Service is running!"))
	r.GET("/health", web.Health("Insight Service is running!"))

	n := r.Group("/notifications")
	n.GET("/health", web.Health("Insight Service - Notifications Controller is running!"))
	n.GET("/user/:userId", h.getUserNotifications)
	n.GET("/user/:userId/unread", h.getUnreadNotifications)
	n.GET("/user/:userId/urgent", h.getUrgentNotifications)
	n.GET("/user/:userId/summary", h.getNotificationSummary)
	n.GET("/user/:userId/type/:type", h.getNotificationsByType)
	n.GET("/user/:userId/goal/:goalId", h.getGoalNotifications)
	n.GET("/user/:userId/category/:categoryId", h.getCategoryNotifications)
	n.GET("/user/:userId/recent", h.getRecentNotifications)
	n.GET("/user/:userId/unread-count", h.getUnreadNotificationCount)
	n.POST("", h.createNotification)
	n.POST("/goal-deadline", h.createGoalDeadlineNotification)
	n.POST("/budget-exceeded", h.createBudgetExceededNotification)
	n.POST("/spending-alert", h.createSpendingAlertNotification)
	n.POST("/goal-milestone", h.createGoalMilestoneNotification)
	n.PUT("/:id/read", h.markNotificationRead)
	n.PUT("/user/:userId/read-all", h.markAllNotificationsRead)
	n.DELETE("/:id", h.deleteNotification)
	n.GET("/scheduled-to-send", h.getNotificationsToSend)
	n.PUT("/:id/mark-sent", h.markNotificationSent)

	rec := r.Group("/recommendations")
	rec.GET("/health", web.Health("Insight Service - Recommendations Controller is running!"))
	rec.GET("/user/:userId", h.getActiveRecommendations)
	rec.GET("/user/:userId/summary", h.getRecommendationSummary)
	rec.GET("/user/:userId/type/:type", h.getRecommendationsByType)
	rec.GET("/user/:userId/priority/:priority", h.getRecommendationsByPriority)
	rec.GET("/user/:userId/category/:categoryId", h.getCategoryRecommendations)
	rec.GET("/user/:userId/goal/:goalId", h.getGoalRecommendations)
	rec.GET("/user/:userId/unread-count", h.getUnreadRecommendationCount)
	rec.POST("", h.createRecommendation)
	rec.POST("/budget-optimization", h.createBudgetOptimization)
	rec.POST("/goal-adjustment", h.createGoalAdjustment)
	rec.POST("/spending-alert", h.createSpendingAlertRecommendation)
	rec.PUT("/:id/read", h.markRecommendationRead)
	rec.PUT("/:id/dismiss", h.dismissRecommendation)
	rec.PUT("/:id/action-taken", h.markRecommendationActionTaken)
	rec.DELETE("/:id", h.deleteRecommendation)
	rec.POST("/cleanup-expired", h.cleanupExpiredRecommendations)

	a := r.Group("/analytics")
	a.GET("/health", web.Health("Insight Service - Analytics Controller is running!"))
	a.GET("/user/:userId", h.getUserAnalytics)
	a.GET("/user/:userId/summary", h.getAnalyticsSummary)
	a.GET("/user/:userId/trends", h.getSpendingTrends)
	a.GET("/user/:userId/category/:categoryId", h.getCategoryAnalytics)
	a.GET("/user/:userId/top-categories", h.getTopCategories)
	a.GET("/user/:userId/recent", h.getRecentAnalytics)
	a.GET("/user/:userId/increasing-trends", h.getIncreasingTrends)
	a.GET("/user/:userId/date-range", h.getAnalyticsByDateRange)
	a.POST("", h.createAnalytics)
	a.PUT("/:id", h.updateAnalytics)
	a.DELETE("/:id", h.deleteAnalytics)

	i := r.Group("/integrated")
	i.GET("/health", web.Health("Integrated Insight Controller is running!"))
	i.GET("/user/:userId/complete-overview", h.getCompleteOverview)
	i.GET("/user/:userId/goal-progress-analysis", h.getGoalProgressAnalysis)
	i.GET("/user/:userId/spending-vs-goals", h.getSpendingVsGoals)
	i.GET("/user/:userId/recommendations", h.getPersonalizedRecommendations)

	t := r.Group("/test")
	t.GET("/health", web.Health("Test Communication Controller is running!"))
	t.GET("/communication-status", h.getCommunicationStatus)
	t.GET("/user/:userId/test-integration", h.testUserIntegration)
	t.GET("/service-urls", h.getServiceURLs)
	t.POST("/simulate-transaction-event", h.simulateTransactionEvent)
	t.POST("/simulate-goal-event", h.simulateGoalEvent)
}
