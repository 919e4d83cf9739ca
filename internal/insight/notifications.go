package insight

import (
	"fmt"
	"net/http"
	"strings"

	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
)

// typedNotificationRequest is the body of the four shortcut create routes.
type typedNotificationRequest struct {
	UserID     *int64 `json:"userId"`
	GoalID     *int64 `json:"goalId"`
	CategoryID *int64 `json:"categoryId"`
	Title      string `json:"title"`
	Message    string `json:"message"`
}

func (h *Handler) listNotifications(c *gin.Context, filter NotificationFilter) ([]Notification, bool) {
	list, err := h.store.ListNotifications(c.Request.Context(), filter)
	if err != nil {
		web.AbortWithStoreError(c, "fetching notifications", err, "")
		return nil, false
	}
	return list, true
}

// @Summary Get user notifications
// @Description All of a user's notifications, urgent first, then newest first
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Notifications"
// @Router /notifications/user/{userId} [get]
func (h *Handler) getUserNotifications(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	list, ok := h.listNotifications(c, NotificationFilter{UserID: userID})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": list, "count": len(list)})
}

// @Summary Get unread notifications
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Unread notifications"
// @Router /notifications/user/{userId}/unread [get]
func (h *Handler) getUnreadNotifications(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	list, ok := h.listNotifications(c, NotificationFilter{UserID: userID, UnreadOnly: true})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": list, "count": len(list)})
}

// @Summary Get urgent notifications
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Urgent notifications"
// @Router /notifications/user/{userId}/urgent [get]
func (h *Handler) getUrgentNotifications(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	list, ok := h.listNotifications(c, NotificationFilter{UserID: userID, UrgentOnly: true})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "urgentNotifications": list, "count": len(list)})
}

// @Summary Get notification summary
// @Description Totals plus the last week's notifications and the unread ones
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Summary"
// @Router /notifications/user/{userId}/summary [get]
func (h *Handler) getNotificationSummary(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}

	all, ok := h.listNotifications(c, NotificationFilter{UserID: userID})
	if !ok {
		return
	}
	since := h.now().AddDate(0, 0, -defaultRecentDays)
	recent, ok := h.listNotifications(c, NotificationFilter{UserID: userID, Since: &since, Order: NewestFirst})
	if !ok {
		return
	}

	unread := []Notification{}
	urgent := 0
	for _, n := range all {
		if !n.IsRead {
			unread = append(unread, n)
		}
		if n.IsUrgent {
			urgent++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"totalNotifications":  len(all),
		"unreadCount":         len(unread),
		"urgentCount":         urgent,
		"recentNotifications": recent,
		"unreadNotifications": unread,
	})
}

// @Summary Get notifications by type
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Param type path string true "Notification type, any case"
// @Success 200 {object} map[string]interface{} "Notifications"
// @Failure 400 {object} map[string]interface{} "Invalid notification type"
// @Router /notifications/user/{userId}/type/{type} [get]
func (h *Handler) getNotificationsByType(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	kind, ok := ParseNotificationType(c.Param("type"))
	if !ok {
		web.Fail(c, http.StatusBadRequest, invalidEnum("notification type", c.Param("type")))
		return
	}
	list, ok := h.listNotifications(c, NotificationFilter{UserID: userID, Type: kind})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": list, "type": kind})
}

// @Summary Get goal notifications
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Param goalId path int true "Goal ID"
// @Success 200 {object} map[string]interface{} "Notifications"
// @Router /notifications/user/{userId}/goal/{goalId} [get]
func (h *Handler) getGoalNotifications(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	goalID, ok := web.ParseID(c, "goalId")
	if !ok {
		return
	}
	list, ok := h.listNotifications(c, NotificationFilter{UserID: userID, GoalID: &goalID})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": list, "goalId": goalID})
}

// @Summary Get category notifications
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Param categoryId path int true "Category ID"
// @Success 200 {object} map[string]interface{} "Notifications"
// @Router /notifications/user/{userId}/category/{categoryId} [get]
func (h *Handler) getCategoryNotifications(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	categoryID, ok := web.ParseID(c, "categoryId")
	if !ok {
		return
	}
	list, ok := h.listNotifications(c, NotificationFilter{UserID: userID, CategoryID: &categoryID})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": list, "categoryId": categoryID})
}

// @Summary Get recent notifications
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Param days query int false "Days back" default(7)
// @Success 200 {object} map[string]interface{} "Notifications"
// @Router /notifications/user/{userId}/recent [get]
func (h *Handler) getRecentNotifications(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	days, ok := web.QueryInt(c, "days", defaultRecentDays)
	if !ok {
		return
	}

	since := h.now().AddDate(0, 0, -days)
	list, ok := h.listNotifications(c, NotificationFilter{UserID: userID, Since: &since, Order: NewestFirst})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": list, "daysBack": days})
}

// @Summary Count unread notifications
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Unread count"
// @Router /notifications/user/{userId}/unread-count [get]
func (h *Handler) getUnreadNotificationCount(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	count, err := h.store.CountUnreadNotifications(c.Request.Context(), userID)
	if err != nil {
		web.AbortWithStoreError(c, "counting notifications", err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "unreadCount": count})
}

// @Summary Create notification
// @Description scheduledFor defaults to now
// @Tags notifications
// @Accept json
// @Produce json
// @Param notification body NotificationRequest true "Notification"
// @Success 201 {object} map[string]interface{} "Notification created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /notifications [post]
func (h *Handler) createNotification(c *gin.Context) {
	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate required fields in the documented order
	switch {
	case req.UserID == nil:
		web.Fail(c, http.StatusBadRequest, "User ID is required")
		return
	case strings.TrimSpace(req.NotificationType) == "":
		web.Fail(c, http.StatusBadRequest, "Notification type is required")
		return
	case strings.TrimSpace(req.Title) == "":
		web.Fail(c, http.StatusBadRequest, "Title is required")
		return
	case strings.TrimSpace(req.Message) == "":
		web.Fail(c, http.StatusBadRequest, "Message is required")
		return
	}
	kind, ok := ParseNotificationType(req.NotificationType)
	if !ok {
		web.Fail(c, http.StatusBadRequest, invalidEnum("notification type", req.NotificationType))
		return
	}

	n := Notification{
		UserID:            *req.UserID,
		NotificationType:  kind,
		Title:             strings.TrimSpace(req.Title),
		Message:           strings.TrimSpace(req.Message),
		RelatedGoalID:     req.RelatedGoalID,
		RelatedCategoryID: req.RelatedCategoryID,
		IsRead:            req.IsRead,
		IsUrgent:          req.IsUrgent,
		ActionURL:         req.ActionURL,
	}
	if req.ScheduledFor != nil {
		n.ScheduledFor = req.ScheduledFor.UTC()
	}
	h.saveNotification(c, n, "Notification created successfully")
}

// saveNotification stamps the schedule and answers 201 with message.
func (h *Handler) saveNotification(c *gin.Context, n Notification, message string) {
	if n.ScheduledFor.IsZero() {
		n.ScheduledFor = h.now()
	}
	if err := h.store.CreateNotification(c.Request.Context(), &n); err != nil {
		web.AbortWithStoreError(c, "creating notification", err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "notification": n})
}

// bindTyped decodes a shortcut body and checks userId, the related id when
// relation is not empty, title and message.
func bindTyped(c *gin.Context, relation string) (typedNotificationRequest, bool) {
	var req typedNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return req, false
	}

	var related *int64
	switch relation {
	case "goal":
		related = req.GoalID
	case "category":
		related = req.CategoryID
	}

	switch {
	case req.UserID == nil:
		web.Fail(c, http.StatusBadRequest, "User ID is required")
	case relation == "goal" && related == nil:
		web.Fail(c, http.StatusBadRequest, "Goal ID is required")
	case relation == "category" && related == nil:
		web.Fail(c, http.StatusBadRequest, "Category ID is required")
	case strings.TrimSpace(req.Title) == "":
		web.Fail(c, http.StatusBadRequest, "Title is required")
	case strings.TrimSpace(req.Message) == "":
		web.Fail(c, http.StatusBadRequest, "Message is required")
	default:
		return req, true
	}
	return req, false
}

// @Summary Create goal deadline notification
// @Description Urgent notification tied to a goal
// @Tags notifications
// @Accept json
// @Produce json
// @Param notification body typedNotificationRequest true "userId, goalId, title, message"
// @Success 201 {object} map[string]interface{} "Goal deadline notification created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /notifications/goal-deadline [post]
func (h *Handler) createGoalDeadlineNotification(c *gin.Context) {
	req, ok := bindTyped(c, "goal")
	if !ok {
		return
	}
	h.saveNotification(c, Notification{
		UserID:           *req.UserID,
		NotificationType: GoalDeadline,
		Title:            strings.TrimSpace(req.Title),
		Message:          strings.TrimSpace(req.Message),
		RelatedGoalID:    req.GoalID,
		IsUrgent:         true,
	}, "Goal deadline notification created successfully")
}

// @Summary Create budget exceeded notification
// @Description Urgent notification tied to a category
// @Tags notifications
// @Accept json
// @Produce json
// @Param notification body typedNotificationRequest true "userId, categoryId, title, message"
// @Success 201 {object} map[string]interface{} "Budget exceeded notification created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /notifications/budget-exceeded [post]
func (h *Handler) createBudgetExceededNotification(c *gin.Context) {
	req, ok := bindTyped(c, "category")
	if !ok {
		return
	}
	h.saveNotification(c, Notification{
		UserID:            *req.UserID,
		NotificationType:  BudgetExceeded,
		Title:             strings.TrimSpace(req.Title),
		Message:           strings.TrimSpace(req.Message),
		RelatedCategoryID: req.CategoryID,
		IsUrgent:          true,
	}, "Budget exceeded notification created successfully")
}

// @Summary Create spending alert notification
// @Tags notifications
// @Accept json
// @Produce json
// @Param notification body typedNotificationRequest true "userId, categoryId, title, message"
// @Success 201 {object} map[string]interface{} "Spending alert notification created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /notifications/spending-alert [post]
func (h *Handler) createSpendingAlertNotification(c *gin.Context) {
	req, ok := bindTyped(c, "category")
	if !ok {
		return
	}
	h.saveNotification(c, Notification{
		UserID:            *req.UserID,
		NotificationType:  SpendingAlert,
		Title:             strings.TrimSpace(req.Title),
		Message:           strings.TrimSpace(req.Message),
		RelatedCategoryID: req.CategoryID,
	}, "Spending alert notification created successfully")
}

// @Summary Create goal milestone notification
// @Tags notifications
// @Accept json
// @Produce json
// @Param notification body typedNotificationRequest true "userId, goalId, title, message"
// @Success 201 {object} map[string]interface{} "Goal milestone notification created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /notifications/goal-milestone [post]
func (h *Handler) createGoalMilestoneNotification(c *gin.Context) {
	req, ok := bindTyped(c, "goal")
	if !ok {
		return
	}
	h.saveNotification(c, Notification{
		UserID:           *req.UserID,
		NotificationType: GoalMilestone,
		Title:            strings.TrimSpace(req.Title),
		Message:          strings.TrimSpace(req.Message),
		RelatedGoalID:    req.GoalID,
	}, "Goal milestone notification created successfully")
}

// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} map[string]interface{} "Notification marked as read"
// @Failure 404 {object} map[string]interface{} "Notification not found"
// @Router /notifications/{id}/read [put]
func (h *Handler) markNotificationRead(c *gin.Context) {
	h.mutateNotification(c, "Notification marked as read", func(n *Notification) {
		n.IsRead = true
	})
}

// @Summary Mark notification sent
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} map[string]interface{} "Notification marked as sent"
// @Failure 404 {object} map[string]interface{} "Notification not found"
// @Router /notifications/{id}/mark-sent [put]
func (h *Handler) markNotificationSent(c *gin.Context) {
	now := h.now()
	h.mutateNotification(c, "Notification marked as sent", func(n *Notification) {
		n.SentAt = &now
	})
}

func (h *Handler) mutateNotification(c *gin.Context, message string, apply func(*Notification)) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	n, err := h.store.GetNotification(ctx, id)
	if err != nil {
		web.AbortWithStoreError(c, "fetching notification", err, "Notification not found")
		return
	}
	apply(&n)
	if err := h.store.UpdateNotification(ctx, &n); err != nil {
		web.AbortWithStoreError(c, "updating notification", err, "Notification not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "notification": n})
}

// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "All notifications marked as read"
// @Router /notifications/user/{userId}/read-all [put]
func (h *Handler) markAllNotificationsRead(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	unread, ok := h.listNotifications(c, NotificationFilter{UserID: userID, UnreadOnly: true})
	if !ok {
		return
	}

	ctx := c.Request.Context()
	for i := range unread {
		unread[i].IsRead = true
		if err := h.store.UpdateNotification(ctx, &unread[i]); err != nil {
			web.AbortWithStoreError(c, "marking notifications read", err, "Notification not found")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "All notifications marked as read",
		"markedCount": len(unread),
	})
}

// @Summary Delete notification
// @Tags notifications
// @Produce json
// @Param id path int true "Notification ID"
// @Success 200 {object} map[string]interface{} "Notification deleted successfully"
// @Failure 404 {object} map[string]interface{} "Notification not found"
// @Router /notifications/{id} [delete]
func (h *Handler) deleteNotification(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteNotification(c.Request.Context(), id); err != nil {
		web.AbortWithStoreError(c, "deleting notification", err, "Notification not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification deleted successfully"})
}

// @Summary Get notifications due for delivery
// @Description Unsent notifications scheduled at or before now, across all users
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{} "Notifications"
// @Router /notifications/scheduled-to-send [get]
func (h *Handler) getNotificationsToSend(c *gin.Context) {
	list, err := h.store.ListNotificationsDue(c.Request.Context(), h.now())
	if err != nil {
		web.AbortWithStoreError(c, "fetching scheduled notifications", err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": list, "count": len(list)})
}

func invalidEnum(kind, value string) string {
	return fmt.Sprintf("Invalid %s: %s", kind, value)
}
