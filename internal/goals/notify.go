package goals

import (
	"context"
	"fmt"
)

// notification is the UserNotification body accepted by insight's
// POST /notifications.
type notification struct {
	UserID           int64  `json:"userId"`
	NotificationType string `json:"notificationType"`
	Title            string `json:"title"`
	Message          string `json:"message"`
	RelatedGoalID    int64  `json:"relatedGoalId"`
	IsUrgent         bool   `json:"isUrgent"`
}

type goalEvent int

const (
	goalCreated goalEvent = iota
	goalUpdated
	goalCompleted
	goalDeleted
)

func newNotification(event goalEvent, g Goal) notification {
	n := notification{UserID: g.UserID, RelatedGoalID: g.ID}

	target := g.TargetAmount.StringFixed(2)
	switch event {
	case goalCreated:
		n.Title = "New Goal Created"
		n.NotificationType = "SYSTEM_UPDATE"
		n.Message = fmt.Sprintf("Goal '%s' has been created with target amount: $%s", g.Title, target)
	case goalUpdated:
		n.Title = "Goal Updated"
		n.NotificationType = "GOAL_MILESTONE"
		n.Message = fmt.Sprintf("Goal '%s' has been updated. Current progress: $%s of $%s",
			g.Title, g.CurrentAmount.StringFixed(2), target)
	case goalCompleted:
		n.Title = "Goal Completed!"
		n.NotificationType = "ACHIEVEMENT_UNLOCK"
		n.IsUrgent = true
		n.Message = fmt.Sprintf("Congratulations! You've completed your goal '%s' with a target of $%s", g.Title, target)
	case goalDeleted:
		n.Title = "Goal Deleted"
		n.NotificationType = "SYSTEM_UPDATE"
		n.Message = fmt.Sprintf("Goal '%s' has been deleted", g.Title)
	}
	return n
}

// notifyInsight queues a notification about g. It never affects the response.
func (h *Handler) notifyInsight(event goalEvent, g Goal) {
	if h.dispatcher == nil || h.insight == nil {
		return
	}
	n := newNotification(event, g)
	h.dispatcher.Go("notify insight: "+n.Title, func(ctx context.Context) error {
		return h.insight.Post(ctx, "/notifications", n, nil)
	})
}
