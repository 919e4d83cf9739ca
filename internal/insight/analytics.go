package insight

import (
	"net/http"

	"fintrack/internal/dates"
	"fintrack/internal/money"
	"fintrack/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// periodQuery reads ?period, defaulting to MONTHLY.
func periodQuery(c *gin.Context) (Period, bool) {
	raw := c.DefaultQuery("period", string(Monthly))
	period, ok := ParsePeriod(raw)
	if !ok {
		web.Fail(c, http.StatusBadRequest, invalidEnum("analysis period", raw))
		return "", false
	}
	return period, true
}

func (h *Handler) listAnalytics(c *gin.Context, filter AnalyticsFilter) ([]Analytics, bool) {
	list, err := h.store.ListAnalytics(c.Request.Context(), filter)
	if err != nil {
		web.AbortWithStoreError(c, "fetching analytics", err, "")
		return nil, false
	}
	return list, true
}

// recentFrom is the first periodStart included in a window of months ending today.
func (h *Handler) recentFrom(months int) *dates.Date {
	from := dates.Of(h.now()).AddMonths(-months)
	return &from
}

// @Summary Get user analytics
// @Tags analytics
// @Produce json
// @Param userId path int true "User ID"
// @Param period query string false "Analysis period" default(MONTHLY)
// @Success 200 {object} map[string]interface{} "Analytics"
// @Router /analytics/user/{userId} [get]
func (h *Handler) getUserAnalytics(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	period, ok := periodQuery(c)
	if !ok {
		return
	}
	list, ok := h.listAnalytics(c, AnalyticsFilter{UserID: userID, Period: period})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analytics": list, "count": len(list)})
}

// spendingSummary is shared by the summary route and the complete overview.
func (h *Handler) spendingSummary(c *gin.Context, userID int64, period Period) (SpendingSummary, bool) {
	list, ok := h.listAnalytics(c, AnalyticsFilter{UserID: userID, Period: period, Order: ByID})
	if !ok {
		return SpendingSummary{}, false
	}
	return summarize(list, period), true
}

// @Summary Get spending summary
// @Description Total, average per category and the top category for one period
// @Tags analytics
// @Produce json
// @Param userId path int true "User ID"
// @Param period query string false "Analysis period" default(MONTHLY)
// @Success 200 {object} map[string]interface{} "Summary"
// @Router /analytics/user/{userId}/summary [get]
func (h *Handler) getAnalyticsSummary(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	period, ok := periodQuery(c)
	if !ok {
		return
	}
	s, ok := h.spendingSummary(c, userID, period)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"totalSpending":      s.TotalSpending,
		"categoryCount":      s.CategoryCount,
		"averagePerCategory": s.AveragePerCategory,
		"topCategory":        s.TopCategory,
		"period":             s.Period,
		"analytics":          s.Analytics,
	})
}

// @Summary Get spending trends
// @Description Increasing trends plus an overall direction over the last six months
// @Tags analytics
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Trends"
// @Router /analytics/user/{userId}/trends [get]
func (h *Handler) getSpendingTrends(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	increasing, ok := h.listAnalytics(c, AnalyticsFilter{UserID: userID, TrendUp: true, Order: ByTrendPercentageDesc})
	if !ok {
		return
	}
	recent, ok := h.listAnalytics(c, AnalyticsFilter{
		UserID: userID, From: h.recentFrom(defaultRecentMonths), Order: ByPeriodStartDesc,
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"increasingTrends": increasing,
		"recentAnalytics":  recent,
		"trendCount":       len(increasing),
		"overallTrend":     overallTrend(recent),
	})
}

// @Summary Get category analytics
// @Tags analytics
// @Produce json
// @Param userId path int true "User ID"
// @Param categoryId path int true "Category ID"
// @Success 200 {object} map[string]interface{} "Analytics"
// @Router /analytics/user/{userId}/category/{categoryId} [get]
func (h *Handler) getCategoryAnalytics(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	categoryID, ok := web.ParseID(c, "categoryId")
	if !ok {
		return
	}
	list, ok := h.listAnalytics(c, AnalyticsFilter{UserID: userID, CategoryID: &categoryID, Order: ByPeriodStartDesc})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analytics": list, "categoryId": categoryID})
}

// @Summary Get top spending categories
// @Tags analytics
// @Produce json
// @Param userId path int true "User ID"
// @Param period query string false "Analysis period" default(MONTHLY)
// @Success 200 {object} map[string]interface{} "Top categories"
// @Router /analytics/user/{userId}/top-categories [get]
func (h *Handler) getTopCategories(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	period, ok := periodQuery(c)
	if !ok {
		return
	}
	list, ok := h.listAnalytics(c, AnalyticsFilter{UserID: userID, Period: period, Order: ByTotalDesc})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "topCategories": list, "period": period})
}

// @Summary Get recent analytics
// @Tags analytics
// @Produce json
// @Param userId path int true "User ID"
// @Param months query int false "Months back" default(6)
// @Success 200 {object} map[string]interface{} "Analytics"
// @Router /analytics/user/{userId}/recent [get]
func (h *Handler) getRecentAnalytics(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	months, ok := web.QueryInt(c, "months", defaultRecentMonths)
	if !ok {
		return
	}
	list, ok := h.listAnalytics(c, AnalyticsFilter{UserID: userID, From: h.recentFrom(months), Order: ByPeriodStartDesc})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analytics": list, "monthsBack": months})
}

// @Summary Get increasing spending trends
// @Tags analytics
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} map[string]interface{} "Increasing trends"
// @Router /analytics/user/{userId}/increasing-trends [get]
func (h *Handler) getIncreasingTrends(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	list, ok := h.listAnalytics(c, AnalyticsFilter{UserID: userID, TrendUp: true, Order: ByTrendPercentageDesc})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "increasingTrends": list, "count": len(list)})
}

// @Summary Get analytics in a date range
// @Description periodStart within [startDate, endDate]
// @Tags analytics
// @Produce json
// @Param userId path int true "User ID"
// @Param period query string false "Analysis period" default(MONTHLY)
// @Param startDate query string true "YYYY-MM-DD"
// @Param endDate query string true "YYYY-MM-DD"
// @Success 200 {object} map[string]interface{} "Analytics"
// @Failure 400 {object} map[string]interface{} "Invalid date"
// @Router /analytics/user/{userId}/date-range [get]
func (h *Handler) getAnalyticsByDateRange(c *gin.Context) {
	userID, ok := web.ParseID(c, "userId")
	if !ok {
		return
	}
	period, ok := periodQuery(c)
	if !ok {
		return
	}
	start, err := dates.Parse(c.Query("startDate"))
	if err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD")
		return
	}
	end, err := dates.Parse(c.Query("endDate"))
	if err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid endDate, expected YYYY-MM-DD")
		return
	}

	list, ok := h.listAnalytics(c, AnalyticsFilter{
		UserID: userID, Period: period, From: &start, To: &end, Order: ByPeriodStartDesc,
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"analytics": list,
		"dateRange": gin.H{"start": start, "end": end},
	})
}

// analyticsFromRequest validates req and builds the row it describes. On
// failure it writes a 400 and returns false.
func analyticsFromRequest(c *gin.Context, req AnalyticsRequest) (Analytics, bool) {
	// Validate required fields in the documented order
	switch {
	case req.UserID == nil:
		web.Fail(c, http.StatusBadRequest, "User ID is required")
		return Analytics{}, false
	case req.CategoryID == nil:
		web.Fail(c, http.StatusBadRequest, "Category ID is required")
		return Analytics{}, false
	case req.AnalysisPeriod == "":
		web.Fail(c, http.StatusBadRequest, "Analysis period is required")
		return Analytics{}, false
	case req.PeriodStart == nil || req.PeriodStart.IsZero():
		web.Fail(c, http.StatusBadRequest, "Period start is required")
		return Analytics{}, false
	case req.PeriodEnd == nil || req.PeriodEnd.IsZero():
		web.Fail(c, http.StatusBadRequest, "Period end is required")
		return Analytics{}, false
	case req.PeriodEnd.Before(req.PeriodStart.Time):
		web.Fail(c, http.StatusBadRequest, "Period end cannot be before period start")
		return Analytics{}, false
	case req.TransactionCount <= 0:
		web.Fail(c, http.StatusBadRequest, "Transaction count must be greater than zero")
		return Analytics{}, false
	case req.TotalAmount.IsNegative():
		web.Fail(c, http.StatusBadRequest, "Total amount cannot be negative")
		return Analytics{}, false
	case !money.FitsAmount(req.TotalAmount):
		web.Fail(c, http.StatusBadRequest, "Total amount must have at most 13 integer digits and 2 decimal places")
		return Analytics{}, false
	}

	period, ok := ParsePeriod(req.AnalysisPeriod)
	if !ok {
		web.Fail(c, http.StatusBadRequest, invalidEnum("analysis period", req.AnalysisPeriod))
		return Analytics{}, false
	}

	a := Analytics{
		UserID:            *req.UserID,
		CategoryID:        *req.CategoryID,
		AnalysisPeriod:    period,
		PeriodStart:       *req.PeriodStart,
		PeriodEnd:         *req.PeriodEnd,
		TotalAmount:       req.TotalAmount,
		TransactionCount:  req.TransactionCount,
		PercentageOfTotal: decimal.Zero,
		TrendPercentage:   decimal.Zero,
	}
	if req.TrendDirection != "" {
		if a.TrendDirection, ok = ParseTrend(req.TrendDirection); !ok {
			web.Fail(c, http.StatusBadRequest, invalidEnum("trend direction", req.TrendDirection))
			return Analytics{}, false
		}
	}
	if req.PercentageOfTotal != nil {
		a.PercentageOfTotal = *req.PercentageOfTotal
	}
	if req.TrendPercentage != nil {
		a.TrendPercentage = *req.TrendPercentage
	}
	a.derive()
	return a, true
}

// @Summary Create analytics
// @Description averageTransaction is derived; trendDirection defaults to STABLE
// @Tags analytics
// @Accept json
// @Produce json
// @Param analytics body AnalyticsRequest true "Spending analytics"
// @Success 201 {object} map[string]interface{} "Analytics created successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /analytics [post]
func (h *Handler) createAnalytics(c *gin.Context) {
	var req AnalyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	a, ok := analyticsFromRequest(c, req)
	if !ok {
		return
	}
	if err := h.store.CreateAnalytics(c.Request.Context(), &a); err != nil {
		web.AbortWithStoreError(c, "creating analytics", err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Analytics created successfully", "analytics": a})
}

// @Summary Update analytics
// @Description Full replace
// @Tags analytics
// @Accept json
// @Produce json
// @Param id path int true "Analytics ID"
// @Param analytics body AnalyticsRequest true "Spending analytics"
// @Success 200 {object} map[string]interface{} "Analytics updated successfully"
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 404 {object} map[string]interface{} "Analytics not found"
// @Router /analytics/{id} [put]
func (h *Handler) updateAnalytics(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}
	var req AnalyticsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetAnalytics(ctx, id); err != nil {
		web.AbortWithStoreError(c, "fetching analytics", err, "Analytics not found")
		return
	}
	a, ok := analyticsFromRequest(c, req)
	if !ok {
		return
	}
	a.ID = id
	if err := h.store.UpdateAnalytics(ctx, &a); err != nil {
		web.AbortWithStoreError(c, "updating analytics", err, "Analytics not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Analytics updated successfully", "analytics": a})
}

// @Summary Delete analytics
// @Tags analytics
// @Produce json
// @Param id path int true "Analytics ID"
// @Success 200 {object} map[string]interface{} "Analytics deleted successfully"
// @Failure 404 {object} map[string]interface{} "Analytics not found"
// @Router /analytics/{id} [delete]
func (h *Handler) deleteAnalytics(c *gin.Context) {
	id, ok := web.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteAnalytics(c.Request.Context(), id); err != nil {
		web.AbortWithStoreError(c, "deleting analytics", err, "Analytics not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Analytics deleted successfully"})
}
