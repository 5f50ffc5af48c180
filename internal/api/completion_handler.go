package api

import (
	"errors"
	"net/http"
	"time"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"
	"sikadvoltz/progression/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletionHandler exposes the session-completion pipeline to the
// surrounding service.
type CompletionHandler struct {
	completionService service.CompletionService
}

// NewCompletionHandler creates a new CompletionHandler.
func NewCompletionHandler(completionService service.CompletionService) *CompletionHandler {
	return &CompletionHandler{completionService: completionService}
}

// sessionCompletedRequest is the inbound payload from the telemetry
// layer. Optional metrics default to zero.
type sessionCompletedRequest struct {
	GoalID  *string `json:"goalId,omitempty"`
	Session struct {
		SessionID       string    `json:"sessionId" binding:"required"`
		TotalDistance   float64   `json:"totalDistance"`
		TotalCalories   float64   `json:"totalCalories"`
		DurationSeconds int       `json:"durationSeconds"`
		AvgSpeed        float64   `json:"avgSpeed"`
		MaxSpeed        float64   `json:"maxSpeed"`
		AvgPower        float64   `json:"avgPower"`
		MaxPower        float64   `json:"maxPower"`
		EndTime         time.Time `json:"endTime" binding:"required"`
	} `json:"session" binding:"required"`
}

// CompleteSession handles POST /sessions/complete.
func (h *CompletionHandler) CompleteSession(c *gin.Context) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return
	}

	var req sessionCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	var goalID *primitive.ObjectID
	if req.GoalID != nil && *req.GoalID != "" {
		id, err := primitive.ObjectIDFromHex(*req.GoalID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid goal ID format.")
			return
		}
		goalID = &id
	}

	summary := domain.SessionSummary{
		SessionID:       req.Session.SessionID,
		TotalDistance:   req.Session.TotalDistance,
		TotalCalories:   req.Session.TotalCalories,
		DurationSeconds: req.Session.DurationSeconds,
		AvgSpeed:        req.Session.AvgSpeed,
		MaxSpeed:        req.Session.MaxSpeed,
		AvgPower:        req.Session.AvgPower,
		MaxPower:        req.Session.MaxPower,
		EndTime:         req.Session.EndTime,
	}

	result, err := h.completionService.OnSessionCompleted(c.Request.Context(), userID, goalID, summary)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSession) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to process session completion.")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGoalProgress handles GET /goals/:id/progress.
type GoalHandler struct {
	goalService service.GoalService
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

func (h *GoalHandler) GetGoalProgress(c *gin.Context) {
	goalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid goal ID format.")
		return
	}

	summary, err := h.goalService.GetGoalProgressSummary(c.Request.Context(), goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Goal not found.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve goal progress.")
		return
	}

	c.JSON(http.StatusOK, summary)
}
