package api

import (
	"errors"
	"net/http"

	"sikadvoltz/progression/internal/repository"
	"sikadvoltz/progression/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AchievementHandler exposes the achievement summary read model.
type AchievementHandler struct {
	completionService service.CompletionService
}

// NewAchievementHandler creates a new AchievementHandler.
func NewAchievementHandler(completionService service.CompletionService) *AchievementHandler {
	return &AchievementHandler{completionService: completionService}
}

// GetSummary handles GET /achievements/summary.
func (h *AchievementHandler) GetSummary(c *gin.Context) {
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

	summary, err := h.completionService.GetAchievementSummary(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "No progression record for this user yet.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve achievement summary.")
		return
	}

	c.JSON(http.StatusOK, summary)
}
