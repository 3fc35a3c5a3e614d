package handlers

import (
	"errors"
	"net/http"

	"propertyservices/database/repository"
	"propertyservices/models"
	"propertyservices/services/matching"
	"propertyservices/services/pricing"
	"propertyservices/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps engine errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	var merr *matching.MatchError
	switch {
	case errors.As(err, &verr):
		utils.JSONError(c, http.StatusBadRequest, "invalid input", verr.Error())
	case errors.Is(err, pricing.ErrNoMarket):
		utils.JSONError(c, http.StatusUnprocessableEntity, "cannot price request", err.Error())
	case errors.Is(err, repository.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case errors.As(err, &merr):
		getLogger(c).Error("Matching failed", zap.String("code", merr.Code), zap.Error(merr.Err))
		utils.JSONError(c, http.StatusInternalServerError, "matching failed", merr.Message)
	default:
		getLogger(c).Error("Request failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred. Please try again later.")
	}
}

func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
}
