package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopsafety/quiz-service/internal/services"
	"github.com/shopsafety/quiz-service/internal/utils"
)

type CohortHandler struct {
	BaseHandler
	cohorts services.CohortService
}

func NewCohortHandler(cohorts services.CohortService, logger utils.Logger) *CohortHandler {
	return &CohortHandler{
		BaseHandler: NewBaseHandler(logger),
		cohorts:     cohorts,
	}
}

func (h *CohortHandler) List(c *gin.Context) {
	cohorts, err := h.cohorts.List(c.Request.Context())
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cohorts)
}

func (h *CohortHandler) Create(c *gin.Context) {
	var req services.CohortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cohort, err := h.cohorts.Create(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cohort)
}

func (h *CohortHandler) Update(c *gin.Context) {
	cohortID := parseIDParam(c, "cohort_id")
	if cohortID == 0 {
		return
	}

	var req services.CohortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cohort, err := h.cohorts.Update(c.Request.Context(), cohortID, &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cohort)
}

func (h *CohortHandler) Delete(c *gin.Context) {
	cohortID := parseIDParam(c, "cohort_id")
	if cohortID == 0 {
		return
	}
	if err := h.cohorts.Delete(c.Request.Context(), cohortID); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Cohort deleted"})
}
