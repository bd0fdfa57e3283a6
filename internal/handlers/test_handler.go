package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopsafety/quiz-service/internal/services"
	"github.com/shopsafety/quiz-service/internal/utils"
)

// TestHandler serves the student-facing test routes: availability, question
// delivery, submission and review.
type TestHandler struct {
	BaseHandler
	availability services.AvailabilityService
	grading      services.GradingService
	tests        services.TestService
}

func NewTestHandler(
	availability services.AvailabilityService,
	grading services.GradingService,
	tests services.TestService,
	logger utils.Logger,
) *TestHandler {
	return &TestHandler{
		BaseHandler:  NewBaseHandler(logger),
		availability: availability,
		grading:      grading,
		tests:        tests,
	}
}

// GetAvailableTests returns one availability status per active test for the
// student, in catalog display order.
func (h *TestHandler) GetAvailableTests(c *gin.Context) {
	userID := parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}

	statuses, err := h.availability.GetAvailableTests(c.Request.Context(), userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// GetQuestions serves the randomized question set for taking a test.
func (h *TestHandler) GetQuestions(c *gin.Context) {
	testID := parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}

	questions, err := h.tests.GetQuestionsForTest(c.Request.Context(), testID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// SubmitTest grades a submission server-side and persists the attempt.
func (h *TestHandler) SubmitTest(c *gin.Context) {
	testID := parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}

	var req services.SubmitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.TestID = testID

	result, err := h.grading.SubmitAttempt(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReviewFailedQuestions returns the failed questions of the student's most
// recent attempt at a test.
func (h *TestHandler) ReviewFailedQuestions(c *gin.Context) {
	testID := parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}
	userID := parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}

	details, err := h.grading.GetFailedQuestionReview(c.Request.Context(), testID, userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}
