package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopsafety/quiz-service/internal/repositories"
	"github.com/shopsafety/quiz-service/internal/services"
	"github.com/shopsafety/quiz-service/internal/utils"
)

// AdminHandler serves test/question administration, user management and the
// score report.
type AdminHandler struct {
	BaseHandler
	tests     services.TestService
	users     services.UserService
	reporting services.ReportingService
}

func NewAdminHandler(
	tests services.TestService,
	users services.UserService,
	reporting services.ReportingService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		tests:       tests,
		users:       users,
		reporting:   reporting,
	}
}

// ===== TEST ADMINISTRATION =====

func (h *AdminHandler) ListTests(c *gin.Context) {
	tests, err := h.tests.ListTests(c.Request.Context(), repositories.TestFilters{})
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tests)
}

func (h *AdminHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	test, err := h.tests.CreateTest(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, test)
}

func (h *AdminHandler) UpdateTest(c *gin.Context) {
	testID := parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}

	var req services.UpdateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	test, err := h.tests.UpdateTest(c.Request.Context(), testID, &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, test)
}

func (h *AdminHandler) DeleteTest(c *gin.Context) {
	testID := parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}
	if err := h.tests.DeleteTest(c.Request.Context(), testID); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Test deleted"})
}

// ===== QUESTION ADMINISTRATION =====

func (h *AdminHandler) ListQuestions(c *gin.Context) {
	testID := parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}
	questions, err := h.tests.ListQuestions(c.Request.Context(), testID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (h *AdminHandler) CreateQuestion(c *gin.Context) {
	testID := parseIDParam(c, "test_id")
	if testID == 0 {
		return
	}

	var req services.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	question, err := h.tests.CreateQuestion(c.Request.Context(), testID, &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

func (h *AdminHandler) UpdateQuestion(c *gin.Context) {
	questionID := parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req services.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	question, err := h.tests.UpdateQuestion(c.Request.Context(), questionID, &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

func (h *AdminHandler) DeleteQuestion(c *gin.Context) {
	questionID := parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}
	if err := h.tests.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// ===== USER ADMINISTRATION =====

func (h *AdminHandler) ListUsers(c *gin.Context) {
	filters := repositories.UserFilters{Search: c.Query("search")}
	if cohort := c.Query("cohort_id"); cohort != "" {
		if id, err := strconv.ParseUint(cohort, 10, 32); err == nil {
			cohortID := uint(id)
			filters.CohortID = &cohortID
		}
	}

	users, total, err := h.users.List(c.Request.Context(), filters)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID := parseIDParam(c, "user_id")
	if userID == 0 {
		return
	}
	if err := h.users.Delete(c.Request.Context(), userID); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "User deleted"})
}

// ===== SCORE REPORT =====

func (h *AdminHandler) ListScores(c *gin.Context) {
	scores, err := h.reporting.ListScores(c.Request.Context(), scoreFilters(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

// ExportScores streams the score report as an Excel workbook.
func (h *AdminHandler) ExportScores(c *gin.Context) {
	payload, err := h.reporting.ExportScoresXLSX(c.Request.Context(), scoreFilters(c))
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="scores.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		payload)
}

func scoreFilters(c *gin.Context) repositories.AttemptFilters {
	var filters repositories.AttemptFilters
	if test := c.Query("test_id"); test != "" {
		if id, err := strconv.ParseUint(test, 10, 32); err == nil {
			testID := uint(id)
			filters.TestID = &testID
		}
	}
	if user := c.Query("user_id"); user != "" {
		if id, err := strconv.ParseUint(user, 10, 32); err == nil {
			userID := uint(id)
			filters.UserID = &userID
		}
	}
	return filters
}
