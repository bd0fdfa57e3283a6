package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopsafety/quiz-service/internal/models"
	"github.com/shopsafety/quiz-service/internal/repositories"
	"github.com/shopsafety/quiz-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func question(id, testID uint, text, correct string, options ...string) *models.Question {
	encoded, _ := json.Marshal(options)
	return &models.Question{
		ID:            id,
		TestID:        testID,
		QuestionText:  text,
		Answers:       encoded,
		CorrectAnswer: correct,
	}
}

func tableSawQuestions() []*models.Question {
	return []*models.Question{
		question(101, 3, "Where should the blade guard be?", "A", "A", "B", "C", "D"),
		question(102, 3, "When do you adjust the fence?", "B", "A", "B", "C", "D"),
		question(103, 3, "What do you use for narrow rips?", "C", "A", "B", "C", "D"),
		question(104, 3, "Who may remove the riving knife?", "D", "A", "B", "C", "D"),
	}
}

type gradingFixture struct {
	repo   *MockRepository
	txRepo *MockRepository
	svc    *gradingService
}

func newGradingFixture() *gradingFixture {
	repo := NewMockRepository()
	txRepo := NewMockRepository()
	return &gradingFixture{
		repo:   repo,
		txRepo: txRepo,
		svc: &gradingService{
			repo:      repo,
			logger:    testLogger(),
			validator: validator.New(),
			now:       func() time.Time { return testNow },
		},
	}
}

func (f *gradingFixture) expectLookups(testID, userID uint, questions []*models.Question) {
	f.repo.TestRepo.On("GetByID", mock.Anything, testID).Return(&models.Test{ID: testID, Name: "Table Saw Safety"}, nil)
	f.repo.UserRepo.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)
	f.repo.QuestionRepo.On("GetByTest", mock.Anything, testID).Return(questions, nil)
}

func TestSubmitAttempt_GradesAgainstAnswerKey(t *testing.T) {
	f := newGradingFixture()
	f.expectLookups(3, 7, tableSawQuestions())

	f.repo.On("Begin", mock.Anything).Return(f.txRepo, nil)
	f.txRepo.AttemptRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Attempt")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Attempt).ID = 42
		}).Return(nil)
	f.txRepo.AttemptRepo.On("CreateFailedQuestions", mock.Anything, mock.Anything).Return(nil)
	f.txRepo.On("Commit", mock.Anything).Return(nil)

	// The client claims a perfect score; the server must ignore it.
	clientScore := 4
	result, err := f.svc.SubmitAttempt(context.Background(), &SubmitTestRequest{
		UserID:      7,
		TestID:      3,
		Answers:     map[uint]string{101: "A", 102: "B", 103: "C", 104: "X"},
		ClientScore: &clientScore,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Score)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 75.0, result.Percentage)
	assert.False(t, result.Passed)

	f.txRepo.AttemptRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(a *models.Attempt) bool {
		return a.UserID == 7 && a.TestID == 3 && a.Score == 3 && a.TotalQuestions == 4 &&
			a.Percentage == 75.0 && !a.Passed && a.AttemptTimestamp.Equal(testNow.UTC())
	}))
	f.txRepo.AttemptRepo.AssertCalled(t, "CreateFailedQuestions", mock.Anything, mock.MatchedBy(func(records []*models.FailedQuestion) bool {
		if len(records) != 1 {
			return false
		}
		r := records[0]
		return r.AttemptID == 42 && r.QuestionID == 104 &&
			r.SelectedAnswer != nil && *r.SelectedAnswer == "X"
	}))
	f.txRepo.AssertCalled(t, "Commit", mock.Anything)
	f.txRepo.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestSubmitAttempt_AllCorrectPasses(t *testing.T) {
	f := newGradingFixture()
	f.expectLookups(3, 7, tableSawQuestions())

	f.repo.On("Begin", mock.Anything).Return(f.txRepo, nil)
	f.txRepo.AttemptRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.txRepo.AttemptRepo.On("CreateFailedQuestions", mock.Anything, mock.Anything).Return(nil)
	f.txRepo.On("Commit", mock.Anything).Return(nil)

	result, err := f.svc.SubmitAttempt(context.Background(), &SubmitTestRequest{
		UserID:  7,
		TestID:  3,
		Answers: map[uint]string{101: "A", 102: "B", 103: "C", 104: "D"},
	})

	require.NoError(t, err)
	assert.Equal(t, 4, result.Score)
	assert.Equal(t, 100.0, result.Percentage)
	assert.True(t, result.Passed)
}

func TestSubmitAttempt_UnansweredCountsIncorrect(t *testing.T) {
	f := newGradingFixture()
	f.expectLookups(3, 7, tableSawQuestions())

	f.repo.On("Begin", mock.Anything).Return(f.txRepo, nil)
	f.txRepo.AttemptRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Attempt).ID = 43 }).
		Return(nil)
	f.txRepo.AttemptRepo.On("CreateFailedQuestions", mock.Anything, mock.Anything).Return(nil)
	f.txRepo.On("Commit", mock.Anything).Return(nil)

	// Q103 unanswered, Q104 wrong, and an entry for a question id that is not
	// in this test at all.
	result, err := f.svc.SubmitAttempt(context.Background(), &SubmitTestRequest{
		UserID:  7,
		TestID:  3,
		Answers: map[uint]string{101: "A", 102: "B", 104: "A", 999: "D"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 50.0, result.Percentage)
	assert.False(t, result.Passed)

	f.txRepo.AttemptRepo.AssertCalled(t, "CreateFailedQuestions", mock.Anything, mock.MatchedBy(func(records []*models.FailedQuestion) bool {
		if len(records) != 2 {
			return false
		}
		unanswered, wrong := records[0], records[1]
		return unanswered.QuestionID == 103 && unanswered.SelectedAnswer == nil &&
			wrong.QuestionID == 104 && wrong.SelectedAnswer != nil && *wrong.SelectedAnswer == "A"
	}))
}

func TestSubmitAttempt_PercentageRoundsToTwoDecimals(t *testing.T) {
	f := newGradingFixture()
	questions := tableSawQuestions()[:3]
	f.expectLookups(3, 7, questions)

	f.repo.On("Begin", mock.Anything).Return(f.txRepo, nil)
	f.txRepo.AttemptRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.txRepo.AttemptRepo.On("CreateFailedQuestions", mock.Anything, mock.Anything).Return(nil)
	f.txRepo.On("Commit", mock.Anything).Return(nil)

	result, err := f.svc.SubmitAttempt(context.Background(), &SubmitTestRequest{
		UserID:  7,
		TestID:  3,
		Answers: map[uint]string{101: "A", 102: "B", 103: "X"},
	})

	require.NoError(t, err)
	assert.Equal(t, 66.67, result.Percentage)
}

func TestSubmitAttempt_TestNotFound(t *testing.T) {
	f := newGradingFixture()
	f.repo.TestRepo.On("GetByID", mock.Anything, uint(88)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.SubmitAttempt(context.Background(), &SubmitTestRequest{
		UserID:  7,
		TestID:  88,
		Answers: map[uint]string{1: "A"},
	})

	assert.ErrorIs(t, err, ErrTestNotFound)
	f.repo.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestSubmitAttempt_EmptyQuestionSet(t *testing.T) {
	f := newGradingFixture()
	f.expectLookups(3, 7, []*models.Question{})

	_, err := f.svc.SubmitAttempt(context.Background(), &SubmitTestRequest{
		UserID:  7,
		TestID:  3,
		Answers: map[uint]string{1: "A"},
	})

	assert.ErrorIs(t, err, ErrTestMisconfigured)
	f.repo.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestSubmitAttempt_RollsBackWhenFailedQuestionsFail(t *testing.T) {
	f := newGradingFixture()
	f.expectLookups(3, 7, tableSawQuestions())

	f.repo.On("Begin", mock.Anything).Return(f.txRepo, nil)
	f.txRepo.AttemptRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Attempt).ID = 44 }).
		Return(nil)
	f.txRepo.AttemptRepo.On("CreateFailedQuestions", mock.Anything, mock.Anything).Return(assert.AnError)
	f.txRepo.On("Rollback", mock.Anything).Return(nil)

	_, err := f.svc.SubmitAttempt(context.Background(), &SubmitTestRequest{
		UserID:  7,
		TestID:  3,
		Answers: map[uint]string{101: "X"},
	})

	require.Error(t, err)
	f.txRepo.AssertCalled(t, "Rollback", mock.Anything)
	f.txRepo.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestSubmitAttempt_ValidationFailure(t *testing.T) {
	f := newGradingFixture()

	_, err := f.svc.SubmitAttempt(context.Background(), &SubmitTestRequest{
		TestID:  3,
		Answers: map[uint]string{101: "A"},
	})

	assert.ErrorIs(t, err, ErrValidationFailed)
	f.repo.TestRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetFailedQuestionReview(t *testing.T) {
	f := newGradingFixture()

	selected := "X"
	details := []*repositories.FailedQuestionDetail{
		{QuestionID: 104, QuestionText: "Who may remove the riving knife?", SelectedAnswer: &selected},
	}
	f.repo.AttemptRepo.On("GetLatestByUserAndTest", mock.Anything, uint(7), uint(3)).
		Return(&models.Attempt{ID: 42, UserID: 7, TestID: 3}, nil)
	f.repo.AttemptRepo.On("GetFailedQuestions", mock.Anything, uint(42)).Return(details, nil)

	got, err := f.svc.GetFailedQuestionReview(context.Background(), 3, 7)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(104), got[0].QuestionID)
	assert.Equal(t, "Who may remove the riving knife?", got[0].QuestionText)
}

func TestGetFailedQuestionReview_NoAttempts(t *testing.T) {
	f := newGradingFixture()
	f.repo.AttemptRepo.On("GetLatestByUserAndTest", mock.Anything, uint(7), uint(3)).
		Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.GetFailedQuestionReview(context.Background(), 3, 7)
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}
