package handlers

import (
	"fmt"
	"net/http"

	"finora/internal/learning"
	"finora/internal/logger"
	"finora/internal/metrics"
	"finora/internal/models"
	"finora/internal/storage"

	"go.uber.org/zap"
)

// questionView is a quiz question without its answer.
type questionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type lessonView struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Category        string         `json:"category"`
	DurationMinutes int            `json:"durationMinutes"`
	Summary         string         `json:"summary"`
	Completed       bool           `json:"completed"`
	Questions       []questionView `json:"questions"`
}

type progressResponse struct {
	models.LearningProgress
	TotalLessons      int `json:"totalLessons"`
	CompletionPercent int `json:"completionPercent"`
}

type quizRequest struct {
	Answers []int `json:"answers"`
}

type quizResponse struct {
	learning.Outcome
	Progress progressResponse `json:"progress"`
}

func (h *Handlers) progressResponse(p models.LearningProgress) progressResponse {
	return progressResponse{
		LearningProgress:  p,
		TotalLessons:      h.lessons.Len(),
		CompletionPercent: metrics.CourseCompletionPercent(len(p.CompletedLessonIDs), h.lessons.Len()),
	}
}

// ListLessons returns the course with the user's completion marks. Correct
// answers are not included.
func (h *Handlers) ListLessons(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	progress, err := h.db.GetProgress(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	lessons := h.lessons.Lessons()
	out := make([]lessonView, 0, len(lessons))
	for _, l := range lessons {
		v := lessonView{
			ID:              l.ID,
			Title:           l.Title,
			Category:        l.Category,
			DurationMinutes: l.DurationMinutes,
			Summary:         l.Summary,
			Completed:       progress.HasCompleted(l.ID),
			Questions:       make([]questionView, 0, len(l.Questions)),
		}
		for _, q := range l.Questions {
			v.Questions = append(v.Questions, questionView{ID: q.ID, Question: q.Question, Options: q.Options})
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetProgress returns the user's learning progress.
func (h *Handlers) GetProgress(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	progress, err := h.db.GetProgress(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.progressResponse(progress))
}

// SubmitQuiz grades a quiz. A passing first attempt completes the lesson
// and awards points.
func (h *Handlers) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	lesson, ok := h.lessons.Lesson(r.PathValue("id"))
	if !ok {
		writeError(w, r, fmt.Errorf("lesson %s: %w", r.PathValue("id"), storage.ErrNotFound))
		return
	}
	var req quizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Answers) != len(lesson.Questions) {
		writeError(w, r, &models.ValidationError{
			Field:   "answers",
			Message: fmt.Sprintf("expected %d answers, got %d", len(lesson.Questions), len(req.Answers)),
		})
		return
	}

	score := learning.Score(req.Answers, lesson.Questions)
	var outcome learning.Outcome
	updated, err := h.db.UpdateProgress(r.Context(), user.ID, func(p models.LearningProgress) (models.LearningProgress, error) {
		var next models.LearningProgress
		next, outcome = learning.Apply(p, lesson.ID, score)
		return next, nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if outcome.Passed && !outcome.AlreadyCompleted {
		logger.Get().Info("lesson completed",
			zap.String("user_id", user.ID),
			zap.String("lesson_id", lesson.ID),
			zap.Int("score", outcome.Score),
		)
	}
	writeJSON(w, http.StatusOK, quizResponse{Outcome: outcome, Progress: h.progressResponse(updated)})
}
