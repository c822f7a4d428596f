// Package learning holds the financial literacy course and its quiz rules.
package learning

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"

	"finora/internal/models"
)

const (
	// PassThreshold is the minimum quiz score, in percent, to complete a lesson.
	PassThreshold = 60
	// PointsPerLesson is awarded the first time a lesson is completed.
	PointsPerLesson = 50
)

//go:embed lessons.json
var lessonsJSON []byte

// Question is a multiple choice quiz question. CorrectAnswer indexes Options.
type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Lesson is one unit of the course.
type Lesson struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Category        string     `json:"category"`
	DurationMinutes int        `json:"durationMinutes"`
	Summary         string     `json:"summary"`
	Questions       []Question `json:"questions"`
}

// Catalog is an ordered, read-only set of lessons.
type Catalog struct {
	lessons []Lesson
	byID    map[string]int
}

// NewCatalog indexes lessons. Lesson ids must be unique.
func NewCatalog(lessons []Lesson) (*Catalog, error) {
	c := &Catalog{lessons: lessons, byID: make(map[string]int, len(lessons))}
	for i, l := range lessons {
		if _, dup := c.byID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate lesson id %q", l.ID)
		}
		for _, q := range l.Questions {
			if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
				return nil, fmt.Errorf("lesson %s question %s: answer %d out of range", l.ID, q.ID, q.CorrectAnswer)
			}
		}
		c.byID[l.ID] = i
	}
	return c, nil
}

// DefaultCatalog returns the built-in course.
func DefaultCatalog() (*Catalog, error) {
	var lessons []Lesson
	if err := json.Unmarshal(lessonsJSON, &lessons); err != nil {
		return nil, fmt.Errorf("decode lessons: %w", err)
	}
	return NewCatalog(lessons)
}

// Lessons returns the lessons in course order.
func (c *Catalog) Lessons() []Lesson { return c.lessons }

// Len returns the number of lessons.
func (c *Catalog) Len() int { return len(c.lessons) }

// Lesson looks up a lesson by id.
func (c *Catalog) Lesson(id string) (Lesson, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Lesson{}, false
	}
	return c.lessons[i], true
}

// Score returns the rounded percentage of answers matching the correct
// option. Missing answers count as wrong; a quiz without questions scores 0.
func Score(answers []int, questions []Question) int {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(len(questions)) * 100))
}

// Passed reports whether score completes a lesson.
func Passed(score int) bool {
	return score >= PassThreshold
}

// Outcome describes what a quiz attempt changed.
type Outcome struct {
	Score            int  `json:"score"`
	Passed           bool `json:"passed"`
	PointsAwarded    int  `json:"pointsAwarded"`
	AlreadyCompleted bool `json:"alreadyCompleted"`
}

// Apply records a quiz attempt. A passing score marks the lesson completed
// and awards PointsPerLesson, but only the first time.
func Apply(p models.LearningProgress, lessonID string, score int) (models.LearningProgress, Outcome) {
	out := Outcome{
		Score:            score,
		Passed:           Passed(score),
		AlreadyCompleted: p.HasCompleted(lessonID),
	}
	if !out.Passed {
		return p, out
	}
	if !out.AlreadyCompleted {
		out.PointsAwarded = PointsPerLesson
	}
	p = p.WithLesson(lessonID)
	p.QuizScore += out.PointsAwarded
	return p, out
}
