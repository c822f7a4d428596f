package models

import "time"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Theme is the UI theme a user picked in their settings.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultCurrency is assigned to new accounts.
const DefaultCurrency = "USD"

// User represents a user account.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	Phone         string    `json:"phone,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	Theme         Theme     `json:"theme,omitempty"`
	Notifications bool      `json:"notifications"`
}

// Profile holds the user fields that can be edited from the settings panel.
type Profile struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Currency      string `json:"currency"`
	Theme         Theme  `json:"theme"`
	Notifications bool   `json:"notifications"`
}

// Transaction represents a single income or expense entry.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
}

// Budget is the monthly spending limit of a user. There is at most one per user.
type Budget struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	MonthlyLimit float64   `json:"monthlyLimit"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Debt is a loan being paid off. InterestRate is the annual rate in percent.
type Debt struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	LoanName        string    `json:"loanName"`
	TotalAmount     float64   `json:"totalAmount"`
	InterestRate    float64   `json:"interestRate"`
	TenureMonths    int       `json:"tenureMonths"`
	RemainingAmount float64   `json:"remainingAmount"`
	StartDate       time.Time `json:"startDate"`
}

// Goal is a savings target. CurrentAmount may exceed TargetAmount.
type Goal struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	Deadline      *time.Time `json:"deadline,omitempty"`
}

// LearningProgress tracks the lessons a user completed and the points earned.
type LearningProgress struct {
	UserID             string   `json:"userId"`
	CompletedLessonIDs []string `json:"completedLessonIds"`
	QuizScore          int      `json:"quizScore"`
}

// HasCompleted reports whether lessonID is in the completed set.
func (p LearningProgress) HasCompleted(lessonID string) bool {
	for _, id := range p.CompletedLessonIDs {
		if id == lessonID {
			return true
		}
	}
	return false
}

// WithLesson returns a copy of p with lessonID added to the completed set.
// Adding an id that is already present returns an unchanged copy.
func (p LearningProgress) WithLesson(lessonID string) LearningProgress {
	ids := make([]string, 0, len(p.CompletedLessonIDs)+1)
	ids = append(ids, p.CompletedLessonIDs...)
	if !p.HasCompleted(lessonID) {
		ids = append(ids, lessonID)
	}
	p.CompletedLessonIDs = ids
	return p
}
