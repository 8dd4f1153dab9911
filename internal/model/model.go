package model

import (
	"context"
	"time"
)

// Role represents a user's access level on the platform.
//
// The server issues roles in title case ("Student", "Teacher", "Admin") inside
// the credential claims. Anything unrecognized is treated as a student by the
// session manager, never rejected.
type Role string

const (
	// RoleStudent is a student user role.
	RoleStudent Role = "Student"
	// RoleTeacher is a teacher user role.
	RoleTeacher Role = "Teacher"
	// RoleAdmin is an admin user role.
	RoleAdmin Role = "Admin"
)

// User is the profile object returned by the remote API.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the in-memory authenticated-user view derived from a credential.
// A nil *Identity means logged out.
type Identity struct {
	Subject string
	Name    string
	Email   string
	Role    Role
}

type identityCtxKey struct{}

// ContextWithIdentity stores the authenticated identity in the request context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext retrieves the authenticated identity from context, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityCtxKey{}).(*Identity)
	return id
}

// Question is a single multiple-choice question as served by the platform.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// AssignedQuiz is a teacher-published quiz offered to students.
type AssignedQuiz struct {
	ID         string     `json:"_id"`
	Topic      string     `json:"topic"`
	Difficulty string     `json:"difficulty"`
	Questions  []Question `json:"questions"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Course is a published course module with the caller's enrollment status.
type Course struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	Subject    string `json:"subject"`
	Content    string `json:"content"`
	IsEnrolled bool   `json:"is_enrolled"`
}

// ProgressEntry is one recorded quiz result in a student's history.
type ProgressEntry struct {
	ID          string    `json:"_id"`
	Topic       string    `json:"topic"`
	Score       int       `json:"score"`
	Status      string    `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
}

// ProgressStats summarizes a student's history.
type ProgressStats struct {
	TotalQuizzes int     `json:"total_quizzes"`
	AverageScore float64 `json:"average_score"`
}

// ProgressReport combines a student's history with its summary stats.
type ProgressReport struct {
	History []ProgressEntry `json:"history"`
	Stats   ProgressStats   `json:"stats"`
}

// StudentPerformance is one row of the teacher's class report.
type StudentPerformance struct {
	ID           string  `json:"_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	QuizzesTaken int     `json:"quizzes_taken"`
	AverageScore float64 `json:"average_score"`
	Status       string  `json:"status"`
}

// ClassStats holds the aggregate numbers shown on the teacher dashboard.
type ClassStats struct {
	TotalStudents int     `json:"total_students"`
	TotalQuizzes  int     `json:"total_quizzes"`
	ClassAverage  float64 `json:"class_average"`
}

// Analytics is the teacher analytics payload.
type Analytics struct {
	Stats    ClassStats           `json:"stats"`
	Students []StudentPerformance `json:"students"`
}

// AdminStats holds platform-wide counters for the admin dashboard.
type AdminStats struct {
	TotalStudents int `json:"total_students"`
	TotalTeachers int `json:"total_teachers"`
	TotalModules  int `json:"total_modules"`
	TotalQuizzes  int `json:"total_quizzes"`
}

// PublishMode selects how a teacher quiz is produced.
type PublishMode string

const (
	// ModeAI asks the platform's AI service to generate the questions.
	ModeAI PublishMode = "AI"
	// ModeManual publishes teacher-authored questions.
	ModeManual PublishMode = "Manual"
)
