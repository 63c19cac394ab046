package models

import "time"

// Question is raised by a student within a class week.
type Question struct {
	ID        int64     `json:"id" yaml:"id"`
	StudentID int64     `json:"student_id" yaml:"student_id"`
	ClassID   int64     `json:"class_id" yaml:"class_id"`
	Week      int       `json:"week" yaml:"week"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	Resolved  bool      `json:"resolved" yaml:"resolved"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewQuestion carries the fields of a new question.
type NewQuestion struct {
	StudentID int64
	ClassID   int64
	Week      int
	Title     string
	Content   string
}

// QuestionPatch lists the mutable question fields.
type QuestionPatch struct {
	Title    *string
	Content  *string
	Resolved *bool
}

// Answer replies to a question.
type Answer struct {
	ID         int64     `json:"id" yaml:"id"`
	QuestionID int64     `json:"question_id" yaml:"question_id"`
	AuthorID   int64     `json:"author_id" yaml:"author_id"`
	Content    string    `json:"content" yaml:"content"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewAnswer carries the fields of a new answer.
type NewAnswer struct {
	QuestionID int64
	AuthorID   int64
	Content    string
}

// AnswerPatch lists the mutable answer fields.
type AnswerPatch struct {
	Content *string
}
