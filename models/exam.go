package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Exam holds the structure for the exams collection in mongo
type Exam struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details ExamDetails        `json:"exam" bson:"exam"`
	Version int32              `json:"__v" bson:"__v"`
}

// ExamDetails holds the structure for the inner exam details
type ExamDetails struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`

	MentorID string `json:"mentorID" bson:"mentorID"`

	Questions []ExamQuestion `json:"questions" bson:"questions"`

	// AssignedMentees holds the user IDs of students this exam is assigned to
	AssignedMentees []string `json:"assignedMentees" bson:"assignedMentees"`

	// Scores is append only. A mentee may appear at most once; the submit
	// handler rejects a second attempt.
	Scores []ExamScore `json:"scores" bson:"scores"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// ExamQuestion represents a single multiple-choice question
type ExamQuestion struct {
	QuestionText  string   `json:"questionText" bson:"questionText"`
	Options       []string `json:"options" bson:"options"`
	CorrectAnswer string   `json:"correctAnswer" bson:"correctAnswer"`
}

// ExamScore records one mentee's graded submission
type ExamScore struct {
	MenteeID    string             `json:"menteeID" bson:"menteeID"`
	Score       int                `json:"score" bson:"score"`
	TotalMarks  int                `json:"totalMarks" bson:"totalMarks"`
	SubmittedAt primitive.DateTime `json:"submittedAt" bson:"submittedAt"`
}
