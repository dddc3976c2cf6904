package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Course holds the structure for the courses collection in mongo
type Course struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details CourseDetails      `json:"course" bson:"course"`
	Version int32              `json:"__v" bson:"__v"`
}

// CourseDetails holds the structure for the inner course details
type CourseDetails struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Category    string `json:"category" bson:"category"`

	MentorID string `json:"mentorID" bson:"mentorID"`

	Chapters []Chapter `json:"chapters" bson:"chapters"`

	// AssignedMentees holds the user IDs of students this course is assigned to
	AssignedMentees []string `json:"assignedMentees" bson:"assignedMentees"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// Chapter represents a single ordered chapter within a course
type Chapter struct {
	Title   string `json:"title" bson:"title"`
	Content string `json:"content" bson:"content"`
	Order   int    `json:"order" bson:"order"`
}
