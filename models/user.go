package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User holds the structure for the users collection in mongo
type User struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details UserDetails        `json:"user" bson:"user"`
	Version int32              `json:"__v" bson:"__v"`
}

// UserDetails holds the structure for the inner user structure as defined in
// the users collection in mongo
type UserDetails struct {
	Name        string `json:"name" bson:"name"`
	Email       string `json:"email" bson:"email"`
	Password    string `json:"password,omitempty" bson:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`

	// UserType: "Mentor", "Student" or "Admin"
	UserType string `json:"userType" bson:"userType"`

	Skills []Skill `json:"skills" bson:"skills"`

	// Mentees holds the user IDs of the students assigned to this mentor.
	// Only populated for mentors.
	Mentees []string `json:"mentees" bson:"mentees"`

	CareerGoals []string `json:"careerGoals" bson:"careerGoals"`
	LinkedIn    string   `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	GitHub      string   `json:"github,omitempty" bson:"github,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// Skill represents a single named skill with a 0-100 proficiency
type Skill struct {
	Name        string `json:"name" bson:"name"`
	Proficiency int    `json:"proficiency" bson:"proficiency"`
}
