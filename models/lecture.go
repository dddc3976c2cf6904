package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Lecture status values. Completed and cancelled are terminal: no further
// transition is valid out of either.
const (
	LectureStatusScheduled = "scheduled"
	LectureStatusLive      = "live"
	LectureStatusCompleted = "completed"
	LectureStatusCancelled = "cancelled"
)

// Lecture holds the structure for the lectures collection in mongo
type Lecture struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details LectureDetails     `json:"lecture" bson:"lecture"`
	Version int32              `json:"__v" bson:"__v"`
}

// LectureDetails holds the structure for the inner lecture details
type LectureDetails struct {
	Title string `json:"title" bson:"title"`

	MentorID string `json:"mentorID" bson:"mentorID"`
	// MentorName is denormalized for session-started broadcasts
	MentorName string `json:"mentorName" bson:"mentorName"`

	// Students holds the user IDs of the lecture participants
	Students []string `json:"students" bson:"students"`

	StartTime primitive.DateTime `json:"startTime" bson:"startTime"`
	// Duration in minutes
	Duration int `json:"duration" bson:"duration"`

	// Status: "scheduled", "live", "completed", "cancelled"
	Status string `json:"status" bson:"status"`

	// RoomToken is the shareable identifier used to address all participants
	// of the lecture for real-time delivery. Immutable once assigned.
	RoomToken string `json:"roomToken" bson:"roomToken"`

	RecordingURL  string `json:"recordingUrl,omitempty" bson:"recordingUrl,omitempty"`
	TranscriptURL string `json:"transcriptUrl,omitempty" bson:"transcriptUrl,omitempty"`

	// Chat is the ordered, append-only chat log for the lecture
	Chat []ChatEntry `json:"chat" bson:"chat"`

	// Attendance is the append-only log of leave signals. Repeated leave
	// signals for the same participant append duplicate entries.
	Attendance []AttendanceEntry `json:"attendance" bson:"attendance"`

	StartedAt primitive.DateTime `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	EndedAt   primitive.DateTime `json:"endedAt,omitempty" bson:"endedAt,omitempty"`

	ReminderSentAt primitive.DateTime `json:"reminderSentAt,omitempty" bson:"reminderSentAt,omitempty"`

	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// ChatEntry represents a single message in a lecture's chat log
type ChatEntry struct {
	UserID    string             `json:"userID" bson:"userID"`
	UserName  string             `json:"userName" bson:"userName"`
	Message   string             `json:"message" bson:"message"`
	Timestamp primitive.DateTime `json:"timestamp" bson:"timestamp"`
}

// AttendanceEntry records a single leave signal from a participant
type AttendanceEntry struct {
	UserID string             `json:"userID" bson:"userID"`
	LeftAt primitive.DateTime `json:"leftAt" bson:"leftAt"`
}

// IsTerminalLectureStatus reports whether status is one of the absorbing states
func IsTerminalLectureStatus(status string) bool {
	return status == LectureStatusCompleted || status == LectureStatusCancelled
}
