package realtime

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mentorlink/mentorlink-api/databases"
	"github.com/mentorlink/mentorlink-api/models"
)

// StatusUpdate carries the fields written alongside a status transition.
// Zero-valued fields are not written.
type StatusUpdate struct {
	Status       string
	StartedAt    time.Time
	EndedAt      time.Time
	RecordingURL string
}

// SessionStore is the controller's view of the session record store. All
// operations are assumed atomic at single-document granularity; the store is
// the source of truth and broadcasts are only hints layered on top of it.
type SessionStore interface {
	RoomResolver

	FindByID(ctx context.Context, lectureID string) (*models.Lecture, error)
	FindByRoomToken(ctx context.Context, roomToken string) (*models.Lecture, error)
	UpdateStatus(ctx context.Context, lectureID string, update StatusUpdate) error
	AppendChat(ctx context.Context, roomToken string, entry models.ChatEntry) error
	AppendAttendance(ctx context.Context, roomToken string, entry models.AttendanceEntry) error
}

type mongoSessionStore struct {
	db databases.LectureDatabase
}

// NewSessionStore wraps the lecture database as the controller's session store
func NewSessionStore(db databases.LectureDatabase) SessionStore {
	return &mongoSessionStore{db: db}
}

func (s *mongoSessionStore) FindByID(ctx context.Context, lectureID string) (*models.Lecture, error) {
	lID, err := primitive.ObjectIDFromHex(lectureID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	lecture, err := s.db.FindOne(ctx, bson.M{"_id": lID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return lecture, nil
}

func (s *mongoSessionStore) FindByRoomToken(ctx context.Context, roomToken string) (*models.Lecture, error) {
	lecture, err := s.db.FindOne(ctx, bson.M{"lecture.roomToken": roomToken})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return lecture, nil
}

func (s *mongoSessionStore) UpdateStatus(ctx context.Context, lectureID string, update StatusUpdate) error {
	lID, err := primitive.ObjectIDFromHex(lectureID)
	if err != nil {
		return ErrSessionNotFound
	}

	set := bson.M{
		"lecture.status":    update.Status,
		"lecture.updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}
	if !update.StartedAt.IsZero() {
		set["lecture.startedAt"] = primitive.NewDateTimeFromTime(update.StartedAt)
	}
	if !update.EndedAt.IsZero() {
		set["lecture.endedAt"] = primitive.NewDateTimeFromTime(update.EndedAt)
	}
	if update.RecordingURL != "" {
		set["lecture.recordingUrl"] = update.RecordingURL
	}

	return s.db.UpdateOne(ctx, bson.M{"_id": lID}, bson.M{"$set": set})
}

func (s *mongoSessionStore) AppendChat(ctx context.Context, roomToken string, entry models.ChatEntry) error {
	return s.db.UpdateOne(ctx,
		bson.M{"lecture.roomToken": roomToken},
		bson.M{
			"$push": bson.M{"lecture.chat": entry},
			"$set":  bson.M{"lecture.updatedAt": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
}

func (s *mongoSessionStore) AppendAttendance(ctx context.Context, roomToken string, entry models.AttendanceEntry) error {
	return s.db.UpdateOne(ctx,
		bson.M{"lecture.roomToken": roomToken},
		bson.M{
			"$push": bson.M{"lecture.attendance": entry},
			"$set":  bson.M{"lecture.updatedAt": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
}

// RoomParticipants implements RoomResolver by re-reading the session record,
// so the broadcast audience always reflects the current participant list.
// The mentor is included: chat broadcasts address the whole room.
func (s *mongoSessionStore) RoomParticipants(ctx context.Context, roomToken string) ([]string, error) {
	lecture, err := s.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return nil, err
	}
	participants := make([]string, 0, len(lecture.Details.Students)+1)
	participants = append(participants, lecture.Details.Students...)
	if lecture.Details.MentorID != "" {
		participants = append(participants, lecture.Details.MentorID)
	}
	return participants, nil
}
