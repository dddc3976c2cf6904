package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/mentorlink/mentorlink-api/api"
	"github.com/mentorlink/mentorlink-api/config"
	"github.com/mentorlink/mentorlink-api/databases"
	"github.com/mentorlink/mentorlink-api/models"
	"github.com/mentorlink/mentorlink-api/realtime"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Lecture exported for testing purposes
type Lecture struct {
	DB         databases.LectureDatabase
	UDB        databases.UserDatabase
	Controller *realtime.Controller
	Auth       *realtime.Authenticator
}

// requesterIdentity resolves the caller's identity from the bearer token
func (l Lecture) requesterIdentity(r *http.Request) (realtime.Identity, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return realtime.Identity{}, realtime.ErrIdentityRequired
	}
	identity, err := l.Auth.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return realtime.Identity{}, err
	}
	return identity, nil
}

// writeControllerError maps lifecycle errors onto http statuses
func writeControllerError(msg string, w http.ResponseWriter, err error) {
	var tErr *realtime.TransitionError
	switch {
	case errors.As(err, &tErr):
		config.ErrorStatus(msg, http.StatusConflict, w, err)
	case errors.Is(err, realtime.ErrSessionNotFound):
		config.ErrorStatus(msg, http.StatusNotFound, w, err)
	case errors.Is(err, realtime.ErrIdentityRequired):
		config.ErrorStatus(msg, http.StatusBadRequest, w, err)
	default:
		config.ErrorStatus(msg, http.StatusInternalServerError, w, err)
	}
}

// LectureCreateHandler schedules a lecture. The caller becomes the mentor,
// and the room token is assigned here and never changes afterwards.
func (l Lecture) LectureCreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	identity, err := l.requesterIdentity(r)
	if err != nil {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
		return
	}
	if identity.Role != "Mentor" && identity.Role != "Admin" {
		config.ErrorStatus("only mentors may schedule lectures", http.StatusForbidden, w, fmt.Errorf("role %q", identity.Role))
		return
	}

	var details models.LectureDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if details.Title == "" {
		config.ErrorStatus("title is required", http.StatusBadRequest, w, fmt.Errorf("empty title"))
		return
	}

	// participants default to the mentor's assigned mentees
	if len(details.Students) == 0 {
		mID, err := primitive.ObjectIDFromHex(identity.UserID)
		if err == nil {
			mentor, err := l.UDB.FindOne(context.Background(), bson.M{"_id": mID})
			if err == nil {
				details.Students = mentor.Details.Mentees
			}
		}
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	details.MentorID = identity.UserID
	details.MentorName = identity.DisplayName
	details.Status = models.LectureStatusScheduled
	details.RoomToken = uuid.New().String()
	details.Chat = []models.ChatEntry{}
	details.Attendance = []models.AttendanceEntry{}
	details.CreatedAt = now
	details.UpdatedAt = now

	lecture := models.Lecture{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := l.DB.InsertOne(context.Background(), lecture); err != nil {
		config.ErrorStatus("failed to insert lecture", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("lecture scheduled",
		"lectureId", lecture.ID.Hex(),
		"mentorId", identity.UserID,
		"roomToken", details.RoomToken)

	b, err := json.Marshal(lecture)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// LectureByIDHandler returns a lecture given a lectureID
func (l Lecture) LectureByIDHandler(w http.ResponseWriter, r *http.Request) {
	lectureID := mux.Vars(r)["lecture_id"]

	zap.S().Debugf("lecture_id: %v", lectureID)

	lID, err := primitive.ObjectIDFromHex(lectureID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := l.DB.FindOne(context.Background(), bson.M{"_id": lID})
	if err != nil {
		config.ErrorStatus("failed to get lecture by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LecturesByMentorIDHandler returns all lectures owned by a mentor
func (l Lecture) LecturesByMentorIDHandler(w http.ResponseWriter, r *http.Request) {
	mentorID := mux.Vars(r)["mentor_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.M{"lecture.startTime": -1})

	dbResp, err := l.DB.Find(ctx, bson.M{"lecture.mentorID": mentorID}, opts)
	if err != nil {
		config.ErrorStatus("failed to get lectures by mentor ID", http.StatusNotFound, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Lecture{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LecturesByStudentIDHandler returns all lectures a student participates in
func (l Lecture) LecturesByStudentIDHandler(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["student_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().SetSort(bson.M{"lecture.startTime": -1})

	dbResp, err := l.DB.Find(ctx, bson.M{"lecture.students": studentID}, opts)
	if err != nil {
		config.ErrorStatus("failed to get lectures by student ID", http.StatusNotFound, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Lecture{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LiveLecturesHandler returns all lectures currently in live status
func (l Lecture) LiveLecturesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := l.DB.Find(ctx, bson.M{"lecture.status": models.LectureStatusLive})
	if err != nil {
		config.ErrorStatus("failed to get live lectures", http.StatusInternalServerError, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Lecture{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LectureByRoomTokenHandler returns a lecture addressed by its room token.
// Only the lecture's participants and its mentor may read it.
func (l Lecture) LectureByRoomTokenHandler(w http.ResponseWriter, r *http.Request) {
	roomToken := mux.Vars(r)["room_token"]

	identity, err := l.requesterIdentity(r)
	if err != nil {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
		return
	}

	dbResp, err := l.DB.FindOne(context.Background(), bson.M{"lecture.roomToken": roomToken})
	if err != nil {
		config.ErrorStatus("failed to get lecture by room token", http.StatusNotFound, w, err)
		return
	}

	if !isParticipant(dbResp, identity.UserID) && identity.Role != "Admin" {
		config.ErrorStatus("not a participant of this lecture", http.StatusForbidden, w, fmt.Errorf("user %s", identity.UserID))
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateLectureStatusHandler drives the lecture lifecycle. Only the owning
// mentor or an admin may transition a lecture; the requested status selects
// the transition and anything else is rejected.
func (l Lecture) UpdateLectureStatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	lectureID := mux.Vars(r)["lecture_id"]

	identity, err := l.requesterIdentity(r)
	if err != nil {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
		return
	}

	var body struct {
		Status       string `json:"status"`
		RecordingURL string `json:"recordingUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	lID, err := primitive.ObjectIDFromHex(lectureID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	current, err := l.DB.FindOne(context.Background(), bson.M{"_id": lID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			config.ErrorStatus("lecture not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get lecture by ID", http.StatusInternalServerError, w, err)
		return
	}
	if current.Details.MentorID != identity.UserID && identity.Role != "Admin" {
		config.ErrorStatus("only the lecture owner may change its status", http.StatusForbidden, w, fmt.Errorf("user %s", identity.UserID))
		return
	}

	var updated *models.Lecture
	switch body.Status {
	case models.LectureStatusLive:
		updated, err = l.Controller.Start(r.Context(), lectureID, identity)
	case models.LectureStatusCompleted:
		updated, err = l.Controller.End(r.Context(), lectureID, body.RecordingURL, identity)
	case models.LectureStatusCancelled:
		updated, err = l.Controller.Cancel(r.Context(), lectureID, identity)
	default:
		config.ErrorStatus("unsupported status", http.StatusBadRequest, w, fmt.Errorf("status %q", body.Status))
		return
	}
	if err != nil {
		writeControllerError("failed to update lecture status", w, err)
		return
	}

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LectureChatHandler returns the chat log for a lecture room
func (l Lecture) LectureChatHandler(w http.ResponseWriter, r *http.Request) {
	roomToken := mux.Vars(r)["room_token"]

	identity, err := l.requesterIdentity(r)
	if err != nil {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
		return
	}

	dbResp, err := l.DB.FindOne(context.Background(), bson.M{"lecture.roomToken": roomToken})
	if err != nil {
		config.ErrorStatus("failed to get lecture by room token", http.StatusNotFound, w, err)
		return
	}
	if !isParticipant(dbResp, identity.UserID) && identity.Role != "Admin" {
		config.ErrorStatus("not a participant of this lecture", http.StatusForbidden, w, fmt.Errorf("user %s", identity.UserID))
		return
	}

	chat := dbResp.Details.Chat
	if chat == nil {
		chat = []models.ChatEntry{}
	}
	b, err := json.Marshal(chat)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LectureChatPostHandler appends a chat message and broadcasts it to the room
func (l Lecture) LectureChatPostHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	roomToken := mux.Vars(r)["room_token"]

	identity, err := l.requesterIdentity(r)
	if err != nil {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if body.Message == "" {
		config.ErrorStatus("message is required", http.StatusBadRequest, w, fmt.Errorf("empty message"))
		return
	}

	entry, err := l.Controller.AppendChat(r.Context(), roomToken, identity, body.Message)
	if err != nil {
		writeControllerError("failed to append chat message", w, err)
		return
	}

	b, err := json.Marshal(entry)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UpdateRecordingHandler attaches a recording reference to a completed lecture
func (l Lecture) UpdateRecordingHandler(w http.ResponseWriter, r *http.Request) {
	l.updateArtifact(w, r, "lecture.recordingUrl")
}

// UpdateTranscriptHandler attaches a transcript reference to a completed lecture
func (l Lecture) UpdateTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	l.updateArtifact(w, r, "lecture.transcriptUrl")
}

func (l Lecture) updateArtifact(w http.ResponseWriter, r *http.Request, field string) {
	lectureID := mux.Vars(r)["lecture_id"]

	lID, err := primitive.ObjectIDFromHex(lectureID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if body.URL == "" {
		config.ErrorStatus("url is required", http.StatusBadRequest, w, fmt.Errorf("empty url"))
		return
	}

	err = l.DB.UpdateOne(context.Background(),
		bson.M{"_id": lID, "lecture.status": models.LectureStatusCompleted},
		bson.M{"$set": bson.M{
			field:               body.URL,
			"lecture.updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to update lecture", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "updated"}`))
}

// DeleteLectureHandler removes a scheduled lecture
func (l Lecture) DeleteLectureHandler(w http.ResponseWriter, r *http.Request) {
	lectureID := mux.Vars(r)["lecture_id"]

	lID, err := primitive.ObjectIDFromHex(lectureID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	err = l.DB.DeleteOne(context.Background(), bson.M{"_id": lID, "lecture.status": models.LectureStatusScheduled})
	if err != nil {
		config.ErrorStatus("failed to delete lecture", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}

func isParticipant(lecture *models.Lecture, userID string) bool {
	if lecture.Details.MentorID == userID {
		return true
	}
	for _, s := range lecture.Details.Students {
		if s == userID {
			return true
		}
	}
	return false
}
