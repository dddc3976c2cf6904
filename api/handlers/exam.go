package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/mentorlink/mentorlink-api/api"
	"github.com/mentorlink/mentorlink-api/config"
	"github.com/mentorlink/mentorlink-api/databases"
	"github.com/mentorlink/mentorlink-api/models"
	"github.com/mentorlink/mentorlink-api/realtime"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Exam exported for testing purposes
type Exam struct {
	DB   databases.ExamDatabase
	Auth *realtime.Authenticator
}

func (e Exam) requesterIdentity(r *http.Request) (realtime.Identity, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return realtime.Identity{}, realtime.ErrIdentityRequired
	}
	identity, err := e.Auth.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return realtime.Identity{}, err
	}
	return identity, nil
}

// ExamCreateHandler creates an exam. The caller becomes the owning mentor.
func (e Exam) ExamCreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	identity, err := e.requesterIdentity(r)
	if err != nil {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
		return
	}
	if identity.Role != "Mentor" && identity.Role != "Admin" {
		config.ErrorStatus("only mentors may create exams", http.StatusForbidden, w, fmt.Errorf("role %q", identity.Role))
		return
	}

	var details models.ExamDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if details.Title == "" {
		config.ErrorStatus("title is required", http.StatusBadRequest, w, fmt.Errorf("empty title"))
		return
	}
	if len(details.Questions) == 0 {
		config.ErrorStatus("at least one question is required", http.StatusBadRequest, w, fmt.Errorf("empty questions"))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	details.MentorID = identity.UserID
	details.Scores = []models.ExamScore{}
	details.CreatedAt = now
	details.UpdatedAt = now

	exam := models.Exam{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := e.DB.InsertOne(context.Background(), exam); err != nil {
		config.ErrorStatus("failed to insert exam", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("exam created",
		"examId", exam.ID.Hex(),
		"mentorId", identity.UserID)

	b, err := json.Marshal(exam)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ExamsHandler returns all exams
func (e Exam) ExamsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := e.DB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get exams", http.StatusInternalServerError, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Exam{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ExamsByMenteeHandler returns all exams assigned to a mentee
func (e Exam) ExamsByMenteeHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := e.DB.Find(ctx, bson.M{"exam.assignedMentees": userID})
	if err != nil {
		config.ErrorStatus("failed to get exams by mentee", http.StatusNotFound, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Exam{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ExamByIDHandler returns an exam given an examID
func (e Exam) ExamByIDHandler(w http.ResponseWriter, r *http.Request) {
	examID := mux.Vars(r)["exam_id"]

	eID, err := primitive.ObjectIDFromHex(examID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := e.DB.FindOne(context.Background(), bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to get exam by ID", http.StatusNotFound, w, err)
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

// UpdateExamHandler replaces an exam's editable fields
func (e Exam) UpdateExamHandler(w http.ResponseWriter, r *http.Request) {
	examID := mux.Vars(r)["exam_id"]

	eID, err := primitive.ObjectIDFromHex(examID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var details models.ExamDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{
		"exam.updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}
	if details.Title != "" {
		set["exam.title"] = details.Title
	}
	if details.Description != "" {
		set["exam.description"] = details.Description
	}
	if details.Questions != nil {
		set["exam.questions"] = details.Questions
	}
	if details.AssignedMentees != nil {
		set["exam.assignedMentees"] = details.AssignedMentees
	}

	err = e.DB.UpdateOne(context.Background(), bson.M{"_id": eID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update exam", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "updated"}`))
}

// SubmitExamHandler grades a mentee's answers and records the score. An
// answer is matched against the question at the same index. A mentee may
// submit only once.
func (e Exam) SubmitExamHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	examID := mux.Vars(r)["exam_id"]

	identity, err := e.requesterIdentity(r)
	if err != nil {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
		return
	}

	eID, err := primitive.ObjectIDFromHex(examID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		Answers []string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	exam, err := e.DB.FindOne(context.Background(), bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to get exam by ID", http.StatusNotFound, w, err)
		return
	}

	if !isAssignedMentee(exam, identity.UserID) {
		config.ErrorStatus("not assigned to this exam", http.StatusForbidden, w, fmt.Errorf("user %s", identity.UserID))
		return
	}
	if hasSubmitted(exam, identity.UserID) {
		config.ErrorStatus("exam already submitted", http.StatusConflict, w, fmt.Errorf("user %s", identity.UserID))
		return
	}

	score := 0
	for i, q := range exam.Details.Questions {
		if i < len(body.Answers) && body.Answers[i] == q.CorrectAnswer {
			score++
		}
	}

	entry := models.ExamScore{
		MenteeID:    identity.UserID,
		Score:       score,
		TotalMarks:  len(exam.Details.Questions),
		SubmittedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	err = e.DB.UpdateOne(context.Background(),
		bson.M{"_id": eID},
		bson.M{
			"$push": bson.M{"exam.scores": entry},
			"$set":  bson.M{"exam.updatedAt": entry.SubmittedAt},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to record score", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("exam submitted",
		"examId", examID,
		"menteeId", identity.UserID,
		"score", score)

	b, err := json.Marshal(entry)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ExamStatusHandler reports whether the caller has already submitted the exam
func (e Exam) ExamStatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	examID := mux.Vars(r)["exam_id"]

	identity, err := e.requesterIdentity(r)
	if err != nil {
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, err)
		return
	}

	eID, err := primitive.ObjectIDFromHex(examID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	exam, err := e.DB.FindOne(context.Background(), bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to get exam by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(map[string]bool{"isCompleted": hasSubmitted(exam, identity.UserID)})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteExamHandler removes an exam
func (e Exam) DeleteExamHandler(w http.ResponseWriter, r *http.Request) {
	examID := mux.Vars(r)["exam_id"]

	eID, err := primitive.ObjectIDFromHex(examID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	err = e.DB.DeleteOne(context.Background(), bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to delete exam", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}

func isAssignedMentee(exam *models.Exam, userID string) bool {
	for _, m := range exam.Details.AssignedMentees {
		if m == userID {
			return true
		}
	}
	return false
}

func hasSubmitted(exam *models.Exam, userID string) bool {
	for _, s := range exam.Details.Scores {
		if s.MenteeID == userID {
			return true
		}
	}
	return false
}
