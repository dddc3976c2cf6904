package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mentorlink/mentorlink-api/api"
	"github.com/mentorlink/mentorlink-api/config"
	"github.com/mentorlink/mentorlink-api/databases"
	"github.com/mentorlink/mentorlink-api/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course exported for testing purposes
type Course struct {
	DB databases.CourseDatabase
}

// CourseCreateHandler creates a course
func (c Course) CourseCreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var details models.CourseDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if details.Title == "" {
		config.ErrorStatus("title is required", http.StatusBadRequest, w, fmt.Errorf("empty title"))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	details.CreatedAt = now
	details.UpdatedAt = now

	course := models.Course{
		ID:      primitive.NewObjectID(),
		Details: details,
	}
	if _, err := c.DB.InsertOne(context.Background(), course); err != nil {
		config.ErrorStatus("failed to insert course", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(course)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// CoursesHandler returns all courses
func (c Course) CoursesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get courses", http.StatusInternalServerError, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Course{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CoursesByMentorIDHandler returns all courses owned by a mentor
func (c Course) CoursesByMentorIDHandler(w http.ResponseWriter, r *http.Request) {
	mentorID := mux.Vars(r)["mentor_id"]

	dbResp, err := c.DB.Find(context.Background(), bson.M{"course.mentorID": mentorID})
	if err != nil {
		config.ErrorStatus("failed to get courses by mentor ID", http.StatusNotFound, w, err)
		return
	}
	if dbResp == nil {
		dbResp = []models.Course{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CourseByIDHandler returns a course given a courseID
func (c Course) CourseByIDHandler(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["course_id"]

	cID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := c.DB.FindOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to get course by ID", http.StatusNotFound, w, err)
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

// UpdateCourseHandler replaces a course's editable fields
func (c Course) UpdateCourseHandler(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["course_id"]

	cID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var details models.CourseDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{
		"course.updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}
	if details.Title != "" {
		set["course.title"] = details.Title
	}
	if details.Description != "" {
		set["course.description"] = details.Description
	}
	if details.Category != "" {
		set["course.category"] = details.Category
	}
	if details.Chapters != nil {
		set["course.chapters"] = details.Chapters
	}

	err = c.DB.UpdateOne(context.Background(), bson.M{"_id": cID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update course", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "updated"}`))
}

// AssignMenteeHandler assigns a mentee to a course
func (c Course) AssignMenteeHandler(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["course_id"]

	cID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var body struct {
		MenteeID string `json:"menteeID"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if body.MenteeID == "" {
		config.ErrorStatus("menteeID is required", http.StatusBadRequest, w, fmt.Errorf("empty menteeID"))
		return
	}

	err = c.DB.UpdateOne(context.Background(),
		bson.M{"_id": cID},
		bson.M{
			"$addToSet": bson.M{"course.assignedMentees": body.MenteeID},
			"$set":      bson.M{"course.updatedAt": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to assign mentee", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "assigned"}`))
}

// DeleteCourseHandler removes a course
func (c Course) DeleteCourseHandler(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["course_id"]

	cID, err := primitive.ObjectIDFromHex(courseID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	err = c.DB.DeleteOne(context.Background(), bson.M{"_id": cID})
	if err != nil {
		config.ErrorStatus("failed to delete course", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "deleted"}`))
}
