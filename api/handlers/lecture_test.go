package handlers_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mentorlink/mentorlink-api/api/handlers"
	"github.com/mentorlink/mentorlink-api/databases"
	"github.com/mentorlink/mentorlink-api/databases/mocks"
	"github.com/mentorlink/mentorlink-api/models"
	"github.com/mentorlink/mentorlink-api/realtime"
)

type nopSender struct{}

func (nopSender) Send(string, []byte) bool { return true }

func newLectureHandler(db databases.DatabaseHelper, auth *realtime.Authenticator) handlers.Lecture {
	lectureDatabase := databases.NewLectureDatabase(db)
	store := realtime.NewSessionStore(lectureDatabase)
	registry := realtime.NewRegistry()
	dispatcher := realtime.NewDispatcher(registry, store, nopSender{})
	controller := realtime.NewController(store, dispatcher, registry)
	return handlers.Lecture{
		DB:         lectureDatabase,
		UDB:        databases.NewUserDatabase(db),
		Controller: controller,
		Auth:       auth,
	}
}

func TestLecture_LectureByIDHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/lecture/asdf", nil)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	singleResultHelper = &mocks.SingleResultHelper{}

	singleResultHelper.(*mocks.SingleResultHelper).On("Decode", mock.Anything).Return(errors.New("mocked-error"))
	conn.(*mocks.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*MockDatabaseHelper).On("Collection", "lectures").Return(conn)

	auth := realtime.NewAuthenticator("test-secret")
	l := newLectureHandler(db, auth)

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.LectureByIDHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("failed to get objectID from Hex")) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestLecture_UpdateLectureStatusHandlerUnauthorized(t *testing.T) {
	body := bytes.NewBufferString(`{"status": "live"}`)
	req, err := http.NewRequest("PUT", "/api/v1/lecture/abc/status", body)
	if err != nil {
		t.Fatal(err)
	}

	auth := realtime.NewAuthenticator("test-secret")
	l := newLectureHandler(&MockDatabaseHelper{}, auth)

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.UpdateLectureStatusHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusUnauthorized {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
	}
}

func mockLectureLookup(db *MockDatabaseHelper, lecture *models.Lecture) *mocks.CollectionHelper {
	conn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Lecture)
		**arg = *lecture
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "lectures").Return(conn)
	return conn
}

func TestLecture_UpdateLectureStatusHandlerForbidden(t *testing.T) {
	lID := primitive.NewObjectID()
	lecture := &models.Lecture{
		ID: lID,
		Details: models.LectureDetails{
			MentorID:  "mentor-1",
			Status:    models.LectureStatusScheduled,
			RoomToken: "room-1",
		},
	}

	db := &MockDatabaseHelper{}
	mockLectureLookup(db, lecture)

	auth := realtime.NewAuthenticator("test-secret")
	l := newLectureHandler(db, auth)

	body := bytes.NewBufferString(`{"status": "live"}`)
	req, err := http.NewRequest("PUT", "/api/v1/lecture/"+lID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, auth, realtime.Identity{UserID: "student-9", Role: "Student"}))
	req = mux.SetURLVars(req, map[string]string{"lecture_id": lID.Hex()})

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.UpdateLectureStatusHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusForbidden {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusForbidden)
	}
}

func TestLecture_UpdateLectureStatusHandlerStartsLecture(t *testing.T) {
	lID := primitive.NewObjectID()
	lecture := &models.Lecture{
		ID: lID,
		Details: models.LectureDetails{
			Title:      "Goroutines in Practice",
			MentorID:   "mentor-1",
			MentorName: "Ada",
			Students:   []string{"student-1"},
			Status:     models.LectureStatusScheduled,
			RoomToken:  "room-1",
		},
	}

	db := &MockDatabaseHelper{}
	conn := mockLectureLookup(db, lecture)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	auth := realtime.NewAuthenticator("test-secret")
	l := newLectureHandler(db, auth)

	body := bytes.NewBufferString(`{"status": "live"}`)
	req, err := http.NewRequest("PUT", "/api/v1/lecture/"+lID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, auth, realtime.Identity{UserID: "mentor-1", Role: "Mentor", DisplayName: "Ada"}))
	req = mux.SetURLVars(req, map[string]string{"lecture_id": lID.Hex()})

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.UpdateLectureStatusHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v, body: %v", status, http.StatusOK, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"status":"live"`)) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestLecture_UpdateLectureStatusHandlerConflict(t *testing.T) {
	lID := primitive.NewObjectID()
	lecture := &models.Lecture{
		ID: lID,
		Details: models.LectureDetails{
			MentorID:  "mentor-1",
			Status:    models.LectureStatusLive,
			RoomToken: "room-1",
		},
	}

	db := &MockDatabaseHelper{}
	mockLectureLookup(db, lecture)

	auth := realtime.NewAuthenticator("test-secret")
	l := newLectureHandler(db, auth)

	body := bytes.NewBufferString(`{"status": "live"}`)
	req, err := http.NewRequest("PUT", "/api/v1/lecture/"+lID.Hex()+"/status", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, auth, realtime.Identity{UserID: "mentor-1", Role: "Mentor"}))
	req = mux.SetURLVars(req, map[string]string{"lecture_id": lID.Hex()})

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.UpdateLectureStatusHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}
}

func TestLecture_LectureChatPostHandler(t *testing.T) {
	lID := primitive.NewObjectID()
	lecture := &models.Lecture{
		ID: lID,
		Details: models.LectureDetails{
			MentorID:  "mentor-1",
			Students:  []string{"student-1"},
			Status:    models.LectureStatusLive,
			RoomToken: "room-1",
		},
	}

	db := &MockDatabaseHelper{}
	conn := mockLectureLookup(db, lecture)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	auth := realtime.NewAuthenticator("test-secret")
	l := newLectureHandler(db, auth)

	body := bytes.NewBufferString(`{"message": "hello everyone"}`)
	req, err := http.NewRequest("POST", "/api/v1/lecture/room/room-1/chat", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, auth, realtime.Identity{UserID: "student-1", Role: "Student", DisplayName: "Grace"}))
	req = mux.SetURLVars(req, map[string]string{"room_token": "room-1"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.LectureChatPostHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v, body: %v", status, http.StatusCreated, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("hello everyone")) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestLecture_LectureChatPostHandlerCompletedLecture(t *testing.T) {
	lID := primitive.NewObjectID()
	lecture := &models.Lecture{
		ID: lID,
		Details: models.LectureDetails{
			MentorID:  "mentor-1",
			Students:  []string{"student-1"},
			Status:    models.LectureStatusCompleted,
			RoomToken: "room-1",
		},
	}

	db := &MockDatabaseHelper{}
	mockLectureLookup(db, lecture)

	auth := realtime.NewAuthenticator("test-secret")
	l := newLectureHandler(db, auth)

	body := bytes.NewBufferString(`{"message": "too late"}`)
	req, err := http.NewRequest("POST", "/api/v1/lecture/room/room-1/chat", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, auth, realtime.Identity{UserID: "student-1", Role: "Student"}))
	req = mux.SetURLVars(req, map[string]string{"room_token": "room-1"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.LectureChatPostHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}
}

func TestLecture_LectureCreateHandlerForbiddenForStudents(t *testing.T) {
	auth := realtime.NewAuthenticator("test-secret")
	l := newLectureHandler(&MockDatabaseHelper{}, auth)

	body := bytes.NewBufferString(`{"title": "Intro"}`)
	req, err := http.NewRequest("POST", "/api/v1/lecture", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, auth, realtime.Identity{UserID: "student-1", Role: "Student"}))

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.LectureCreateHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusForbidden {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusForbidden)
	}
}

func TestLecture_LectureCreateHandlerAssignsRoomToken(t *testing.T) {
	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	insertResult := &mocks.InsertOneResultHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)
	db.On("Collection", "lectures").Return(conn)

	auth := realtime.NewAuthenticator("test-secret")
	l := newLectureHandler(db, auth)

	body := bytes.NewBufferString(`{"title": "Intro to Go", "students": ["student-1"], "duration": 60}`)
	req, err := http.NewRequest("POST", "/api/v1/lecture", body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+issueTestToken(t, auth, realtime.Identity{UserID: "mentor-1", Role: "Mentor", DisplayName: "Ada"}))

	rr := httptest.NewRecorder()
	http.HandlerFunc(l.LectureCreateHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusCreated {
		t.Errorf("handler returned wrong status code: got %v want %v, body: %v", status, http.StatusCreated, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("roomToken")) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"status":"scheduled"`)) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}
