package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mentorlink/mentorlink-api/api/handlers"
	"github.com/mentorlink/mentorlink-api/databases"
	"github.com/mentorlink/mentorlink-api/databases/mocks"
	"github.com/mentorlink/mentorlink-api/models"
)

func TestCourse_CourseByIDHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/course/asdf", nil)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	c := handlers.Course{DB: databases.NewCourseDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CourseByIDHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("failed to get objectID from Hex")) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestCourse_CoursesHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/courses", nil)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Course)
		*arg = []models.Course{
			{ID: primitive.NewObjectID(), Details: models.CourseDetails{Title: "Go Fundamentals"}},
			{ID: primitive.NewObjectID(), Details: models.CourseDetails{Title: "Systems Design"}},
		}
	})
	cursorHelper.(*mocks.CursorHelper).On("Close", mock.Anything).Return(nil)
	conn.(*mocks.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.(*MockDatabaseHelper).On("Collection", "courses").Return(conn)

	c := handlers.Course{DB: databases.NewCourseDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CoursesHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("Go Fundamentals")) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestCourse_CourseCreateHandlerMissingTitle(t *testing.T) {
	body := bytes.NewBufferString(`{"description": "no title"}`)
	req, err := http.NewRequest("POST", "/api/v1/course", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	c := handlers.Course{DB: databases.NewCourseDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CourseCreateHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}
}
