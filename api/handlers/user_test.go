package handlers_test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mentorlink/mentorlink-api/models"
	"github.com/mentorlink/mentorlink-api/realtime"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/mentorlink/mentorlink-api/databases"
	"github.com/mentorlink/mentorlink-api/databases/mocks"

	"github.com/mentorlink/mentorlink-api/api/handlers"
)

type MockDatabaseHelper struct {
	mock.Mock
}

// Client provides a mock function.
func (_m *MockDatabaseHelper) Client() databases.ClientHelper {
	ret := _m.Called()

	var r0 databases.ClientHelper
	if rf, ok := ret.Get(0).(func() databases.ClientHelper); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.ClientHelper)
		}
	}

	return r0
}

// Collection provides a mock function.
func (_m *MockDatabaseHelper) Collection(name string) databases.CollectionHelper {
	ret := _m.Called(name)

	var r0 databases.CollectionHelper
	if rf, ok := ret.Get(0).(func(string) databases.CollectionHelper); ok {
		r0 = rf(name)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.CollectionHelper)
		}
	}

	return r0
}

func TestUser_UserHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/user/asdf", nil)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Authorization", "Bearer abc123")

	var db databases.DatabaseHelper
	var client databases.ClientHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &MockDatabaseHelper{} // can be used as db = &mocks.DatabaseHelper{}
	client = &mocks.ClientHelper{}
	conn = &mocks.CollectionHelper{}
	singleResultHelper = &mocks.SingleResultHelper{}

	client.(*mocks.ClientHelper).On("StartSession").Return(nil, errors.New("mocked-error"))
	db.(*MockDatabaseHelper).On("Client").Return(client)
	singleResultHelper.(*mocks.SingleResultHelper).On("Decode", mock.Anything).Return(errors.New("mocked-error"))
	conn.(*mocks.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*MockDatabaseHelper).On("Collection", "users").Return(conn)

	userDatabase := databases.NewUserDatabase(db)
	u := handlers.User{
		DB: userDatabase,
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.UserHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	if !bytes.Contains(rr.Body.Bytes(), []byte("failed to get objectID from Hex")) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestUser_UserCreateHandlerDuplicateEmail(t *testing.T) {
	body := bytes.NewBufferString(`{"email": "taken@mentorlink.io", "password": "hunter2"}`)
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", body)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var singleResultHelper databases.SingleResultHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	singleResultHelper = &mocks.SingleResultHelper{}

	// decoding succeeds, so the email is already registered
	singleResultHelper.(*mocks.SingleResultHelper).On("Decode", mock.Anything).Return(nil)
	conn.(*mocks.CollectionHelper).On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.(*MockDatabaseHelper).On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusConflict {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusConflict)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("email already exists")) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestUser_UserLoginHandlerIssuesToken(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewBufferString(`{"email": "grace@mentorlink.io", "password": "hunter2"}`)
	req, err := http.NewRequest("POST", "/api/v1/auth/login", body)
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
		arg := args.Get(1).(*[]models.User)
		*arg = []models.User{{
			Details: models.UserDetails{
				Name:     "Grace",
				Email:    "grace@mentorlink.io",
				Password: string(hashed),
				UserType: "Student",
			},
		}}
	})
	cursorHelper.(*mocks.CursorHelper).On("Close", mock.Anything).Return(nil)
	conn.(*mocks.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.(*MockDatabaseHelper).On("Collection", "users").Return(conn)

	auth := realtime.NewAuthenticator("test-secret")
	u := handlers.User{DB: databases.NewUserDatabase(db), Auth: auth}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserLoginHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v, body: %v", status, http.StatusOK, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("token")) {
		t.Errorf("handler returned unexpected body: got %v", rr.Body.String())
	}
}

func TestUser_UserLoginHandlerWrongPassword(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}

	body := bytes.NewBufferString(`{"email": "grace@mentorlink.io", "password": "wrong"}`)
	req, err := http.NewRequest("POST", "/api/v1/auth/login", body)
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
		arg := args.Get(1).(*[]models.User)
		*arg = []models.User{{
			Details: models.UserDetails{
				Email:    "grace@mentorlink.io",
				Password: string(hashed),
			},
		}}
	})
	cursorHelper.(*mocks.CursorHelper).On("Close", mock.Anything).Return(nil)
	conn.(*mocks.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.(*MockDatabaseHelper).On("Collection", "users").Return(conn)

	auth := realtime.NewAuthenticator("test-secret")
	u := handlers.User{DB: databases.NewUserDatabase(db), Auth: auth}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserLoginHandler).ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusUnauthorized {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusUnauthorized)
	}
}

func issueTestToken(t *testing.T, auth *realtime.Authenticator, identity realtime.Identity) string {
	t.Helper()
	token, err := auth.Issue(identity, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}
