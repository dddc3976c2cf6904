package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/api"
	"github.com/mentorlink/mentorlink-api/api/scheduler"
	"github.com/mentorlink/mentorlink-api/config"
	"github.com/mentorlink/mentorlink-api/databases"
	"github.com/mentorlink/mentorlink-api/models"
	"github.com/mentorlink/mentorlink-api/realtime"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	DB        databases.CollectionHelper
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	// realtime coordination core. The hub and the dispatcher reference each
	// other through the controller, so wiring happens in two phases.
	auth := realtime.NewAuthenticator(a.Config.TokenSecret)
	registry := realtime.NewRegistry()
	store := realtime.NewSessionStore(databases.NewLectureDatabase(a.dbHelper))
	hub := realtime.NewHub(auth, registry)
	dispatcher := realtime.NewDispatcher(registry, store, hub)
	controller := realtime.NewController(store, dispatcher, registry)
	hub.SetController(controller)

	u := User{DB: databases.NewUserDatabase(a.dbHelper), Auth: auth}
	l := Lecture{
		DB:         databases.NewLectureDatabase(a.dbHelper),
		UDB:        databases.NewUserDatabase(a.dbHelper),
		Controller: controller,
		Auth:       auth,
	}
	c := Course{DB: databases.NewCourseDatabase(a.dbHelper)}
	e := Exam{DB: databases.NewExamDatabase(a.dbHelper), Auth: auth}
	uploadHandler := UploadHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.HandleFunc("/ws", hub.ServeWS)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/auth/login", http.HandlerFunc(u.UserLoginHandler)).Methods("POST")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/check-user", http.HandlerFunc(u.UserCheckEmailHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}/mentees", api.Middleware(http.HandlerFunc(u.UserMenteesHandler))).Methods("GET")
	apiCreate.Handle("/user/{user_id}/mentees", api.Middleware(http.HandlerFunc(u.AddMenteeHandler))).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UpdateUserByIDHandler))).Methods("PUT")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/users/mentors", api.Middleware(http.HandlerFunc(u.MentorsHandler))).Methods("GET")

	// lecture lifecycle and chat authenticate with the same signed token the
	// websocket handshake uses, so the requester identity is known
	apiCreate.Handle("/lectures/schedule", http.HandlerFunc(l.LectureCreateHandler)).Methods("POST")
	apiCreate.Handle("/lectures/live", api.Middleware(http.HandlerFunc(l.LiveLecturesHandler))).Methods("GET")
	apiCreate.Handle("/lectures/mentor/{mentor_id}", api.Middleware(http.HandlerFunc(l.LecturesByMentorIDHandler))).Methods("GET")
	apiCreate.Handle("/lectures/student/{student_id}", api.Middleware(http.HandlerFunc(l.LecturesByStudentIDHandler))).Methods("GET")
	apiCreate.Handle("/lectures/room/{room_token}", http.HandlerFunc(l.LectureByRoomTokenHandler)).Methods("GET")
	apiCreate.Handle("/lectures/{room_token}/chat", http.HandlerFunc(l.LectureChatHandler)).Methods("GET")
	apiCreate.Handle("/lectures/{room_token}/chat", http.HandlerFunc(l.LectureChatPostHandler)).Methods("POST")
	apiCreate.Handle("/lectures/{lecture_id}/status", http.HandlerFunc(l.UpdateLectureStatusHandler)).Methods("PUT")
	apiCreate.Handle("/lectures/{lecture_id}/recording", api.Middleware(http.HandlerFunc(l.UpdateRecordingHandler))).Methods("PUT")
	apiCreate.Handle("/lectures/{lecture_id}/transcript", api.Middleware(http.HandlerFunc(l.UpdateTranscriptHandler))).Methods("PUT")
	apiCreate.Handle("/lectures/{lecture_id}", api.Middleware(http.HandlerFunc(l.LectureByIDHandler))).Methods("GET")
	apiCreate.Handle("/lectures/{lecture_id}", api.Middleware(http.HandlerFunc(l.DeleteLectureHandler))).Methods("DELETE")

	apiCreate.Handle("/course", api.Middleware(http.HandlerFunc(c.CourseCreateHandler))).Methods("POST")
	apiCreate.Handle("/courses", api.Middleware(http.HandlerFunc(c.CoursesHandler))).Methods("GET")
	apiCreate.Handle("/courses/mentor/{mentor_id}", api.Middleware(http.HandlerFunc(c.CoursesByMentorIDHandler))).Methods("GET")
	apiCreate.Handle("/course/{course_id}", api.Middleware(http.HandlerFunc(c.CourseByIDHandler))).Methods("GET")
	apiCreate.Handle("/course/{course_id}", api.Middleware(http.HandlerFunc(c.UpdateCourseHandler))).Methods("PUT")
	apiCreate.Handle("/course/{course_id}", api.Middleware(http.HandlerFunc(c.DeleteCourseHandler))).Methods("DELETE")
	apiCreate.Handle("/course/{course_id}/assign", api.Middleware(http.HandlerFunc(c.AssignMenteeHandler))).Methods("POST")

	// exam creation, submission and status need the caller's identity, so
	// they authenticate with the signed token like the lecture lifecycle
	apiCreate.Handle("/exam", http.HandlerFunc(e.ExamCreateHandler)).Methods("POST")
	apiCreate.Handle("/exams", api.Middleware(http.HandlerFunc(e.ExamsHandler))).Methods("GET")
	apiCreate.Handle("/exams/mentee/{user_id}", api.Middleware(http.HandlerFunc(e.ExamsByMenteeHandler))).Methods("GET")
	apiCreate.Handle("/exam/{exam_id}/submit", http.HandlerFunc(e.SubmitExamHandler)).Methods("POST")
	apiCreate.Handle("/exam/{exam_id}/status", http.HandlerFunc(e.ExamStatusHandler)).Methods("GET")
	apiCreate.Handle("/exam/{exam_id}", api.Middleware(http.HandlerFunc(e.ExamByIDHandler))).Methods("GET")
	apiCreate.Handle("/exam/{exam_id}", api.Middleware(http.HandlerFunc(e.UpdateExamHandler))).Methods("PUT")
	apiCreate.Handle("/exam/{exam_id}", api.Middleware(http.HandlerFunc(e.DeleteExamHandler))).Methods("DELETE")

	apiCreate.Handle("/generate-upload-signature", api.Middleware(http.HandlerFunc(uploadHandler.GenerateSignature))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("mentorlink-api has connected to the database")

	a.Scheduler = scheduler.NewScheduler(
		databases.NewLectureDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
