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
	"github.com/mentorlink/mentorlink-api/realtime"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// sessionTokenTTL is the lifetime of the signed token issued at login
const sessionTokenTTL = 24 * time.Hour

// User exported for testing purposes
type User struct {
	DB   databases.UserDatabase
	Auth *realtime.Authenticator
}

// UserHandler returns a user given a userID
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	zap.S().Debugf("user_id: %v", userID)

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := u.DB.FindOne(context.Background(), bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}
	dbResp.Details.Password = ""

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MentorsHandler returns all mentors
func (u User) MentorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.DB.Find(ctx, bson.M{"user.userType": "Mentor"})
	if err != nil {
		config.ErrorStatus("failed to get mentors", http.StatusNotFound, w, err)
		return
	}
	// Because the frontend requires that the data elements exist, if
	// len == 0 then we will just return an empty data object
	if dbResp == nil {
		dbResp = []models.User{}
	}
	for i := range dbResp {
		dbResp[i].Details.Password = ""
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UserMenteesHandler returns the mentee users assigned to a mentor
func (u User) UserMenteesHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	mentor, err := u.DB.FindOne(context.Background(), bson.M{"_id": uID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	menteeIDs := make([]primitive.ObjectID, 0, len(mentor.Details.Mentees))
	for _, id := range mentor.Details.Mentees {
		mID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		menteeIDs = append(menteeIDs, mID)
	}

	mentees := []models.User{}
	if len(menteeIDs) > 0 {
		mentees, err = u.DB.Find(context.Background(), bson.M{"_id": bson.M{"$in": menteeIDs}})
		if err != nil {
			config.ErrorStatus("failed to get mentees", http.StatusInternalServerError, w, err)
			return
		}
	}
	for i := range mentees {
		mentees[i].Details.Password = ""
	}

	b, err := json.Marshal(mentees)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AddMenteeHandler assigns a mentee to a mentor
func (u User) AddMenteeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
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

	res, err := u.DB.UpdateOne(context.Background(),
		bson.M{"_id": uID, "user.userType": "Mentor"},
		bson.M{
			"$addToSet": bson.M{"user.mentees": body.MenteeID},
			"$set":      bson.M{"user.updatedAt": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
	if err != nil {
		config.ErrorStatus("failed to assign mentee", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("mentor not found", http.StatusNotFound, w, fmt.Errorf("no mentor matched"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "assigned"}`))
}

// UserLoginHandler verifies credentials and returns a signed session token.
// The same token authenticates websocket handshakes.
func (u User) UserLoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	dbEmailResp, err := u.DB.Find(context.Background(), bson.M{"user.email": creds.Email})
	if err != nil {
		config.ErrorStatus("failed to get user by email", http.StatusNotFound, w, err)
		return
	}
	if len(dbEmailResp) == 0 {
		config.ErrorStatus("no matching email found", http.StatusUnauthorized, w, fmt.Errorf("no matching email found"))
		return
	}

	user := dbEmailResp[0]
	err = bcrypt.CompareHashAndPassword([]byte(user.Details.Password), []byte(creds.Password))
	if err != nil {
		config.ErrorStatus("failed to compare password", http.StatusUnauthorized, w, err)
		return
	}

	token, err := u.Auth.Issue(realtime.Identity{
		UserID:      user.ID.Hex(),
		Role:        user.Details.UserType,
		DisplayName: user.Details.Name,
	}, sessionTokenTTL)
	if err != nil {
		config.ErrorStatus("failed to issue token", http.StatusInternalServerError, w, err)
		return
	}

	response := map[string]string{
		"token":    token,
		"_id":      user.ID.Hex(),
		"userType": user.Details.UserType,
	}
	b, err := json.Marshal(response)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UserCreateHandler creates a user
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var user models.UserDetails
	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	// check if the user already exists
	existingUser, _ := u.DB.FindOne(context.Background(), bson.M{"user.email": user.Email})
	if existingUser != nil {
		config.ErrorStatus("email already exists", http.StatusConflict, w, fmt.Errorf("duplicate email"))
		return
	}

	// hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}
	user.Password = string(hashedPassword)

	now := primitive.NewDateTimeFromTime(time.Now())
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = u.DB.InsertOne(context.Background(), user)
	if err != nil {
		config.ErrorStatus("failed to insert user", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// UserCheckEmailHandler checks if an email exists using POST
func (u User) UserCheckEmailHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var user models.UserDetails
	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	// check if the user already exists
	existingUser, _ := u.DB.FindOne(context.Background(), bson.M{"user.email": user.Email})
	if existingUser != nil {
		config.ErrorStatus("email already exists", http.StatusConflict, w, fmt.Errorf("duplicate email"))
		return
	}

	w.WriteHeader(http.StatusOK)
}

// UpdateUserByIDHandler updates a user's profile fields
func (u User) UpdateUserByIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var details models.UserDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{
		"user.updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}
	if details.Name != "" {
		set["user.name"] = details.Name
	}
	if details.PhoneNumber != "" {
		set["user.phoneNumber"] = details.PhoneNumber
	}
	if details.Skills != nil {
		set["user.skills"] = details.Skills
	}
	if details.Mentees != nil {
		set["user.mentees"] = details.Mentees
	}
	if details.CareerGoals != nil {
		set["user.careerGoals"] = details.CareerGoals
	}
	if details.LinkedIn != "" {
		set["user.linkedin"] = details.LinkedIn
	}
	if details.GitHub != "" {
		set["user.github"] = details.GitHub
	}

	res, err := u.DB.UpdateOne(context.Background(), bson.M{"_id": uID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update user", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("user not found", http.StatusNotFound, w, fmt.Errorf("no user matched"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "updated"}`))
}
