package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mentorlink/mentorlink-api/databases"
	"github.com/mentorlink/mentorlink-api/models"
	templates "github.com/mentorlink/mentorlink-api/templates/html"
	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// reminderWindow is how far ahead of the scheduled start the reminder job
// looks for upcoming lectures
const reminderWindow = 30 * time.Minute

// staleAfter is how long past its scheduled start a lecture may sit in
// scheduled status before the sweep cancels it
const staleAfter = 24 * time.Hour

// Scheduler handles periodic background jobs for lectures
type Scheduler struct {
	cron       *cron.Cron
	LDB        databases.LectureDatabase
	UDB        databases.UserDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(lDB databases.LectureDatabase, uDB databases.UserDatabase) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		LDB:        lDB,
		UDB:        uDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Send reminder emails for lectures starting soon, every 15 minutes
	_, err := s.cron.AddFunc("*/15 * * * *", s.sendUpcomingLectureReminders)
	if err != nil {
		zap.S().Errorw("failed to register lecture reminder job", "error", err)
	}

	// Cancel lectures that never went live, hourly
	_, err = s.cron.AddFunc("0 * * * *", s.sweepStaleLectures)
	if err != nil {
		zap.S().Errorw("failed to register stale lecture sweep job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Lecture scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Lecture scheduler stopped")
}

// sendUpcomingLectureReminders emails every participant of lectures starting
// within the reminder window. ReminderSentAt guards against repeat sends
// across job runs.
func (s *Scheduler) sendUpcomingLectureReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	windowEnd := now.Add(reminderWindow)

	zap.S().Infow("Running lecture reminder job", "instance", s.instanceID)

	filter := bson.M{
		"lecture.status": models.LectureStatusScheduled,
		"lecture.startTime": bson.M{
			"$gt": primitive.NewDateTimeFromTime(now),
			"$lt": primitive.NewDateTimeFromTime(windowEnd),
		},
		"lecture.reminderSentAt": bson.M{"$exists": false},
	}

	lectures, err := s.LDB.Find(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to find upcoming lectures", "error", err)
		return
	}

	sent := 0
	for _, lecture := range lectures {
		s.remindLectureParticipants(ctx, lecture)
		err := s.LDB.UpdateOne(ctx,
			bson.M{"_id": lecture.ID},
			bson.M{"$set": bson.M{"lecture.reminderSentAt": primitive.NewDateTimeFromTime(now)}},
		)
		if err != nil {
			zap.S().Errorw("failed to mark reminder sent", "error", err, "lectureId", lecture.ID.Hex())
			continue
		}
		sent++
	}

	zap.S().Infow("Lecture reminder job complete", "lecturesReminded", sent)
}

func (s *Scheduler) remindLectureParticipants(ctx context.Context, lecture models.Lecture) {
	startTime := lecture.Details.StartTime.Time().UTC().Format("Mon Jan 2 15:04 MST")

	recipients := append([]string{}, lecture.Details.Students...)
	if lecture.Details.MentorID != "" {
		recipients = append(recipients, lecture.Details.MentorID)
	}

	for _, userID := range recipients {
		email, name := s.getUserEmail(ctx, userID)
		if email == "" {
			continue
		}
		htmlContent := templates.RenderLectureReminderEmail(name, lecture.Details.Title, lecture.Details.MentorName, startTime)
		plainText := fmt.Sprintf("Your lecture %q with %s starts at %s.", lecture.Details.Title, lecture.Details.MentorName, startTime)
		if err := s.sendEmail(email, name, "Your lecture starts soon", htmlContent, plainText); err != nil {
			zap.S().Errorw("failed to send lecture reminder",
				"error", err,
				"lectureId", lecture.ID.Hex(),
				"userId", userID)
		}
	}
}

// sweepStaleLectures cancels scheduled lectures whose start time passed long
// ago without the mentor ever starting them
func (s *Scheduler) sweepStaleLectures() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-staleAfter)

	filter := bson.M{
		"lecture.status":    models.LectureStatusScheduled,
		"lecture.startTime": bson.M{"$lt": primitive.NewDateTimeFromTime(cutoff)},
	}

	lectures, err := s.LDB.Find(ctx, filter)
	if err != nil {
		zap.S().Errorw("failed to find stale lectures", "error", err)
		return
	}

	cancelled := 0
	for _, lecture := range lectures {
		err := s.LDB.UpdateOne(ctx,
			bson.M{"_id": lecture.ID, "lecture.status": models.LectureStatusScheduled},
			bson.M{"$set": bson.M{
				"lecture.status":    models.LectureStatusCancelled,
				"lecture.updatedAt": primitive.NewDateTimeFromTime(time.Now()),
			}},
		)
		if err != nil {
			zap.S().Errorw("failed to cancel stale lecture", "error", err, "lectureId", lecture.ID.Hex())
			continue
		}
		cancelled++
	}

	if cancelled > 0 {
		zap.S().Infow("Stale lecture sweep complete", "cancelled", cancelled)
	}
}

// --- Email Helper Functions ---

func (s *Scheduler) sendEmail(toEmail, toName, subject, htmlContent, plainText string) error {
	from := mail.NewEmail("MentorLink", "no-reply@mentorlink.io")
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body)
	}
	return nil
}

func (s *Scheduler) getUserEmail(ctx context.Context, userID string) (email, name string) {
	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", ""
	}
	user, err := s.UDB.FindOne(ctx, bson.M{"_id": uID})
	if err != nil || user.Details.Email == "" {
		return "", ""
	}
	return user.Details.Email, user.Details.Name
}
