package realtime

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/models"
)

// Controller owns the lecture lifecycle state machine
// (scheduled -> live -> completed, scheduled -> cancelled) and triggers the
// dispatcher and attendance recording as transition side effects. It requires
// an identity on every transition but does not decide who may transition:
// owner-only policy belongs to the caller.
type Controller struct {
	store      SessionStore
	dispatcher *Dispatcher
	registry   *Registry
}

// NewController creates a lifecycle controller over the given collaborators
func NewController(store SessionStore, dispatcher *Dispatcher, registry *Registry) *Controller {
	return &Controller{
		store:      store,
		dispatcher: dispatcher,
		registry:   registry,
	}
}

// Start transitions a scheduled lecture to live and broadcasts a single
// sessionStarted event to the room. Any other prior status fails with a
// TransitionError and nothing is mutated or broadcast.
func (c *Controller) Start(ctx context.Context, lectureID string, by Identity) (*models.Lecture, error) {
	if by.UserID == "" {
		return nil, ErrIdentityRequired
	}

	lecture, err := c.store.FindByID(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if lecture.Details.Status != models.LectureStatusScheduled {
		return nil, &TransitionError{Event: "start", Status: lecture.Details.Status}
	}

	startedAt := time.Now().UTC()
	err = c.store.UpdateStatus(ctx, lectureID, StatusUpdate{
		Status:    models.LectureStatusLive,
		StartedAt: startedAt,
	})
	if err != nil {
		return nil, err
	}

	lecture.Details.Status = models.LectureStatusLive
	lecture.Details.StartedAt = primitive.NewDateTimeFromTime(startedAt)

	// Best-effort hint to connected participants; the store remains the
	// source of truth for anyone unreachable right now.
	delivered, dErr := c.dispatcher.NotifyRoom(ctx, lecture.Details.RoomToken, EventSessionStarted, SessionStartedEvent{
		SessionID:        lecture.ID.Hex(),
		RoomToken:        lecture.Details.RoomToken,
		Title:            lecture.Details.Title,
		OwnerDisplayName: lecture.Details.MentorName,
		StartedAt:        startedAt,
	})
	if dErr != nil {
		zap.S().Warnw("session started but room broadcast failed",
			"lectureId", lectureID,
			"error", dErr)
	}

	zap.S().Infow("lecture started",
		"lectureId", lectureID,
		"roomToken", lecture.Details.RoomToken,
		"requestedBy", by.UserID,
		"delivered", delivered)
	return lecture, nil
}

// End transitions a live lecture to completed, optionally attaching a
// recording reference. No broadcast is emitted.
func (c *Controller) End(ctx context.Context, lectureID, recordingURL string, by Identity) (*models.Lecture, error) {
	if by.UserID == "" {
		return nil, ErrIdentityRequired
	}

	lecture, err := c.store.FindByID(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if lecture.Details.Status != models.LectureStatusLive {
		return nil, &TransitionError{Event: "end", Status: lecture.Details.Status}
	}

	endedAt := time.Now().UTC()
	err = c.store.UpdateStatus(ctx, lectureID, StatusUpdate{
		Status:       models.LectureStatusCompleted,
		EndedAt:      endedAt,
		RecordingURL: recordingURL,
	})
	if err != nil {
		return nil, err
	}

	lecture.Details.Status = models.LectureStatusCompleted
	lecture.Details.EndedAt = primitive.NewDateTimeFromTime(endedAt)
	if recordingURL != "" {
		lecture.Details.RecordingURL = recordingURL
	}

	zap.S().Infow("lecture ended",
		"lectureId", lectureID,
		"requestedBy", by.UserID)
	return lecture, nil
}

// Cancel transitions a scheduled lecture to cancelled. The session never went
// live, so nothing is broadcast.
func (c *Controller) Cancel(ctx context.Context, lectureID string, by Identity) (*models.Lecture, error) {
	if by.UserID == "" {
		return nil, ErrIdentityRequired
	}

	lecture, err := c.store.FindByID(ctx, lectureID)
	if err != nil {
		return nil, err
	}
	if lecture.Details.Status != models.LectureStatusScheduled {
		return nil, &TransitionError{Event: "cancel", Status: lecture.Details.Status}
	}

	err = c.store.UpdateStatus(ctx, lectureID, StatusUpdate{Status: models.LectureStatusCancelled})
	if err != nil {
		return nil, err
	}

	lecture.Details.Status = models.LectureStatusCancelled

	zap.S().Infow("lecture cancelled",
		"lectureId", lectureID,
		"requestedBy", by.UserID)
	return lecture, nil
}

// AppendChat appends an entry to the lecture's chat log and re-broadcasts it
// to the room. Chat is not state-machine-gated: it is accepted in any
// non-terminal status.
func (c *Controller) AppendChat(ctx context.Context, roomToken string, author Identity, text string) (models.ChatEntry, error) {
	if author.UserID == "" {
		return models.ChatEntry{}, ErrIdentityRequired
	}

	lecture, err := c.store.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return models.ChatEntry{}, err
	}
	if models.IsTerminalLectureStatus(lecture.Details.Status) {
		return models.ChatEntry{}, &TransitionError{Event: "chat", Status: lecture.Details.Status}
	}

	now := time.Now().UTC()
	entry := models.ChatEntry{
		UserID:    author.UserID,
		UserName:  author.DisplayName,
		Message:   text,
		Timestamp: primitive.NewDateTimeFromTime(now),
	}

	if err := c.store.AppendChat(ctx, roomToken, entry); err != nil {
		return models.ChatEntry{}, err
	}

	_, dErr := c.dispatcher.NotifyRoom(ctx, roomToken, EventChatMessage, ChatMessageEvent{
		Author: ChatAuthor{
			UserID:      author.UserID,
			DisplayName: author.DisplayName,
		},
		Text:      text,
		Timestamp: now,
	})
	if dErr != nil {
		zap.S().Warnw("chat appended but room broadcast failed",
			"roomToken", roomToken,
			"error", dErr)
	}

	return entry, nil
}

// RecordLeave appends one attendance entry for the participant and removes
// the connection from the presence registry. Duplicate leave signals append
// duplicate entries: the attendance log is an append-only record of leave
// events, not a presence flag. On store failure the registry is untouched.
func (c *Controller) RecordLeave(ctx context.Context, roomToken, userID, connectionID string) error {
	lecture, err := c.store.FindByRoomToken(ctx, roomToken)
	if err != nil {
		return err
	}
	if models.IsTerminalLectureStatus(lecture.Details.Status) {
		return &TransitionError{Event: "leave", Status: lecture.Details.Status}
	}

	entry := models.AttendanceEntry{
		UserID: userID,
		LeftAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if err := c.store.AppendAttendance(ctx, roomToken, entry); err != nil {
		return err
	}

	c.registry.Remove(connectionID)

	zap.S().Infow("participant left lecture",
		"roomToken", roomToken,
		"userId", userID)
	return nil
}
