package databases

// go generate: mockery --name LectureDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mentorlink/mentorlink-api/models"
)

const lectureName = "lectures"

// LectureDatabase contains the methods to use with the lecture database
type LectureDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Lecture, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Lecture, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
}

type lectureDatabase struct {
	db DatabaseHelper
}

// NewLectureDatabase initializes a new instance of lecture database with the provided db connection
func NewLectureDatabase(db DatabaseHelper) LectureDatabase {
	return &lectureDatabase{
		db: db,
	}
}

func (l *lectureDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Lecture, error) {
	lecture := &models.Lecture{}
	err := l.db.Collection(lectureName).FindOne(ctx, filter, opts...).Decode(&lecture)
	if err != nil {
		return nil, err
	}
	return lecture, nil
}

func (l *lectureDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Lecture, error) {
	var lectures []models.Lecture
	curr, err := l.db.Collection(lectureName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &lectures)
	if err != nil {
		return nil, err
	}
	return lectures, nil
}

func (l *lectureDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return l.db.Collection(lectureName).CountDocuments(ctx, filter, opts...)
}

func (l *lectureDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := l.db.Collection(lectureName).InsertOne(ctx, document, opts...)
	return res, err
}

func (l *lectureDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := l.db.Collection(lectureName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (l *lectureDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return l.db.Collection(lectureName).DeleteOne(ctx, filter, opts...)
}
