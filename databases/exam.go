package databases

// go generate: mockery --name ExamDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mentorlink/mentorlink-api/models"
)

const examName = "exams"

// ExamDatabase contains the methods to use with the exam database
type ExamDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Exam, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Exam, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
}

type examDatabase struct {
	db DatabaseHelper
}

// NewExamDatabase initializes a new instance of exam database with the provided db connection
func NewExamDatabase(db DatabaseHelper) ExamDatabase {
	return &examDatabase{
		db: db,
	}
}

func (e *examDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Exam, error) {
	exam := &models.Exam{}
	err := e.db.Collection(examName).FindOne(ctx, filter, opts...).Decode(&exam)
	if err != nil {
		return nil, err
	}
	return exam, nil
}

func (e *examDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Exam, error) {
	var exams []models.Exam
	curr, err := e.db.Collection(examName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &exams)
	if err != nil {
		return nil, err
	}
	return exams, nil
}

func (e *examDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return e.db.Collection(examName).CountDocuments(ctx, filter, opts...)
}

func (e *examDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := e.db.Collection(examName).InsertOne(ctx, document, opts...)
	return res, err
}

func (e *examDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := e.db.Collection(examName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (e *examDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return e.db.Collection(examName).DeleteOne(ctx, filter, opts...)
}
