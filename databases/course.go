package databases

// go generate: mockery --name CourseDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mentorlink/mentorlink-api/models"
)

const courseName = "courses"

// CourseDatabase contains the methods to use with the course database
type CourseDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Course, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Course, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error
}

type courseDatabase struct {
	db DatabaseHelper
}

// NewCourseDatabase initializes a new instance of course database with the provided db connection
func NewCourseDatabase(db DatabaseHelper) CourseDatabase {
	return &courseDatabase{
		db: db,
	}
}

func (c *courseDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Course, error) {
	course := &models.Course{}
	err := c.db.Collection(courseName).FindOne(ctx, filter, opts...).Decode(&course)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (c *courseDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Course, error) {
	var courses []models.Course
	curr, err := c.db.Collection(courseName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &courses)
	if err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *courseDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(courseName).CountDocuments(ctx, filter, opts...)
}

func (c *courseDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(courseName).InsertOne(ctx, document, opts...)
	return res, err
}

func (c *courseDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(courseName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *courseDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(courseName).DeleteOne(ctx, filter, opts...)
}
