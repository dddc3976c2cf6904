package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mentorlink/mentorlink-api/config"
	"github.com/mentorlink/mentorlink-api/databases"
	"github.com/mentorlink/mentorlink-api/databases/mocks"
	"github.com/mentorlink/mentorlink-api/models"
)

func TestNewLectureDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	lectureDB := databases.NewLectureDatabase(db)

	assert.NotEmpty(t, lectureDB)
}

func TestLectureDatabase_FindOne(t *testing.T) {
	mockedID := primitive.NewObjectID()

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Lecture)
		(*arg).ID = mockedID
		(*arg).Details.Title = "mocked-lecture"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "lectures").Return(collectionHelper)

	// Create new database with mocked Database interface
	lectureDba := databases.NewLectureDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	lecture, err := lectureDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, lecture)
	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with different filter for correct result
	lecture, err = lectureDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, &models.Lecture{ID: mockedID, Details: models.LectureDetails{Title: "mocked-lecture"}}, lecture)
	assert.NoError(t, err)
}

func TestLectureDatabase_UpdateOne(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"error": true}, mock.Anything).
		Return(nil, errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"error": false}, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "lectures").Return(collectionHelper)

	lectureDba := databases.NewLectureDatabase(dbHelper)

	err := lectureDba.UpdateOne(context.Background(), bson.M{"error": true}, bson.M{"$set": bson.M{"lecture.status": "live"}})
	assert.EqualError(t, err, "mocked-error")

	err = lectureDba.UpdateOne(context.Background(), bson.M{"error": false}, bson.M{"$set": bson.M{"lecture.status": "live"}})
	assert.NoError(t, err)
}

func TestLectureDatabase_Find(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).
		On("All", mock.Anything, mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Lecture)
		*arg = []models.Lecture{{Details: models.LectureDetails{Title: "mocked-lecture"}}}
	})
	cursorHelper.(*mocks.CursorHelper).On("Close", mock.Anything).Return(nil)

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{}).
		Return(cursorHelper, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "lectures").Return(collectionHelper)

	lectureDba := databases.NewLectureDatabase(dbHelper)

	lectures, err := lectureDba.Find(context.Background(), bson.M{})
	assert.NoError(t, err)
	assert.Len(t, lectures, 1)
	assert.Equal(t, "mocked-lecture", lectures[0].Details.Title)
}
