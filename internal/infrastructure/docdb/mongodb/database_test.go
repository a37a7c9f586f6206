package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/pantryshelf/products-service/internal/domain/models"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestCollection_Find(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns every document in scan order", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "name", Value: "Green tea"}},
			bson.D{{Key: "name", Value: "Arabica"}},
			bson.D{{Key: "name", Value: "Earl Grey"}},
		))

		coll := NewCollection(mt.Coll)
		cursor, err := coll.Find(context.Background(), nil)
		require.NoError(mt, err)

		var docs []models.Document
		require.NoError(mt, cursor.All(context.Background(), &docs))
		require.Len(mt, docs, 3)
		assert.Equal(mt, "Green tea", docs[0]["name"])
		assert.Equal(mt, "Arabica", docs[1]["name"])
		assert.Equal(mt, "Earl Grey", docs[2]["name"])
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		cursor, err := NewCollection(mt.Coll).Find(context.Background(), bson.D{})
		require.NoError(mt, err)

		var docs []models.Document
		require.NoError(mt, cursor.All(context.Background(), &docs))
		assert.Empty(mt, docs)
	})

	mt.Run("command error is wrapped", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad query",
		}))

		cursor, err := NewCollection(mt.Coll).Find(context.Background(), nil)
		require.Error(mt, err)
		assert.Nil(mt, cursor)
		assert.Contains(mt, err.Error(), "failed to find documents in "+mt.Coll.Name())
		assert.Contains(mt, err.Error(), "bad query")
	})
}

func TestClient_DatabaseWrapper(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("uses the resolved database", func(mt *mtest.T) {
		client := newClient(mt.Client, "pantry")

		db := client.Database()
		assert.Equal(mt, "pantry", db.Name())
		assert.NotNil(mt, db.Collection("spices"))
	})

	mt.Run("ping", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		client := newClient(mt.Client, "pantry")
		assert.NoError(mt, client.Ping(context.Background()))
	})
}
