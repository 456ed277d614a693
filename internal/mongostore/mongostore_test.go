package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/johnwards/menuseed/internal/backend"
	"github.com/johnwards/menuseed/internal/domain"
)

var _ backend.DocumentStore = (*Store)(nil)

func TestBSONRoundTripKeepsJSONShape(t *testing.T) {
	item := domain.MenuItem{
		Name:       "Classic Cheeseburger",
		ImageURL:   "http://localhost/file.png",
		Price:      decimal.RequireFromString("25.99"),
		Rating:     4.5,
		Calories:   550,
		Protein:    25,
		CategoryID: "cat-1",
	}

	m, err := toBSON(item)
	require.NoError(t, err)
	assert.Equal(t, "cat-1", m["categories"])
	m["_id"] = "menu-1"

	raw, err := bson.Marshal(m)
	require.NoError(t, err)

	doc, err := fromRaw(raw, "menu")
	require.NoError(t, err)
	assert.Equal(t, "menu-1", doc.ID)
	assert.NotContains(t, string(doc.Data), "_id")

	rec, err := domain.DecodeMenuItem(doc)
	require.NoError(t, err)
	assert.True(t, rec.Price.Equal(item.Price), "price = %s", rec.Price)
	assert.Equal(t, 550, rec.Calories)
	assert.Equal(t, 4.5, rec.Rating)
}

func TestToBSONRejectsNonObject(t *testing.T) {
	_, err := toBSON([]string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}

func TestFromRawRequiresStringID(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"_id": 42, "name": "x"})
	require.NoError(t, err)

	_, err = fromRaw(raw, "menu")
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}

// newTestStore connects to the server named by MENUSEED_TEST_MONGO_URI and
// returns a store plus a throwaway database name.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	uri := os.Getenv("MENUSEED_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MENUSEED_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Connect(ctx, uri, 10*time.Second)
	require.NoError(t, err)

	dbName := fmt.Sprintf("menuseed_test_%d", time.Now().UnixNano())
	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.client.Database(dbName).Drop(ctx)
		_ = s.Close(ctx)
	})
	return s, dbName
}

func TestDocumentLifecycle(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateDocument(ctx, db, "categories", "", domain.Category{Name: "Burgers"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = s.CreateDocument(ctx, db, "categories", created.ID, domain.Category{Name: "Again"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	docs, err := s.ListDocuments(ctx, db, "categories")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	rec, err := domain.DecodeCategory(docs[0])
	require.NoError(t, err)
	assert.Equal(t, "Burgers", rec.Name)

	require.NoError(t, s.DeleteDocument(ctx, db, "categories", created.ID))
	assert.ErrorIs(t, s.DeleteDocument(ctx, db, "categories", created.ID), domain.ErrNotFound)

	docs, err = s.ListDocuments(ctx, db, "categories")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
