// Package mongo implements the catalog persistence contract on a MongoDB
// collection. Each category is one document embedding its file references as
// an ordered array with explicit sequence fields, partitioned by user id.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmdyrbwtat-lang/cloud-bot/catalog"
	"github.com/mmdyrbwtat-lang/cloud-bot/core/logger"
)

const categoriesCollection = "categories"

// categoryDoc is the persisted shape of a category. NextSeq is the counter
// the next appended file receives; keeping it explicit makes pagination
// ordering independent of the engine's array-append semantics.
type categoryDoc struct {
	ID        string            `bson:"id"`
	UserID    int64             `bson:"user_id"`
	Name      string            `bson:"name"`
	CreatedAt time.Time         `bson:"created_at"`
	NextSeq   int64             `bson:"next_seq"`
	Files     []catalog.FileRef `bson:"files"`
}

// Adapter stores categories in a single MongoDB collection.
type Adapter struct {
	coll   *mongo.Collection
	client *mongo.Client
}

// Connect dials the MongoDB deployment, verifies it with a ping, and ensures
// the unique (user_id, name) index the contract relies on.
func Connect(ctx context.Context, uri, dbName string) (*Adapter, error) {
	start := time.Now()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(dbName).Collection(categoriesCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("mongo ensure index: %w", err)
	}

	logger.Info(ctx, "db", "mongo.connected",
		slog.String("db", dbName),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return &Adapter{coll: coll, client: client}, nil
}

// NewAdapter wraps an existing collection, used by tests against a fixture.
func NewAdapter(coll *mongo.Collection) *Adapter {
	return &Adapter{coll: coll}
}

// Close disconnects the client opened by Connect. A test adapter wrapping an
// external collection has nothing to close.
func (a *Adapter) Close(ctx context.Context) error {
	if a.client == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

// FindCategory implements catalog.Adapter.
func (a *Adapter) FindCategory(ctx context.Context, userID int64, name string) (catalog.Category, error) {
	var doc categoryDoc
	err := a.coll.FindOne(ctx, keyFilter(userID, name),
		options.FindOne().SetProjection(bson.M{"files": 0}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.Category{}, &catalog.CategoryNotFoundError{UserID: userID, Name: name}
	}
	if err != nil {
		return catalog.Category{}, fmt.Errorf("mongo find category: %w", err)
	}
	return doc.category()
}

// UpsertCategory implements catalog.Adapter. A duplicate-key error means
// another session created the category first; that is reported as
// created=false, not as a failure.
func (a *Adapter) UpsertCategory(ctx context.Context, cat catalog.Category) (bool, error) {
	doc := categoryDoc{
		ID:        cat.ID.String(),
		UserID:    cat.UserID,
		Name:      cat.Name,
		CreatedAt: cat.CreatedAt,
		Files:     []catalog.FileRef{},
	}
	_, err := a.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mongo upsert category: %w", err)
	}
	return true, nil
}

// DeleteCategory implements catalog.Adapter. Deleting the document drops the
// embedded file references with it.
func (a *Adapter) DeleteCategory(ctx context.Context, userID int64, name string) (bool, error) {
	res, err := a.coll.DeleteOne(ctx, keyFilter(userID, name))
	if err != nil {
		return false, fmt.Errorf("mongo delete category: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// AppendFileRef implements catalog.Adapter. The sequence assignment and the
// array push happen in one findOneAndUpdate with a pipeline update, so the
// whole append is atomic against a concurrent delete: if the document is gone
// the filter matches nothing and the call fails with CategoryNotFoundError.
func (a *Adapter) AppendFileRef(ctx context.Context, userID int64, name string, draft catalog.FileDraft) (catalog.FileRef, error) {
	addedAt := time.Now().UTC()
	// Pointer is opaque and user-controlled; $literal keeps the pipeline from
	// reading it as an expression.
	element := bson.M{
		"seq":      "$next_seq",
		"kind":     string(draft.Kind),
		"pointer":  bson.M{"$literal": draft.Pointer},
		"added_at": bson.M{"$literal": addedAt},
	}
	if draft.DisplayName != "" {
		element["display_name"] = bson.M{"$literal": draft.DisplayName}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"files":    bson.M{"$concatArrays": bson.A{"$files", bson.A{element}}},
			"next_seq": bson.M{"$add": bson.A{"$next_seq", 1}},
		}}},
	}

	var before categoryDoc
	err := a.coll.FindOneAndUpdate(ctx, keyFilter(userID, name), pipeline,
		options.FindOneAndUpdate().
			SetReturnDocument(options.Before).
			SetProjection(bson.M{"files": 0}),
	).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return catalog.FileRef{}, &catalog.CategoryNotFoundError{UserID: userID, Name: name}
	}
	if err != nil {
		return catalog.FileRef{}, fmt.Errorf("mongo append file: %w", err)
	}

	return catalog.FileRef{
		Seq:         before.NextSeq,
		Kind:        draft.Kind,
		Pointer:     draft.Pointer,
		DisplayName: draft.DisplayName,
		AddedAt:     addedAt,
	}, nil
}

// ListFileRefs implements catalog.Adapter. The embedded array already carries
// explicit seq fields; it is sorted defensively before returning.
func (a *Adapter) ListFileRefs(ctx context.Context, userID int64, name string) ([]catalog.FileRef, error) {
	var doc categoryDoc
	err := a.coll.FindOne(ctx, keyFilter(userID, name)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &catalog.CategoryNotFoundError{UserID: userID, Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("mongo list files: %w", err)
	}

	refs := doc.Files
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Seq < refs[j].Seq })
	return refs, nil
}

// ListCategories implements catalog.Adapter, ordered by creation time.
func (a *Adapter) ListCategories(ctx context.Context, userID int64) ([]catalog.CategoryInfo, error) {
	cursor, err := a.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "name", Value: 1}}}},
		{{Key: "$project", Value: bson.M{
			"id":         1,
			"user_id":    1,
			"name":       1,
			"created_at": 1,
			"file_count": bson.M{"$size": "$files"},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("mongo list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		categoryDoc `bson:",inline"`
		FileCount   int `bson:"file_count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("mongo list categories decode: %w", err)
	}

	infos := make([]catalog.CategoryInfo, 0, len(rows))
	for _, row := range rows {
		cat, err := row.category()
		if err != nil {
			return nil, err
		}
		infos = append(infos, catalog.CategoryInfo{Category: cat, FileCount: row.FileCount})
	}
	return infos, nil
}

func (d categoryDoc) category() (catalog.Category, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return catalog.Category{}, fmt.Errorf("mongo category %q: %w", d.Name, err)
	}
	return catalog.Category{
		ID:        id,
		UserID:    d.UserID,
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}, nil
}

func keyFilter(userID int64, name string) bson.M {
	return bson.M{"user_id": userID, "name": name}
}
