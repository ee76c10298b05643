package model

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type noteDoc struct {
	ObjectID primitive.ObjectID `bson:"_id,omitempty"`
	NoteID   int64              `bson:"note_id"`
	Title    string             `bson:"title"`
	Content  string             `bson:"content"`
	Date     string             `bson:"date"`
	Owner    *string            `bson:"owner,omitempty"`
	Seq      int64              `bson:"seq"`
}

func (d noteDoc) note() Note {
	return Note{ID: d.NoteID, Title: d.Title, Content: d.Content, Date: d.Date, Owner: d.Owner}
}

// MongoRepository stores notes in a MongoDB collection. Documents are
// ordered by seq, a nanosecond stamp taken at insert time.
type MongoRepository struct {
	client *mongo.Client
	coll   *mongo.Collection
	last   atomic.Int64
}

// OpenMongo connects to uri and uses the "notes" collection in dbName.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	r := &MongoRepository{client: client, coll: client.Database(dbName).Collection("notes")}
	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return r, nil
}

func (r *MongoRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "note_id", Value: 1}}},
		{Keys: bson.D{{Key: "seq", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}

// nextSeq returns a strictly increasing stamp, even when the clock does not
// advance between two inserts.
func (r *MongoRepository) nextSeq() int64 {
	for {
		now := time.Now().UnixNano()
		last := r.last.Load()
		if now <= last {
			now = last + 1
		}
		if r.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

func (r *MongoRepository) List(ctx context.Context, id *int64) ([]Note, error) {
	filter := bson.M{}
	if id != nil {
		filter["note_id"] = *id
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "seq", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []noteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	notes := make([]Note, len(docs))
	for i, d := range docs {
		notes[i] = d.note()
	}
	return notes, nil
}

func (r *MongoRepository) Insert(ctx context.Context, n Note) error {
	doc := noteDoc{NoteID: n.ID, Title: n.Title, Content: n.Content, Date: n.Date, Owner: n.Owner, Seq: r.nextSeq()}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert note %d: %w", n.ID, err)
	}
	return nil
}

func (r *MongoRepository) Replace(ctx context.Context, n Note) error {
	set := bson.M{"title": n.Title, "content": n.Content, "date": n.Date}
	update := bson.M{"$set": set}
	if n.Owner != nil {
		set["owner"] = *n.Owner
	} else {
		update["$unset"] = bson.M{"owner": ""}
	}
	if _, err := r.coll.UpdateMany(ctx, bson.M{"note_id": n.ID}, update); err != nil {
		return fmt.Errorf("update note %d: %w", n.ID, err)
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"note_id": id}); err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return nil
}

func (r *MongoRepository) Seed(ctx context.Context, notes []Note) error {
	count, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count notes: %w", err)
	}
	if count > 0 || len(notes) == 0 {
		return nil
	}
	docs := make([]any, 0, len(notes))
	for i := len(notes) - 1; i >= 0; i-- {
		n := notes[i]
		docs = append(docs, noteDoc{NoteID: n.ID, Title: n.Title, Content: n.Content, Date: n.Date, Owner: n.Owner, Seq: r.nextSeq()})
	}
	if _, err := r.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed notes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// drop removes the collection; used by tests against a live server.
func (r *MongoRepository) drop(ctx context.Context) error {
	return r.coll.Drop(ctx)
}
