package repository

import (
	"context"
	"log"

	"github.com/tieubaoca/docsum-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type SummaryRepo interface {
	CreateSummary(ctx context.Context, record *types.SummaryRecord) error
	GetSummary(ctx context.Context, id string) (*types.SummaryRecord, error)
	ListSummaries(ctx context.Context, fileName string, limit, offset int) ([]*types.SummaryRecord, error)
	DeleteSummary(ctx context.Context, id string) error
}

type summaryRepo struct {
	collection *mongo.Collection
}

func NewSummaryRepo(db *mongo.Database) SummaryRepo {
	// check if collection does not exist, create one
	collectionNames, err := db.ListCollectionNames(context.Background(), nil)
	if err != nil {
		panic(err)
	}
	collectionExists := false
	for _, name := range collectionNames {
		if name == "summaries" {
			collectionExists = true
			break
		}
	}
	collection := db.Collection("summaries")
	if !collectionExists {
		indexes := []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "created_at", Value: -1},
				},
			},
			{
				Keys: bson.D{
					{Key: "file_name", Value: 1},
				},
			}}

		_, err = collection.Indexes().CreateMany(context.Background(), indexes)
		if err != nil {
			log.Printf("Error creating indexes: %v", err)
			return nil
		}
	}

	return &summaryRepo{
		collection: collection,
	}
}

func (r *summaryRepo) CreateSummary(ctx context.Context, record *types.SummaryRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *summaryRepo) GetSummary(ctx context.Context, id string) (*types.SummaryRecord, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var record types.SummaryRecord
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *summaryRepo) ListSummaries(ctx context.Context, fileName string, limit, offset int) ([]*types.SummaryRecord, error) {
	filter := make(map[string]interface{})
	if fileName != "" {
		filter["file_name"] = fileName
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*types.SummaryRecord
	for cursor.Next(ctx) {
		var record types.SummaryRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	return records, nil
}

func (r *summaryRepo) DeleteSummary(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
