package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/quill/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const documentsCollection = "documents"

type DocumentsRepository struct {
	mongoRepo *MongoRepository
}

func NewDocumentsRepository(mongoRepo *MongoRepository) *DocumentsRepository {
	return &DocumentsRepository{
		mongoRepo: mongoRepo,
	}
}

// UpsertDocument stores doc, replacing any previous version with the same documentId
func (r *DocumentsRepository) UpsertDocument(ctx context.Context, doc *models.Document) error {
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	filter := bson.M{"documentId": doc.DocumentID}
	if err := r.mongoRepo.UpsertOne(ctx, documentsCollection, filter, doc); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// GetDocument returns nil, nil when the document does not exist
func (r *DocumentsRepository) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	filter := bson.M{"documentId": documentID}

	var doc models.Document
	err := r.mongoRepo.FindOne(ctx, documentsCollection, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// ListDocumentsByOwner returns the owner's documents except excludeID
func (r *DocumentsRepository) ListDocumentsByOwner(ctx context.Context, ownerID, excludeID string) ([]*models.Document, error) {
	filter := bson.M{"ownerId": ownerID}
	if excludeID != "" {
		filter["documentId"] = bson.M{"$ne": excludeID}
	}

	cursor, err := r.mongoRepo.FindMany(ctx, documentsCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return docs, nil
}
