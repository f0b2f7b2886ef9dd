package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/quill/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reportsCollection = "scan_reports"

type ResultsRepository struct {
	mongoRepo *MongoRepository
}

func NewResultsRepository(mongoRepo *MongoRepository) *ResultsRepository {
	return &ResultsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *ResultsRepository) InsertScanReport(ctx context.Context, report *models.ScanReport) error {
	report.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, reportsCollection, report)
	if err != nil {
		return fmt.Errorf("failed to insert scan report: %w", err)
	}

	return nil
}

// GetLatestScanReport returns nil, nil when the document was never scanned
func (r *ResultsRepository) GetLatestScanReport(ctx context.Context, documentID string) (*models.ScanReport, error) {
	filter := bson.M{"documentId": documentID}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var report models.ScanReport
	err := r.mongoRepo.FindOne(ctx, reportsCollection, filter, opts).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find scan report: %w", err)
	}

	return &report, nil
}
