package audit

import (
	"context"
	"time"

	common_models "go-expense/internal/common/models"
	"go-expense/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditRepository interface {
	Insert(ctx context.Context, entry *common_models.AuditLog) error
	ListByCompany(ctx context.Context, companyID primitive.ObjectID, module string, limit int64) ([]common_models.AuditLog, error)
	ListByRecord(ctx context.Context, companyID primitive.ObjectID, module, recordID string) ([]common_models.AuditLog, error)
	EnsureIndexes(ctx context.Context) error
}

type AuditRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAuditRepository(mongodb *database.MongodbDB) AuditRepository {
	return &AuditRepositoryImpl{
		Collection: mongodb.DB.Collection("audit_logs"),
	}
}

func (r *AuditRepositoryImpl) Insert(ctx context.Context, entry *common_models.AuditLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := r.Collection.InsertOne(ctx, entry)
	return err
}

func (r *AuditRepositoryImpl) ListByCompany(ctx context.Context, companyID primitive.ObjectID, module string, limit int64) ([]common_models.AuditLog, error) {
	filter := bson.M{"company_id": companyID}
	if module != "" {
		filter["module"] = module
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit)
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]common_models.AuditLog, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *AuditRepositoryImpl) ListByRecord(ctx context.Context, companyID primitive.ObjectID, module, recordID string) ([]common_models.AuditLog, error) {
	filter := bson.M{"company_id": companyID, "module": module, "record_id": recordID}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]common_models.AuditLog, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *AuditRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "module", Value: 1}, {Key: "record_id", Value: 1}}},
	})
	return err
}
