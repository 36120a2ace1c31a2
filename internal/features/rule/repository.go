package rule

import (
	"context"
	"time"

	"go-expense/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RuleRepository interface {
	Create(ctx context.Context, rule *ApprovalRule) error
	GetByID(ctx context.Context, id string) (*ApprovalRule, error)
	// ListByCompany returns every rule of the company in creation order.
	ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]ApprovalRule, error)
	// ListActiveByCompany returns active rules in creation order, which is
	// the tie-break order the resolver relies on.
	ListActiveByCompany(ctx context.Context, companyID primitive.ObjectID) ([]ApprovalRule, error)
	Update(ctx context.Context, rule *ApprovalRule) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	IncrementUsage(ctx context.Context, id primitive.ObjectID) error
	CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type RuleRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRuleRepository(mongodb *database.MongodbDB) RuleRepository {
	return &RuleRepositoryImpl{
		Collection: mongodb.DB.Collection("approval_rules"),
	}
}

func (r *RuleRepositoryImpl) Create(ctx context.Context, rule *ApprovalRule) error {
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	res, err := r.Collection.InsertOne(ctx, rule)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rule.ID = oid
	}
	return nil
}

func (r *RuleRepositoryImpl) GetByID(ctx context.Context, id string) (*ApprovalRule, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var rule ApprovalRule
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&rule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *RuleRepositoryImpl) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]ApprovalRule, error) {
	return r.list(ctx, bson.M{"company": companyID})
}

func (r *RuleRepositoryImpl) ListActiveByCompany(ctx context.Context, companyID primitive.ObjectID) ([]ApprovalRule, error) {
	return r.list(ctx, bson.M{"company": companyID, "is_active": true})
}

func (r *RuleRepositoryImpl) list(ctx context.Context, filter bson.M) ([]ApprovalRule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rules := make([]ApprovalRule, 0)
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *RuleRepositoryImpl) Update(ctx context.Context, rule *ApprovalRule) error {
	rule.UpdatedAt = time.Now()
	_, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": rule.ID}, rule)
	return err
}

func (r *RuleRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now()}}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *RuleRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

func (r *RuleRepositoryImpl) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$inc": bson.M{"statistics.times_used": 1}}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *RuleRepositoryImpl) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"company": companyID})
}

func (r *RuleRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "company", Value: 1}, {Key: "is_active", Value: 1}, {Key: "priority", Value: -1}}},
		{Keys: bson.D{{Key: "company", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return err
}
