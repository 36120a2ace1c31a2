package user

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

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]User, error)
	ListByCompanyAndRole(ctx context.Context, companyID primitive.ObjectID, role common_models.Role) ([]User, error)
	UpdateRole(ctx context.Context, id string, role common_models.Role) error
	UpdateStatus(ctx context.Context, id string, isActive bool) error
	AddDirectReport(ctx context.Context, managerID, reportID primitive.ObjectID) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	CountByCompany(ctx context.Context, companyID primitive.ObjectID, activeOnly bool) (int64, error)
	CountByRole(ctx context.Context, companyID primitive.ObjectID) (map[common_models.Role]int64, error)
	EnsureIndexes(ctx context.Context) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *User) error {
	_, err := r.Collection.InsertOne(ctx, user)
	return err
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var user User
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]User, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var users []User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "role", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"company": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var users []User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) ListByCompanyAndRole(ctx context.Context, companyID primitive.ObjectID, role common_models.Role) ([]User, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"company": companyID, "role": role})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var users []User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) UpdateRole(ctx context.Context, id string, role common_models.Role) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"role": role, "updated_at": time.Now()}}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *UserRepositoryImpl) UpdateStatus(ctx context.Context, id string, isActive bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"is_active": isActive, "updated_at": time.Now()}}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *UserRepositoryImpl) AddDirectReport(ctx context.Context, managerID, reportID primitive.ObjectID) error {
	update := bson.M{"$addToSet": bson.M{"direct_reports": reportID}}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": managerID}, update)
	return err
}

func (r *UserRepositoryImpl) UpdateLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"last_login": at}}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *UserRepositoryImpl) CountByCompany(ctx context.Context, companyID primitive.ObjectID, activeOnly bool) (int64, error) {
	filter := bson.M{"company": companyID}
	if activeOnly {
		filter["is_active"] = true
	}
	return r.Collection.CountDocuments(ctx, filter)
}

func (r *UserRepositoryImpl) CountByRole(ctx context.Context, companyID primitive.ObjectID) (map[common_models.Role]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"company": companyID}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Role  common_models.Role `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[common_models.Role]int64, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.Count
	}
	return counts, nil
}

func (r *UserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "company", Value: 1}, {Key: "role", Value: 1}}},
	}
	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}
