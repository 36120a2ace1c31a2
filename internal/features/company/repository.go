package company

import (
	"context"
	"time"

	"go-expense/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *Company) error
	GetByID(ctx context.Context, id string) (*Company, error)
	SetAdminUser(ctx context.Context, id string, adminID primitive.ObjectID) error
	UpdateSettings(ctx context.Context, id string, settings Settings) error
}

type CompanyRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewCompanyRepository(mongodb *database.MongodbDB) CompanyRepository {
	return &CompanyRepositoryImpl{
		Collection: mongodb.DB.Collection("companies"),
	}
}

func (r *CompanyRepositoryImpl) Create(ctx context.Context, company *Company) error {
	_, err := r.Collection.InsertOne(ctx, company)
	return err
}

func (r *CompanyRepositoryImpl) GetByID(ctx context.Context, id string) (*Company, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var company Company
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&company)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

func (r *CompanyRepositoryImpl) SetAdminUser(ctx context.Context, id string, adminID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"admin_user": adminID, "updated_at": time.Now()}}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *CompanyRepositoryImpl) UpdateSettings(ctx context.Context, id string, settings Settings) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"settings": settings, "updated_at": time.Now()}}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}
