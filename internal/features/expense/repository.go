package expense

import (
	"context"
	"fmt"
	"time"

	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListFilter narrows employee expense queries. Zero values mean "all".
type ListFilter struct {
	Status   common_models.ExpenseStatus
	Category string
	From     *time.Time
	To       *time.Time
	Page     int64
	Limit    int64
}

// CategoryTotal is one row of the expense summary aggregation.
type CategoryTotal struct {
	Category string  `bson:"_id" json:"category"`
	Total    float64 `bson:"total" json:"total"`
	Count    int64   `bson:"count" json:"count"`
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	GetByID(ctx context.Context, id string) (*Expense, error)
	// ApplyWorkflowUpdate persists a decided expense. The filter demands
	// the expense is still pending at the step the decision was computed
	// against, so two racing approvers cannot both win; the loser gets
	// ErrInvalidState.
	ApplyWorkflowUpdate(ctx context.Context, e *Expense, expectedStep int) error
	MarkPaid(ctx context.Context, e *Expense) error
	ListByEmployee(ctx context.Context, employeeID primitive.ObjectID, filter ListFilter) ([]Expense, int64, error)
	// ListPendingForApprover returns pending expenses whose current step
	// names the user directly or via its approver group.
	ListPendingForApprover(ctx context.Context, companyID, userID primitive.ObjectID, allCompany bool) ([]Expense, error)
	AddComment(ctx context.Context, id primitive.ObjectID, comment Comment) error
	ListRecurringDue(ctx context.Context, now time.Time) ([]Expense, error)
	UpdateRecurringNextDue(ctx context.Context, id primitive.ObjectID, next *time.Time) error
	SummaryByCategory(ctx context.Context, companyID primitive.ObjectID, employeeID *primitive.ObjectID, from, to *time.Time) ([]CategoryTotal, error)
	CountByStatus(ctx context.Context, companyID primitive.ObjectID) (map[common_models.ExpenseStatus]int64, error)
	ListByCompany(ctx context.Context, companyID primitive.ObjectID, filter ListFilter) ([]Expense, int64, error)
	EnsureIndexes(ctx context.Context) error
}

type ExpenseRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewExpenseRepository(mongodb *database.MongodbDB) ExpenseRepository {
	return &ExpenseRepositoryImpl{
		Collection: mongodb.DB.Collection("expenses"),
	}
}

func (r *ExpenseRepositoryImpl) Create(ctx context.Context, expense *Expense) error {
	_, err := r.Collection.InsertOne(ctx, expense)
	return err
}

func (r *ExpenseRepositoryImpl) GetByID(ctx context.Context, id string) (*Expense, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var expense Expense
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&expense)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &expense, nil
}

func (r *ExpenseRepositoryImpl) ApplyWorkflowUpdate(ctx context.Context, e *Expense, expectedStep int) error {
	filter := bson.M{
		"_id":                            e.ID,
		"status":                         common_models.ExpenseStatusPending,
		"approval_workflow.current_step": expectedStep,
	}
	update := bson.M{"$set": bson.M{
		"status":            e.Status,
		"approval_workflow": e.Workflow,
		"comments":          e.Comments,
		"rejection_reason":  e.RejectionReason,
		"approved_at":       e.ApprovedAt,
		"rejected_at":       e.RejectedAt,
		"updated_at":        e.UpdatedAt,
	}}
	res, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("expense was decided concurrently: %w", apperr.ErrInvalidState)
	}
	return nil
}

func (r *ExpenseRepositoryImpl) MarkPaid(ctx context.Context, e *Expense) error {
	filter := bson.M{"_id": e.ID, "status": common_models.ExpenseStatusApproved}
	update := bson.M{"$set": bson.M{
		"status":               common_models.ExpenseStatusPaid,
		"paid_at":              e.PaidAt,
		"reimbursement_method": e.ReimbursementMethod,
		"reimbursement_date":   e.ReimbursementDate,
		"updated_at":           e.UpdatedAt,
	}}
	res, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("expense is no longer approved: %w", apperr.ErrInvalidState)
	}
	return nil
}

func (r *ExpenseRepositoryImpl) ListByEmployee(ctx context.Context, employeeID primitive.ObjectID, filter ListFilter) ([]Expense, int64, error) {
	query := bson.M{"employee": employeeID}
	applyListFilter(query, filter)
	return r.pagedList(ctx, query, filter)
}

func (r *ExpenseRepositoryImpl) ListByCompany(ctx context.Context, companyID primitive.ObjectID, filter ListFilter) ([]Expense, int64, error) {
	query := bson.M{"company": companyID}
	applyListFilter(query, filter)
	return r.pagedList(ctx, query, filter)
}

func applyListFilter(query bson.M, filter ListFilter) {
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.From != nil || filter.To != nil {
		dateRange := bson.M{}
		if filter.From != nil {
			dateRange["$gte"] = *filter.From
		}
		if filter.To != nil {
			dateRange["$lte"] = *filter.To
		}
		query["date"] = dateRange
	}
}

func (r *ExpenseRepositoryImpl) pagedList(ctx context.Context, query bson.M, filter ListFilter) ([]Expense, int64, error) {
	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 1000 {
		limit = 1000
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	expenses := make([]Expense, 0)
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

func (r *ExpenseRepositoryImpl) ListPendingForApprover(ctx context.Context, companyID, userID primitive.ObjectID, allCompany bool) ([]Expense, error) {
	query := bson.M{
		"company": companyID,
		"status":  common_models.ExpenseStatusPending,
	}
	if !allCompany {
		query["approval_workflow.steps"] = bson.M{"$elemMatch": bson.M{
			"status": common_models.StepStatusPending,
			"$or": bson.A{
				bson.M{"approver": userID},
				bson.M{"approver_group": userID},
			},
		}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var expenses []Expense
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *ExpenseRepositoryImpl) AddComment(ctx context.Context, id primitive.ObjectID, comment Comment) error {
	update := bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("expense %s: %w", id.Hex(), apperr.ErrNotFound)
	}
	return nil
}

func (r *ExpenseRepositoryImpl) ListRecurringDue(ctx context.Context, now time.Time) ([]Expense, error) {
	query := bson.M{
		"is_recurring":                    true,
		"status":                          common_models.ExpenseStatusApproved,
		"recurring_details.next_due_date": bson.M{"$lte": now},
	}
	cursor, err := r.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var expenses []Expense
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *ExpenseRepositoryImpl) UpdateRecurringNextDue(ctx context.Context, id primitive.ObjectID, next *time.Time) error {
	update := bson.M{"$set": bson.M{
		"recurring_details.next_due_date": next,
		"updated_at":                      time.Now(),
	}}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *ExpenseRepositoryImpl) SummaryByCategory(ctx context.Context, companyID primitive.ObjectID, employeeID *primitive.ObjectID, from, to *time.Time) ([]CategoryTotal, error) {
	match := bson.M{"company": companyID}
	if employeeID != nil {
		match["employee"] = *employeeID
	}
	if from != nil || to != nil {
		dateRange := bson.M{}
		if from != nil {
			dateRange["$gte"] = *from
		}
		if to != nil {
			dateRange["$lte"] = *to
		}
		match["date"] = dateRange
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"total": bson.M{"$sum": "$converted_amount"},
			"count": bson.M{"$sum": 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"total": -1}}},
	}
	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []CategoryTotal
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ExpenseRepositoryImpl) CountByStatus(ctx context.Context, companyID primitive.ObjectID) (map[common_models.ExpenseStatus]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"company": companyID}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status common_models.ExpenseStatus `bson:"_id"`
		Count  int64                       `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[common_models.ExpenseStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *ExpenseRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "employee", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "company", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "approval_workflow.steps.approver", Value: 1}}},
		{Keys: bson.D{{Key: "is_recurring", Value: 1}, {Key: "recurring_details.next_due_date", Value: 1}}},
	}
	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}
