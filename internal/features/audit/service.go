package audit

import (
	"context"

	common_models "go-expense/internal/common/models"
	"go-expense/internal/features/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type AuditService interface {
	// Record writes one audit entry. It never fails the calling operation.
	Record(ctx context.Context, companyID primitive.ObjectID, action common_models.AuditAction, module, recordID, actorID string, changes map[string]common_models.Change)
	List(ctx context.Context, companyID string, module string, limit int64) ([]common_models.AuditLog, error)
	History(ctx context.Context, companyID, module, recordID string) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo   AuditRepository
	Users  user.UserRepository
	Logger *zap.Logger
}

func NewAuditService(repo AuditRepository, users user.UserRepository, logger *zap.Logger) AuditService {
	return &AuditServiceImpl{Repo: repo, Users: users, Logger: logger}
}

func (s *AuditServiceImpl) Record(ctx context.Context, companyID primitive.ObjectID, action common_models.AuditAction, module, recordID, actorID string, changes map[string]common_models.Change) {
	entry := &common_models.AuditLog{
		CompanyID: companyID,
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
	}
	if err := s.Repo.Insert(ctx, entry); err != nil {
		s.Logger.Warn("failed to write audit entry",
			zap.String("module", module),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}

func (s *AuditServiceImpl) List(ctx context.Context, companyID string, module string, limit int64) ([]common_models.AuditLog, error) {
	cid, err := primitive.ObjectIDFromHex(companyID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Repo.ListByCompany(ctx, cid, module, limit)
	if err != nil {
		return nil, err
	}
	return s.populateActors(ctx, entries)
}

func (s *AuditServiceImpl) History(ctx context.Context, companyID, module, recordID string) ([]common_models.AuditLog, error) {
	cid, err := primitive.ObjectIDFromHex(companyID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Repo.ListByRecord(ctx, cid, module, recordID)
	if err != nil {
		return nil, err
	}
	return s.populateActors(ctx, entries)
}

func (s *AuditServiceImpl) populateActors(ctx context.Context, entries []common_models.AuditLog) ([]common_models.AuditLog, error) {
	ids := make([]primitive.ObjectID, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.ActorID] {
			continue
		}
		seen[e.ActorID] = true
		if oid, err := primitive.ObjectIDFromHex(e.ActorID); err == nil {
			ids = append(ids, oid)
		}
	}
	if len(ids) == 0 {
		return entries, nil
	}

	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		// actor names are cosmetic
		s.Logger.Warn("failed to resolve audit actors", zap.Error(err))
		return entries, nil
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID.Hex()] = u.Name
	}
	for i := range entries {
		entries[i].ActorName = names[entries[i].ActorID]
	}
	return entries, nil
}
