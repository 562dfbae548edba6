package repository

import (
	"context"
	stderrors "errors"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"jasahub/internal/domain/entity"
	"jasahub/internal/domain/repository"
	"jasahub/pkg/errors"
)

type firestoreDisputeRepository struct {
	client *firestore.Client
}

func NewFirestoreDisputeRepository(client *firestore.Client) repository.DisputeRepository {
	return &firestoreDisputeRepository{
		client: client,
	}
}

func (r *firestoreDisputeRepository) Create(ctx context.Context, dispute *entity.Dispute) error {
	if dispute.ID == "" {
		dispute.ID = uuid.New().String()
	}

	if dispute.CreatedAt.IsZero() {
		now := time.Now()
		dispute.CreatedAt = now
		dispute.UpdatedAt = now
	}
	dispute.Version = 1

	_, err := r.client.Collection("disputes").Doc(dispute.ID).Create(ctx, dispute)
	if err != nil {
		return errors.Internal("Failed to create dispute", err)
	}

	return nil
}

func (r *firestoreDisputeRepository) GetByID(ctx context.Context, id string) (*entity.Dispute, error) {
	doc, err := r.client.Collection("disputes").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Dispute", err)
		}
		return nil, errors.Internal("Failed to get dispute", err)
	}

	var dispute entity.Dispute
	if err := doc.DataTo(&dispute); err != nil {
		return nil, errors.Internal("Failed to parse dispute data", err)
	}

	return &dispute, nil
}

// UpdateWithVersion is the compare-and-set write behind every lifecycle
// transition: the stored version must still equal what the caller observed
// at load time, otherwise the command raced another writer and loses.
func (r *firestoreDisputeRepository) UpdateWithVersion(ctx context.Context, dispute *entity.Dispute, expectedVersion int64) error {
	docRef := r.client.Collection("disputes").Doc(dispute.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Dispute", err)
			}
			return err
		}

		var stored entity.Dispute
		if err := doc.DataTo(&stored); err != nil {
			return err
		}

		if stored.Version != expectedVersion {
			return errors.ConcurrentModification("Dispute")
		}

		dispute.Version = expectedVersion + 1
		return tx.Set(docRef, dispute)
	})

	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return appErr
		}
		return errors.Internal("Failed to update dispute", err)
	}

	return nil
}

func (r *firestoreDisputeRepository) List(ctx context.Context, filter repository.DisputeFilter, limit, offset int) ([]*entity.Dispute, int64, error) {
	collection := r.client.Collection("disputes")
	query := collection.Query

	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}

	// "Party" matches either side, which Firestore cannot express in one
	// query; run both sides and merge.
	if filter.Party != "" {
		return r.listByParty(ctx, filter, limit, offset)
	}

	query = query.OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count disputes", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var disputes []*entity.Dispute

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate disputes", err)
		}

		var dispute entity.Dispute
		if err := doc.DataTo(&dispute); err != nil {
			return nil, 0, errors.Internal("Failed to parse dispute data", err)
		}
		disputes = append(disputes, &dispute)
	}

	return disputes, total, nil
}

func (r *firestoreDisputeRepository) listByParty(ctx context.Context, filter repository.DisputeFilter, limit, offset int) ([]*entity.Dispute, int64, error) {
	collection := r.client.Collection("disputes")
	merged := make(map[string]*entity.Dispute)

	for _, field := range []string{"filedBy", "filedAgainst"} {
		query := collection.Where(field, "==", filter.Party)
		if filter.Status != "" {
			query = query.Where("status", "==", string(filter.Status))
		}

		iter := query.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, 0, errors.Internal("Failed to iterate disputes", err)
			}

			var dispute entity.Dispute
			if err := doc.DataTo(&dispute); err != nil {
				return nil, 0, errors.Internal("Failed to parse dispute data", err)
			}
			merged[dispute.ID] = &dispute
		}
	}

	disputes := make([]*entity.Dispute, 0, len(merged))
	for _, d := range merged {
		disputes = append(disputes, d)
	}
	sort.Slice(disputes, func(i, j int) bool {
		return disputes[i].CreatedAt.After(disputes[j].CreatedAt)
	})

	total := int64(len(disputes))
	if offset > 0 {
		if offset >= len(disputes) {
			return nil, total, nil
		}
		disputes = disputes[offset:]
	}
	if limit > 0 && limit < len(disputes) {
		disputes = disputes[:limit]
	}

	return disputes, total, nil
}

// CreateMessage appends the message and bumps the parent dispute's version
// in the same Firestore transaction, so an append always conflicts with a
// concurrent status change instead of silently interleaving.
func (r *firestoreDisputeRepository) CreateMessage(ctx context.Context, message *entity.DisputeMessage, expectedVersion int64) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	disputeRef := r.client.Collection("disputes").Doc(message.DisputeID)
	messageRef := r.client.Collection("dispute_messages").Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(disputeRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Dispute", err)
			}
			return err
		}

		var dispute entity.Dispute
		if err := doc.DataTo(&dispute); err != nil {
			return err
		}

		if dispute.Version != expectedVersion {
			return errors.ConcurrentModification("Dispute")
		}

		dispute.Version = expectedVersion + 1
		dispute.UpdatedAt = time.Now()

		if err := tx.Set(disputeRef, &dispute); err != nil {
			return err
		}
		return tx.Create(messageRef, message)
	})

	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return appErr
		}
		return errors.Internal("Failed to create dispute message", err)
	}

	return nil
}

func (r *firestoreDisputeRepository) ListMessagesByDisputeID(ctx context.Context, disputeID string) ([]*entity.DisputeMessage, error) {
	query := r.client.Collection("dispute_messages").
		Where("disputeId", "==", disputeID).
		OrderBy("createdAt", firestore.Asc)

	iter := query.Documents(ctx)
	var messages []*entity.DisputeMessage

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate dispute messages", err)
		}

		var message entity.DisputeMessage
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse dispute message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreDisputeRepository) CreateLog(ctx context.Context, log *entity.DisputeLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	_, err := r.client.Collection("dispute_logs").Doc(log.ID).Set(ctx, log)
	if err != nil {
		return errors.Internal("Failed to create dispute log", err)
	}

	return nil
}

func (r *firestoreDisputeRepository) ListLogsByDisputeID(ctx context.Context, disputeID string) ([]*entity.DisputeLog, error) {
	query := r.client.Collection("dispute_logs").
		Where("disputeId", "==", disputeID).
		OrderBy("createdAt", firestore.Asc)

	iter := query.Documents(ctx)
	var logs []*entity.DisputeLog

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate dispute logs", err)
		}

		var log entity.DisputeLog
		if err := doc.DataTo(&log); err != nil {
			return nil, errors.Internal("Failed to parse dispute log data", err)
		}
		logs = append(logs, &log)
	}

	return logs, nil
}
