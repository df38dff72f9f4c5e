// Package mongo provides the MongoDB read-model repository. The projection
// is fed by the settlement event pipeline and only ever queried; the write
// side never reads it back.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/investpro/ledger/internal/domain/history"
	"github.com/investpro/ledger/internal/domain/shared"
)

const (
	// HistoryCollectionName is the name of the projection collection in MongoDB
	HistoryCollectionName = "transaction_history"
	// HoldingsCollectionName is the name of the plan holdings collection
	HoldingsCollectionName = "plan_holdings"
)

// HistoryRepository implements the history.Repository interface for MongoDB
type HistoryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewHistoryRepository creates a new MongoDB history repository
func NewHistoryRepository(logger *slog.Logger, db *mongo.Database) history.Repository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the entry keyed by transaction ID. Replaying the same event
// or projecting the finalization after the initiation both converge on one
// document per transaction.
func (r *HistoryRepository) Upsert(ctx context.Context, entry *history.Entry) error {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"transaction_id": entry.TransactionID}
	opts := options.Replace().SetUpsert(true)

	_, err := collection.ReplaceOne(ctx, filter, entry, opts)
	if err != nil {
		r.logger.Error("Failed to upsert history entry",
			"transaction_id", entry.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to upsert history entry: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a projection entry by its transaction ID.
// Returns ErrEntryNotFound if no entry exists for the given transaction.
func (r *HistoryRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*history.Entry, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	var entry history.Entry
	err := collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, history.ErrEntryNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get history entry",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}

	return &entry, nil
}

// GetByWalletID retrieves paginated projection entries for a wallet.
// Results are sorted by creation time in descending order (newest first).
func (r *HistoryRepository) GetByWalletID(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]*history.Entry, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"wallet_id": walletID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}). // Sort by created_at in descending order
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get history entries",
			"wallet_id", walletID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get history entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*history.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode history entries",
			"wallet_id", walletID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode history entries: %w", err)
	}

	return entries, nil
}

// CountByWalletID counts the total number of projection entries for a wallet
func (r *HistoryRepository) CountByWalletID(ctx context.Context, walletID uuid.UUID) (int64, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"wallet_id": walletID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count history entries",
			"wallet_id", walletID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count history entries: %w", err)
	}

	return count, nil
}

// GetWalletActivity sums completed movements for one wallet since the given
// instant, split by kind. Amounts come back absolute.
func (r *HistoryRepository) GetWalletActivity(ctx context.Context, walletID uuid.UUID, since time.Time) (*history.WalletActivity, error) {
	collection := r.db.Collection(HistoryCollectionName)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"wallet_id":  walletID,
			"status":     shared.TransactionStatusCompleted,
			"created_at": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"deposited": sumForKind(shared.TransactionKindDeposit),
			"invested":  sumForKind(shared.TransactionKindInvestment),
			"withdrawn": sumForKind(shared.TransactionKindWithdrawal),
			"earned":    sumPositiveAmounts(),
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate wallet activity",
			"wallet_id", walletID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to aggregate wallet activity: %w", err)
	}
	defer cursor.Close(ctx)

	var results []history.WalletActivity
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode wallet activity: %w", err)
	}

	if len(results) == 0 {
		return &history.WalletActivity{}, nil
	}
	return &results[0], nil
}

// sumForKind builds a conditional absolute-amount accumulator for one kind
func sumForKind(kind shared.TransactionKind) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$kind", kind}},
		bson.M{"$abs": "$amount"},
		0,
	}}}
}

// sumPositiveAmounts accumulates credits only. Debits carry a negative
// amount and must not count toward earnings, however the kind is labeled.
func sumPositiveAmounts() bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{
		bson.M{"$gt": bson.A{"$amount", 0}},
		"$amount",
		0,
	}}}
}

// GetGlobalTotals aggregates completed volume and moderation queue sizes
// across all wallets in a single group-by pass
func (r *HistoryRepository) GetGlobalTotals(ctx context.Context) (*history.GlobalTotals, error) {
	collection := r.db.Collection(HistoryCollectionName)

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"kind": "$kind", "status": "$status"},
			"total": bson.M{"$sum": bson.M{"$abs": "$amount"}},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate global totals", "error", err)
		return nil, fmt.Errorf("failed to aggregate global totals: %w", err)
	}
	defer cursor.Close(ctx)

	var buckets []struct {
		ID struct {
			Kind   shared.TransactionKind   `bson:"kind"`
			Status shared.TransactionStatus `bson:"status"`
		} `bson:"_id"`
		Total int64 `bson:"total"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, fmt.Errorf("failed to decode global totals: %w", err)
	}

	totals := &history.GlobalTotals{}
	for _, b := range buckets {
		switch {
		case b.ID.Status == shared.TransactionStatusCompleted && b.ID.Kind == shared.TransactionKindDeposit:
			totals.Deposited = b.Total
		case b.ID.Status == shared.TransactionStatusCompleted && b.ID.Kind == shared.TransactionKindWithdrawal:
			totals.Withdrawn = b.Total
		case b.ID.Status == shared.TransactionStatusCompleted && b.ID.Kind == shared.TransactionKindInvestment:
			totals.Invested = b.Total
		case b.ID.Status == shared.TransactionStatusPending && b.ID.Kind == shared.TransactionKindDeposit:
			totals.PendingDeposits = b.Count
		case b.ID.Status == shared.TransactionStatusPending && b.ID.Kind == shared.TransactionKindWithdrawal:
			totals.PendingWithdrawals = b.Count
		}
	}

	return totals, nil
}

// AddPlanHolding records a plan annotation for a wallet. Keyed by wallet and
// plan so a replayed investment event does not duplicate the holding.
func (r *HistoryRepository) AddPlanHolding(ctx context.Context, holding *history.PlanHolding) error {
	collection := r.db.Collection(HoldingsCollectionName)

	filter := bson.M{"wallet_id": holding.WalletID, "plan_id": holding.PlanID}
	opts := options.Replace().SetUpsert(true)

	_, err := collection.ReplaceOne(ctx, filter, holding, opts)
	if err != nil {
		r.logger.Error("Failed to add plan holding",
			"wallet_id", holding.WalletID.String(),
			"plan_id", holding.PlanID,
			"error", err)
		return fmt.Errorf("failed to add plan holding: %w", err)
	}

	return nil
}

// GetPlanHoldings lists the plan annotations attached to a wallet,
// most recent first
func (r *HistoryRepository) GetPlanHoldings(ctx context.Context, walletID uuid.UUID) ([]*history.PlanHolding, error) {
	collection := r.db.Collection(HoldingsCollectionName)

	filter := bson.M{"wallet_id": walletID}
	opts := options.Find().SetSort(bson.M{"acquired_at": -1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get plan holdings",
			"wallet_id", walletID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get plan holdings: %w", err)
	}
	defer cursor.Close(ctx)

	var holdings []*history.PlanHolding
	if err := cursor.All(ctx, &holdings); err != nil {
		return nil, fmt.Errorf("failed to decode plan holdings: %w", err)
	}

	return holdings, nil
}
