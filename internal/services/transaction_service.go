package services

import (
	"context"

	"sensus_chatbot_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TransactionService is the purchase ledger. Every transaction walks the
// state machine pending -> completed | failed; both outcomes are terminal,
// and completion is the only operation that ever credits balance.
type TransactionService struct {
	store LedgerStore
}

func NewTransactionService(store LedgerStore) *TransactionService {
	return &TransactionService{store: store}
}

// Create records a purchase intent against an active package, snapshotting
// the package price into the transaction so later catalog edits cannot
// change what was agreed.
func (s *TransactionService) Create(ctx context.Context, userID, packageID uuid.UUID) (*models.Transaction, error) {
	pkg, err := s.store.GetActivePackage(packageID)
	if err != nil {
		return nil, ErrPackageNotFound
	}
	t := &models.Transaction{
		UserID:    userID,
		PackageID: packageID,
		Amount:    pkg.Price,
		Status:    models.TransactionPending,
	}
	if err := s.store.CreateTransaction(t); err != nil {
		return nil, err
	}
	return t, nil
}

// SettlementResult reports the outcome of a completed settlement.
type SettlementResult struct {
	MessagesAdded int
	NewBalance    int
}

// Complete settles a pending transaction: the status flip and the balance
// credit happen inside one store transaction, with the transaction row
// locked so concurrent completions of the same id cannot both observe
// pending. actorID scopes the lookup to the caller's own transactions;
// asAdmin bypasses that ownership check but keeps the pending-only rule.
func (s *TransactionService) Complete(ctx context.Context, transactionID, actorID uuid.UUID, asAdmin bool) (*SettlementResult, error) {
	var result SettlementResult
	err := s.store.InTransaction(ctx, func(store LedgerStore) error {
		t, err := store.GetTransactionForUpdate(transactionID)
		if err != nil {
			return ErrTransactionNotFound
		}
		if !asAdmin && t.UserID != actorID {
			return ErrTransactionNotFound
		}
		if t.Status != models.TransactionPending {
			return ErrAlreadyProcessed
		}
		pkg, err := store.GetPackage(t.PackageID)
		if err != nil {
			return err
		}
		if err := store.MarkTransaction(transactionID, models.TransactionCompleted); err != nil {
			return err
		}
		newBalance, err := store.AddBalanceForUpdate(t.UserID, pkg.MessageCount)
		if err != nil {
			return err
		}
		result = SettlementResult{MessagesAdded: pkg.MessageCount, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("transaction_id", transactionID.String()).
		Int("messages_added", result.MessagesAdded).
		Msg("Transaction settled")
	return &result, nil
}

// Cancel moves a pending transaction to failed with no balance effect. Same
// ownership and pending-only preconditions as Complete.
func (s *TransactionService) Cancel(ctx context.Context, transactionID, actorID uuid.UUID, asAdmin bool) error {
	return s.store.InTransaction(ctx, func(store LedgerStore) error {
		t, err := store.GetTransactionForUpdate(transactionID)
		if err != nil {
			return ErrTransactionNotFound
		}
		if !asAdmin && t.UserID != actorID {
			return ErrTransactionNotFound
		}
		if t.Status != models.TransactionPending {
			return ErrAlreadyProcessed
		}
		return store.MarkTransaction(transactionID, models.TransactionFailed)
	})
}

func (s *TransactionService) ListByUser(userID uuid.UUID) ([]models.Transaction, error) {
	return s.store.ListTransactionsByUser(userID)
}

func (s *TransactionService) ListAll() ([]models.Transaction, error) {
	return s.store.ListAllTransactions()
}

func (s *TransactionService) Get(id uuid.UUID) (*models.Transaction, error) {
	t, err := s.store.GetTransaction(id)
	if err != nil {
		return nil, ErrTransactionNotFound
	}
	return t, nil
}
