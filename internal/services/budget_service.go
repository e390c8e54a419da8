// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

var (
	// ErrCategoryInUse is returned when deleting a category that still has items.
	ErrCategoryInUse = errors.New("category still has budget items")
)

// ChangePublisher publishes row change notifications. *amqp.Client satisfies it.
type ChangePublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// BudgetService orchestrates the write side: validation, persistence and
// change notifications.
type BudgetService struct {
	store     storage.Store
	publisher ChangePublisher
}

func NewBudgetService(store storage.Store, publisher ChangePublisher) *BudgetService {
	return &BudgetService{
		store:     store,
		publisher: publisher,
	}
}

func (s *BudgetService) GetProfile(ctx context.Context) (core.IncomeProfile, error) {
	return s.store.GetIncomeProfile(ctx)
}

func (s *BudgetService) UpdateProfile(ctx context.Context, p core.IncomeProfile) error {
	if p.YearlySalary < 0 {
		return core.ErrNegativeAmount
	}
	if !p.PayFrequency.Valid() {
		p.PayFrequency = core.Monthly
	}
	if err := s.store.UpdateIncomeProfile(ctx, p); err != nil {
		return fmt.Errorf("update income profile: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("income_profile", "1", amqp.ActionUpdated))
	return nil
}

func (s *BudgetService) CreateTaxRate(ctx context.Context, name string, percent float64) (core.TaxRate, error) {
	rate := core.TaxRate{
		ID:      uuid.NewString(),
		Name:    name,
		Percent: percent,
	}
	if err := rate.Validate(); err != nil {
		return core.TaxRate{}, err
	}
	if err := s.store.CreateTaxRate(ctx, rate); err != nil {
		return core.TaxRate{}, fmt.Errorf("create tax rate: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("tax_rate", rate.ID, amqp.ActionCreated))
	return rate, nil
}

func (s *BudgetService) UpdateTaxRate(ctx context.Context, rate core.TaxRate) error {
	if err := rate.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateTaxRate(ctx, rate); err != nil {
		return fmt.Errorf("update tax rate: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("tax_rate", rate.ID, amqp.ActionUpdated))
	return nil
}

func (s *BudgetService) DeleteTaxRate(ctx context.Context, id string) error {
	if err := s.store.DeleteTaxRate(ctx, id); err != nil {
		return fmt.Errorf("delete tax rate: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("tax_rate", id, amqp.ActionDeleted))
	return nil
}

func (s *BudgetService) ListTaxRates(ctx context.Context) ([]core.TaxRate, error) {
	return s.store.ListTaxRates(ctx)
}

func (s *BudgetService) CreateCategory(ctx context.Context, name string) (core.BudgetCategory, error) {
	cat := core.BudgetCategory{
		ID:   uuid.NewString(),
		Name: name,
	}
	if err := cat.Validate(); err != nil {
		return core.BudgetCategory{}, err
	}
	if err := s.store.CreateCategory(ctx, cat); err != nil {
		return core.BudgetCategory{}, fmt.Errorf("create category: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("category", cat.ID, amqp.ActionCreated))
	return cat, nil
}

// DeleteCategory removes an empty category. Categories that still have budget
// items, active or not, cannot be deleted.
func (s *BudgetService) DeleteCategory(ctx context.Context, id string) error {
	n, err := s.store.CountItemsForCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count items for category: %w", err)
	}
	if n > 0 {
		return ErrCategoryInUse
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("category", id, amqp.ActionDeleted))
	return nil
}

func (s *BudgetService) ListCategories(ctx context.Context) ([]core.BudgetCategory, error) {
	return s.store.ListCategories(ctx)
}

func (s *BudgetService) CreateItem(ctx context.Context, name string, budgetAmount float64, categoryID string) (core.BudgetItem, error) {
	item := core.BudgetItem{
		ID:           uuid.NewString(),
		Name:         name,
		BudgetAmount: budgetAmount,
		CategoryID:   categoryID,
		Active:       true,
	}
	if err := item.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	if err := s.categoryExists(ctx, categoryID); err != nil {
		return core.BudgetItem{}, err
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return core.BudgetItem{}, fmt.Errorf("create budget item: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("budget_item", item.ID, amqp.ActionCreated))
	return item, nil
}

func (s *BudgetService) UpdateItem(ctx context.Context, item core.BudgetItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if err := s.categoryExists(ctx, item.CategoryID); err != nil {
		return err
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return fmt.Errorf("update budget item: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("budget_item", item.ID, amqp.ActionUpdated))
	return nil
}

// DeleteItem removes a budget item. Items referenced by purchases are
// deactivated instead so historical summaries stay intact.
func (s *BudgetService) DeleteItem(ctx context.Context, id string) error {
	n, err := s.store.CountPurchasesForItem(ctx, id)
	if err != nil {
		return fmt.Errorf("count purchases for item: %w", err)
	}
	if n > 0 {
		if err := s.store.DeactivateItem(ctx, id); err != nil {
			return fmt.Errorf("deactivate budget item: %w", err)
		}
		s.publish(ctx, amqp.NewChangeMessage("budget_item", id, amqp.ActionUpdated))
		return nil
	}
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete budget item: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("budget_item", id, amqp.ActionDeleted))
	return nil
}

func (s *BudgetService) ListItems(ctx context.Context, includeInactive bool) ([]core.BudgetItem, error) {
	return s.store.ListItems(ctx, includeInactive)
}

func (s *BudgetService) CreatePurchase(ctx context.Context, itemName string, cost float64, ts time.Time, budgetItemID string) (core.Purchase, error) {
	p := core.Purchase{
		ID:           uuid.NewString(),
		ItemName:     itemName,
		Cost:         cost,
		Timestamp:    ts.UTC(),
		BudgetItemID: budgetItemID,
	}
	if err := p.Validate(); err != nil {
		return core.Purchase{}, err
	}
	if budgetItemID != "" {
		if _, err := s.store.GetItem(ctx, budgetItemID); err != nil {
			return core.Purchase{}, fmt.Errorf("get budget item: %w", err)
		}
	}
	if err := s.store.CreatePurchase(ctx, p); err != nil {
		return core.Purchase{}, fmt.Errorf("create purchase: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("purchase", p.ID, amqp.ActionCreated).
		WithMonth(p.Timestamp.Year(), p.Timestamp.Month()))
	return p, nil
}

// DeletePurchase soft deletes; the row stays restorable.
func (s *BudgetService) DeletePurchase(ctx context.Context, id string) error {
	p, err := s.store.GetPurchase(ctx, id)
	if err != nil {
		return fmt.Errorf("get purchase: %w", err)
	}
	if err := s.store.SetPurchaseDeleted(ctx, id, true); err != nil {
		return fmt.Errorf("soft delete purchase: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("purchase", id, amqp.ActionDeleted).
		WithMonth(p.Timestamp.Year(), p.Timestamp.Month()))
	return nil
}

func (s *BudgetService) RestorePurchase(ctx context.Context, id string) error {
	p, err := s.store.GetPurchase(ctx, id)
	if err != nil {
		return fmt.Errorf("get purchase: %w", err)
	}
	if err := s.store.SetPurchaseDeleted(ctx, id, false); err != nil {
		return fmt.Errorf("restore purchase: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("purchase", id, amqp.ActionRestored).
		WithMonth(p.Timestamp.Year(), p.Timestamp.Month()))
	return nil
}

// ListPurchases returns the non-deleted purchases of one calendar month, or
// all purchases when year is zero.
func (s *BudgetService) ListPurchases(ctx context.Context, year int, month time.Month) ([]core.Purchase, error) {
	if year == 0 {
		return s.store.ListPurchases(ctx, time.Time{}, time.Time{}, false)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return s.store.ListPurchases(ctx, start, end, false)
}

func (s *BudgetService) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	a.ID = uuid.NewString()
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("account", a.ID, amqp.ActionCreated))
	return a, nil
}

func (s *BudgetService) UpdateAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateAccount(ctx, a); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("account", a.ID, amqp.ActionUpdated))
	return nil
}

func (s *BudgetService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	s.publish(ctx, amqp.NewChangeMessage("account", id, amqp.ActionDeleted))
	return nil
}

func (s *BudgetService) GetAccount(ctx context.Context, id string) (core.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *BudgetService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *BudgetService) categoryExists(ctx context.Context, id string) error {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if c.ID == id {
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", id, storage.ErrNotFound)
}

// publish sends a change notification. Failures are logged, not propagated:
// the row is already saved locally.
func (s *BudgetService) publish(ctx context.Context, msg *amqp.ChangeMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"entity", msg.Entity,
			"id", msg.ID,
			"action", msg.Action,
			"error", err)
	}
}

func (s *BudgetService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if closer, ok := s.publisher.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close budget service: %v", errs)
	}

	return nil
}
