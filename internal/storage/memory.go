package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"bilancio/internal/core"
)

// MemoryStore keeps everything in process memory behind a single mutex.
// It backs the memory data backend and the test suites.
type MemoryStore struct {
	mu sync.RWMutex

	profile    core.IncomeProfile
	taxRates   map[string]core.TaxRate
	taxOrder   []string
	categories map[string]core.BudgetCategory
	items      map[string]core.BudgetItem
	purchases  map[string]core.Purchase
	accounts   map[string]core.Account
	summaries  map[monthKey]MonthSummary
	snapshots  []NetWorthSnapshot
	nextSnapID int64
}

type monthKey struct {
	year  int
	month time.Month
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profile:    core.IncomeProfile{PayFrequency: core.Monthly},
		taxRates:   make(map[string]core.TaxRate),
		categories: make(map[string]core.BudgetCategory),
		items:      make(map[string]core.BudgetItem),
		purchases:  make(map[string]core.Purchase),
		accounts:   make(map[string]core.Account),
		summaries:  make(map[monthKey]MonthSummary),
		nextSnapID: 1,
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) GetIncomeProfile(_ context.Context) (core.IncomeProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile, nil
}

func (s *MemoryStore) UpdateIncomeProfile(_ context.Context, p core.IncomeProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}

func (s *MemoryStore) CreateTaxRate(_ context.Context, r core.TaxRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.taxRates[r.ID]; !ok {
		s.taxOrder = append(s.taxOrder, r.ID)
	}
	s.taxRates[r.ID] = r
	return nil
}

func (s *MemoryStore) UpdateTaxRate(_ context.Context, r core.TaxRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.taxRates[r.ID]; !ok {
		return ErrNotFound
	}
	s.taxRates[r.ID] = r
	return nil
}

func (s *MemoryStore) DeleteTaxRate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.taxRates[id]; !ok {
		return ErrNotFound
	}
	delete(s.taxRates, id)
	for i, v := range s.taxOrder {
		if v == id {
			s.taxOrder = append(s.taxOrder[:i], s.taxOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) ListTaxRates(_ context.Context) ([]core.TaxRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rates := make([]core.TaxRate, 0, len(s.taxOrder))
	for _, id := range s.taxOrder {
		rates = append(rates, s.taxRates[id])
	}
	return rates, nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, c core.BudgetCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]core.BudgetCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cats := make([]core.BudgetCategory, 0, len(s.categories))
	for _, c := range s.categories {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (s *MemoryStore) CountItemsForCategory(_ context.Context, categoryID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, i := range s.items {
		if i.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreateItem(_ context.Context, i core.BudgetItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[i.ID] = i
	return nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, i core.BudgetItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[i.ID]; !ok {
		return ErrNotFound
	}
	s.items[i.ID] = i
	return nil
}

func (s *MemoryStore) GetItem(_ context.Context, id string) (core.BudgetItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.items[id]
	if !ok {
		return core.BudgetItem{}, ErrNotFound
	}
	return i, nil
}

func (s *MemoryStore) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) DeactivateItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	i.Active = false
	s.items[id] = i
	return nil
}

func (s *MemoryStore) ListItems(_ context.Context, includeInactive bool) ([]core.BudgetItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]core.BudgetItem, 0, len(s.items))
	for _, i := range s.items {
		if !includeInactive && !i.Active {
			continue
		}
		items = append(items, i)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *MemoryStore) CreatePurchase(_ context.Context, p core.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases[p.ID] = p
	return nil
}

func (s *MemoryStore) GetPurchase(_ context.Context, id string) (core.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.purchases[id]
	if !ok {
		return core.Purchase{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) SetPurchaseDeleted(_ context.Context, id string, deleted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok {
		return ErrNotFound
	}
	p.Deleted = deleted
	s.purchases[id] = p
	return nil
}

func (s *MemoryStore) ListPurchases(_ context.Context, start, end time.Time, includeDeleted bool) ([]core.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var purchases []core.Purchase
	for _, p := range s.purchases {
		if !includeDeleted && p.Deleted {
			continue
		}
		if !start.IsZero() && p.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && !p.Timestamp.Before(end) {
			continue
		}
		purchases = append(purchases, p)
	}
	sort.Slice(purchases, func(i, j int) bool {
		return purchases[i].Timestamp.Before(purchases[j].Timestamp)
	})
	return purchases, nil
}

func (s *MemoryStore) CountPurchasesForItem(_ context.Context, itemID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.purchases {
		if p.BudgetItemID == itemID {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return nil
}

func (s *MemoryStore) UpdateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return ErrNotFound
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.Account{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *MemoryStore) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

func (s *MemoryStore) UpsertMonthSummary(_ context.Context, sum MonthSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum.UpdatedAt = time.Now().UTC()
	s.summaries[monthKey{sum.Year, sum.Month}] = sum
	return nil
}

func (s *MemoryStore) GetMonthSummary(_ context.Context, year int, month time.Month) (MonthSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.summaries[monthKey{year, month}]
	if !ok {
		return MonthSummary{}, ErrNotFound
	}
	return sum, nil
}

func (s *MemoryStore) InsertNetWorthSnapshot(_ context.Context, snap NetWorthSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap.ID = s.nextSnapID
	s.nextSnapID++
	s.snapshots = append(s.snapshots, snap)
	return nil
}

func (s *MemoryStore) ListNetWorthSnapshots(_ context.Context, limit int) ([]NetWorthSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := make([]NetWorthSnapshot, len(s.snapshots))
	copy(snaps, s.snapshots)
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].TakenAt.After(snaps[j].TakenAt) })
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}
