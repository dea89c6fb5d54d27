package test

import (
	"context"
	"sync"

	domainErrors "github.com/printware/printdesk/internal/domain/errors"
	"github.com/printware/printdesk/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// BulkOrderRepositoryStub keeps bulk orders in-memory and enforces the same
// terminal-status guard the real repository carries.
type BulkOrderRepositoryStub struct {
	sync.Mutex
	Bulks      map[string]*model.BulkOrder
	NextOrder  int64
	Err        error
	CompleteFn func(context.Context, string, []model.DesignSpec) (*model.BulkOrder, bool, error)
}

// NewBulkOrderRepositoryStub constructs the stub with initialized state.
func NewBulkOrderRepositoryStub() *BulkOrderRepositoryStub {
	return &BulkOrderRepositoryStub{Bulks: make(map[string]*model.BulkOrder), NextOrder: 100}
}

// Create stores the bulk order as provided.
func (s *BulkOrderRepositoryStub) Create(ctx context.Context, bulk *model.BulkOrder) (*model.BulkOrder, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.Lock()
	defer s.Unlock()
	stored := *bulk
	s.Bulks[bulk.ID] = &stored
	return &stored, nil
}

// GetByID fetches a stored bulk order.
func (s *BulkOrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.BulkOrder, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.Lock()
	defer s.Unlock()
	bulk, ok := s.Bulks[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copied := *bulk
	return &copied, nil
}

// ListByUser returns all stored bulk orders for the user.
func (s *BulkOrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.BulkOrder, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.Lock()
	defer s.Unlock()
	var result []model.BulkOrder
	for _, b := range s.Bulks {
		if b.UserID == userID {
			result = append(result, *b)
		}
	}
	return result, nil
}

// ClaimBatchForSplitting moves UPLOADED records to SPLITTING. In-flight
// records are reclaimed too, mirroring the real repository's crash recovery.
func (s *BulkOrderRepositoryStub) ClaimBatchForSplitting(ctx context.Context, limit int) ([]model.BulkOrder, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.Lock()
	defer s.Unlock()
	var claimed []model.BulkOrder
	for _, b := range s.Bulks {
		if len(claimed) >= limit {
			break
		}
		switch b.Status {
		case model.BulkOrderStatusUploaded, model.BulkOrderStatusSplitting, model.BulkOrderStatusProcessing:
			b.Status = model.BulkOrderStatusSplitting
			claimed = append(claimed, *b)
		}
	}
	return claimed, nil
}

// SetStatus applies a guarded status transition.
func (s *BulkOrderRepositoryStub) SetStatus(ctx context.Context, id string, status model.BulkOrderStatus) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	s.Lock()
	defer s.Unlock()
	bulk, ok := s.Bulks[id]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if bulk.Status.IsTerminal() {
		return false, nil
	}
	bulk.Status = status
	return true, nil
}

// SetFailed marks the record failed with the provided reason.
func (s *BulkOrderRepositoryStub) SetFailed(ctx context.Context, id, reason string) (bool, error) {
	applied, err := s.SetStatus(ctx, id, model.BulkOrderStatusFailed)
	if err != nil || !applied {
		return applied, err
	}
	s.Lock()
	s.Bulks[id].FailureReason = reason
	s.Unlock()
	return true, nil
}

// CompleteSplit finalizes the record with counters and a synthetic parent id.
func (s *BulkOrderRepositoryStub) CompleteSplit(ctx context.Context, id string, designs []model.DesignSpec) (*model.BulkOrder, bool, error) {
	if s.CompleteFn != nil {
		return s.CompleteFn(ctx, id, designs)
	}
	if s.Err != nil {
		return nil, false, s.Err
	}
	s.Lock()
	defer s.Unlock()
	bulk, ok := s.Bulks[id]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if bulk.Status.IsTerminal() {
		copied := *bulk
		return &copied, false, nil
	}

	total := 0
	for _, d := range designs {
		total += d.Copies
	}
	s.NextOrder++
	parent := s.NextOrder
	bulk.Status = model.BulkOrderStatusOrderCreated
	bulk.DistinctDesigns = len(designs)
	bulk.TotalCopies = total
	bulk.ParentOrderID = &parent

	copied := *bulk
	return &copied, true, nil
}

// OrderRepositoryStub serves orders from a map.
type OrderRepositoryStub struct {
	Orders  map[int64]*model.Order
	Updates []model.PaymentStatus
	Err     error
}

// GetByID fetches one order or returns not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if o, ok := s.Orders[id]; ok {
		return o, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByUser returns all stored orders belonging to the user.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var result []model.Order
	for _, o := range s.Orders {
		if o.UserID == userID {
			result = append(result, *o)
		}
	}
	return result, nil
}

// UpdatePaymentStatus records and applies the payment transition.
func (s *OrderRepositoryStub) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error {
	if s.Err != nil {
		return s.Err
	}
	s.Updates = append(s.Updates, status)
	if o, ok := s.Orders[orderID]; ok {
		o.PaymentStatus = status
	}
	return nil
}

// ProductRepositoryStub exposes configured department sequences.
type ProductRepositoryStub struct {
	Products  map[int64]*model.Product
	Sequences map[int64][]string
}

// GetByID fetches product configuration.
func (s *ProductRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if p, ok := s.Products[id]; ok {
		return p, nil
	}
	return nil, domainErrors.ErrNotFound
}

// DepartmentSequence returns the configured sequence for the product.
func (s *ProductRepositoryStub) DepartmentSequence(ctx context.Context, productID int64) ([]string, error) {
	if seq, ok := s.Sequences[productID]; ok {
		return seq, nil
	}
	return nil, domainErrors.ErrNotFound
}

// StatusCacheStub records cache traffic for assertions.
type StatusCacheStub struct {
	sync.Mutex
	Entries map[string]*model.BulkStatus
	Puts    []string
}

// NewStatusCacheStub constructs the stub with initialized state.
func NewStatusCacheStub() *StatusCacheStub {
	return &StatusCacheStub{Entries: make(map[string]*model.BulkStatus)}
}

// Get returns a cached snapshot when present.
func (s *StatusCacheStub) Get(ctx context.Context, bulkOrderID string) (*model.BulkStatus, bool) {
	s.Lock()
	defer s.Unlock()
	snap, ok := s.Entries[bulkOrderID]
	return snap, ok
}

// Put stores the snapshot and records the write.
func (s *StatusCacheStub) Put(ctx context.Context, snapshot *model.BulkStatus) {
	s.Lock()
	defer s.Unlock()
	s.Entries[snapshot.BulkOrderID] = snapshot
	s.Puts = append(s.Puts, snapshot.BulkOrderID)
}
