package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"send-to-print/internal/dto"
	"send-to-print/internal/entities"
	integrationsDTO "send-to-print/internal/integrations/dto"
	"send-to-print/internal/repositories"
	"send-to-print/pkg/constants"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/eventbus"
)

// memStore держит таблицу orders в памяти и блокирует строку на время транзакции.
type memStore struct {
	mu          sync.Mutex
	orders      map[uint64]*entities.Order
	locks       map[uint64]*sync.Mutex
	nextID      uint64
	transitions []string
}

func newMemStore() *memStore {
	return &memStore{
		orders: make(map[uint64]*entities.Order),
		locks:  make(map[uint64]*sync.Mutex),
	}
}

func (s *memStore) rowLock(id uint64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *memStore) get(id uint64) (entities.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return entities.Order{}, false
	}
	return *o, true
}

func (s *memStore) put(o entities.Order) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		s.nextID++
		o.ID = s.nextID
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	s.orders[o.ID] = &o
	return o.ID
}

func (s *memStore) transitionCount(edge string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.transitions {
		if t == edge {
			n++
		}
	}
	return n
}

type fakeTx struct {
	pgx.Tx
	held   []uint64
	staged map[uint64]*entities.Order
	edges  []string
}

type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx := &fakeTx{staged: make(map[uint64]*entities.Order)}
	defer func() {
		for _, id := range tx.held {
			m.store.rowLock(id).Unlock()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	m.store.mu.Lock()
	for id, o := range tx.staged {
		cp := *o
		m.store.orders[id] = &cp
	}
	m.store.transitions = append(m.store.transitions, tx.edges...)
	m.store.mu.Unlock()
	return nil
}

type fakeOrderRepo struct {
	store *memStore
}

var _ repositories.OrderRepositoryInterface = (*fakeOrderRepo)(nil)

func (r *fakeOrderRepo) CreateOrder(ctx context.Context, order *entities.Order) (uint64, error) {
	order.ID = r.store.put(*order)
	return order.ID, nil
}

func (r *fakeOrderRepo) FindOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	o, ok := r.store.get(id)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) GetOrders(ctx context.Context, filter dto.OrderFilterDTO) ([]entities.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []entities.Order
	for _, o := range r.store.orders {
		if o.ShopID != filter.ShopID {
			continue
		}
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, o.Status) {
			continue
		}
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func (r *fakeOrderRepo) FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Order, error) {
	ftx := tx.(*fakeTx)
	if o, ok := ftx.staged[id]; ok {
		cp := *o
		return &cp, nil
	}
	if _, ok := r.store.get(id); !ok {
		return nil, apperrors.ErrNotFound
	}

	r.store.rowLock(id).Lock()
	ftx.held = append(ftx.held, id)

	o, _ := r.store.get(id)
	ftx.staged[id] = &o
	cp := o
	return &cp, nil
}

func (r *fakeOrderRepo) staged(tx pgx.Tx, id uint64) (*fakeTx, *entities.Order, error) {
	ftx := tx.(*fakeTx)
	o, ok := ftx.staged[id]
	if !ok {
		return nil, nil, fmt.Errorf("строка %d не заблокирована", id)
	}
	return ftx, o, nil
}

func (r *fakeOrderRepo) setStatus(ftx *fakeTx, o *entities.Order, status string) {
	ftx.edges = append(ftx.edges, o.Status+"->"+status)
	o.Status = status
}

func (r *fakeOrderRepo) SetIdempotencyKeyInTx(ctx context.Context, tx pgx.Tx, id uint64, key string) error {
	_, o, err := r.staged(tx, id)
	if err != nil {
		return err
	}
	o.IdempotencyKey = null.StringFrom(key)
	return nil
}

func (r *fakeOrderRepo) MarkWaitingPaymentInTx(ctx context.Context, tx pgx.Tx, id uint64, payment repositories.PaymentAttrs) error {
	ftx, o, err := r.staged(tx, id)
	if err != nil {
		return err
	}
	o.PaymentID = null.StringFrom(payment.PaymentID)
	o.PaymentStatus = null.StringFrom(payment.PaymentStatus)
	o.ConfirmationURL = null.StringFrom(payment.ConfirmationURL)
	r.setStatus(ftx, o, constants.StatusWaitingPayment)
	return nil
}

func (r *fakeOrderRepo) MarkPaidInTx(ctx context.Context, tx pgx.Tx, id uint64, paid repositories.PaidAttrs) error {
	ftx, o, err := r.staged(tx, id)
	if err != nil {
		return err
	}
	o.PaymentStatus = null.StringFrom(paid.PaymentStatus)
	o.PaymentAmount = decimal.NewNullDecimal(paid.Amount)
	o.PaidAt = null.TimeFrom(paid.PaidAt)
	r.setStatus(ftx, o, constants.StatusPaid)
	return nil
}

func (r *fakeOrderRepo) UpdatePaymentStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, paymentStatus string) error {
	_, o, err := r.staged(tx, id)
	if err != nil {
		return err
	}
	o.PaymentStatus = null.StringFrom(paymentStatus)
	return nil
}

func (r *fakeOrderRepo) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string) error {
	ftx, o, err := r.staged(tx, id)
	if err != nil {
		return err
	}
	r.setStatus(ftx, o, status)
	return nil
}

type fakeShopRepo struct {
	shops      map[uint64]*entities.Shop
	franchises map[uint64]*entities.Franchise
}

func newFakeShopRepo() *fakeShopRepo {
	return &fakeShopRepo{
		shops:      make(map[uint64]*entities.Shop),
		franchises: make(map[uint64]*entities.Franchise),
	}
}

func (r *fakeShopRepo) FindShop(ctx context.Context, id uint64) (*entities.Shop, error) {
	s, ok := r.shops[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeShopRepo) GetShops(ctx context.Context, activeOnly bool) ([]entities.Shop, error) {
	shops := make([]entities.Shop, 0, len(r.shops))
	for _, s := range r.shops {
		if activeOnly && !s.IsActive {
			continue
		}
		shops = append(shops, *s)
	}
	sort.Slice(shops, func(i, j int) bool { return shops[i].ID < shops[j].ID })
	return shops, nil
}

func (r *fakeShopRepo) FindFranchise(ctx context.Context, id uint64) (*entities.Franchise, error) {
	f, ok := r.franchises[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeShopRepo) CreateFranchise(ctx context.Context, f *entities.Franchise) (uint64, error) {
	f.ID = uint64(len(r.franchises) + 1)
	r.franchises[f.ID] = f
	return f.ID, nil
}

func (r *fakeShopRepo) CreateShop(ctx context.Context, s *entities.Shop) (uint64, error) {
	s.ID = uint64(len(r.shops) + 1)
	r.shops[s.ID] = s
	return s.ID, nil
}

// fakeGateway отвечает pending на первые pendingFinds запросов статуса, затем finalStatus.
type fakeGateway struct {
	mu           sync.Mutex
	createCalls  int32
	findCalls    int32
	pendingFinds int
	finalStatus  string
	amount       decimal.NullDecimal
	createDelay  time.Duration
	createErr    error
	findErr      error
	keys         []string
	lastCreds    integrationsDTO.Credentials
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreatePayment(ctx context.Context, creds integrationsDTO.Credentials, req integrationsDTO.CreatePaymentRequest) (*integrationsDTO.Payment, error) {
	atomic.AddInt32(&g.createCalls, 1)
	if g.createDelay > 0 {
		time.Sleep(g.createDelay)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.keys = append(g.keys, req.IdempotencyKey)
	g.lastCreds = creds
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &integrationsDTO.Payment{
		ID:              fmt.Sprintf("pay-%d", req.OrderID),
		Status:          constants.GatewayPending,
		ConfirmationURL: fmt.Sprintf("https://pay.example/%d", req.OrderID),
	}, nil
}

func (g *fakeGateway) FindPayment(ctx context.Context, creds integrationsDTO.Credentials, paymentID string) (*integrationsDTO.Payment, error) {
	n := atomic.AddInt32(&g.findCalls, 1)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.findErr != nil {
		return nil, g.findErr
	}
	status := constants.GatewayPending
	if g.finalStatus != "" && int(n) > g.pendingFinds {
		status = g.finalStatus
	}
	return &integrationsDTO.Payment{ID: paymentID, Status: status, Amount: g.amount}, nil
}

func (g *fakeGateway) creates() int { return int(atomic.LoadInt32(&g.createCalls)) }
func (g *fakeGateway) finds() int   { return int(atomic.LoadInt32(&g.findCalls)) }

type fakeVault struct {
	err   error
	calls int32
}

func (v *fakeVault) Resolve(ctx context.Context, shopID uint64) (integrationsDTO.Credentials, error) {
	atomic.AddInt32(&v.calls, 1)
	if v.err != nil {
		return integrationsDTO.Credentials{}, v.err
	}
	return integrationsDTO.Credentials{AccountID: fmt.Sprintf("acc-%d", shopID), Secret: "secret"}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event eventbus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fakeFiles struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (f *fakeFiles) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	return prefix + "/" + originalFileName, nil
}

func (f *fakeFiles) Delete(filePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, filePath)
	return f.err
}

func (f *fakeFiles) Path(filePath string) (string, error) {
	return "/srv/uploads/" + filePath, nil
}

var errBoom = errors.New("boom")
