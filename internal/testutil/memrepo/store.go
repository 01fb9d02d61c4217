// Package memrepo is an in-memory implementation of the repositories and the
// unit of work, for usecase tests. A failed transaction restores the snapshot
// taken when it began.
package memrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/d1ma11/deposit-service/internal/domain/deposit"
	"github.com/d1ma11/deposit-service/internal/domain/request"
	"github.com/d1ma11/deposit-service/internal/domain/uow"

	"gorm.io/gorm"
)

var (
	_ request.Repository       = (*Requests)(nil)
	_ request.StatusRepository = (*Statuses)(nil)
	_ deposit.Repository       = (*Deposits)(nil)
	_ uow.UnitOfWork           = (*Store)(nil)
)

type state struct {
	requests map[string]request.Request
	statuses []request.StatusEntry
	deposits map[uint64]deposit.Deposit
	closed   map[uint64]deposit.Deposit
	nextID   uint64
}

func (s state) clone() state {
	c := state{
		requests: make(map[string]request.Request, len(s.requests)),
		statuses: append([]request.StatusEntry(nil), s.statuses...),
		deposits: make(map[uint64]deposit.Deposit, len(s.deposits)),
		closed:   make(map[uint64]deposit.Deposit, len(s.closed)),
		nextID:   s.nextID,
	}
	for k, v := range s.requests {
		c.requests[k] = v
	}
	for k, v := range s.deposits {
		c.deposits[k] = v
	}
	for k, v := range s.closed {
		c.closed[k] = v
	}
	return c
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state

	Requests *Requests
	Statuses *Statuses
	Deposits *Deposits
}

func New() *Store {
	s := &Store{st: state{
		requests: map[string]request.Request{},
		deposits: map[uint64]deposit.Deposit{},
		closed:   map[uint64]deposit.Deposit{},
	}}
	s.Requests = &Requests{s: s}
	s.Statuses = &Statuses{s: s}
	s.Deposits = &Deposits{s: s}
	return s
}

func (s *Store) Repos() uow.Repos {
	return uow.Repos{Requests: s.Requests, Statuses: s.Statuses, Deposits: s.Deposits}
}

func (s *Store) id() uint64 {
	s.st.nextID++
	return s.st.nextID
}

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.run(func() error { return fn(s.Repos()) })
}

func (s *Store) WithinRequestTx(ctx context.Context, requestID string, fn func(r uow.Repos, req *request.Request) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.run(func() error {
		req, err := s.Requests.GetByRequestIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		return fn(s.Repos(), req)
	})
}

func (s *Store) run(fn func() error) error {
	s.mu.Lock()
	snap := s.st.clone()
	s.mu.Unlock()

	if err := fn(); err != nil {
		s.mu.Lock()
		s.st = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

// Closed returns a soft-deleted deposit, for assertions.
func (s *Store) Closed(id uint64) (deposit.Deposit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.st.closed[id]
	return d, ok
}

type Requests struct{ s *Store }

func (r *Requests) Create(_ context.Context, req *request.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.requests[req.RequestID]; ok {
		return gorm.ErrDuplicatedKey
	}
	req.ID = r.s.id()
	r.s.st.requests[req.RequestID] = *req
	return nil
}

func (r *Requests) GetByRequestID(_ context.Context, requestID string) (*request.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.st.requests[requestID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &req, nil
}

func (r *Requests) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*request.Request, error) {
	return r.GetByRequestID(ctx, requestID)
}

func (r *Requests) Save(_ context.Context, req *request.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.requests[req.RequestID] = *req
	return nil
}

func (r *Requests) FindRejectedByCustomer(ctx context.Context, customerID int64) ([]request.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []request.Request
	for _, req := range r.s.st.requests {
		if req.CustomerID != customerID {
			continue
		}
		if e, ok := latest(r.s.st.statuses, req.ID); ok && e.Status == request.StatusRejected {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type Statuses struct{ s *Store }

func latest(entries []request.StatusEntry, pk uint64) (request.StatusEntry, bool) {
	var best request.StatusEntry
	found := false
	for _, e := range entries {
		if e.RequestID == pk && (!found || e.Version > best.Version) {
			best, found = e, true
		}
	}
	return best, found
}

func (st *Statuses) Append(_ context.Context, e *request.StatusEntry) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	for _, x := range st.s.st.statuses {
		if x.RequestID == e.RequestID && x.Version == e.Version {
			return gorm.ErrDuplicatedKey
		}
	}
	e.ID = st.s.id()
	st.s.st.statuses = append(st.s.st.statuses, *e)
	return nil
}

func (st *Statuses) Latest(_ context.Context, requestPK uint64) (*request.StatusEntry, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	e, ok := latest(st.s.st.statuses, requestPK)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (st *Statuses) History(_ context.Context, requestPK uint64) ([]request.StatusEntry, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	var out []request.StatusEntry
	for _, e := range st.s.st.statuses {
		if e.RequestID == requestPK {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Statuses of a request in version order, for assertions.
func (st *Statuses) Trail(requestPK uint64) []request.Status {
	h, _ := st.History(context.Background(), requestPK)
	out := make([]request.Status, 0, len(h))
	for _, e := range h {
		out = append(out, e.Status)
	}
	return out
}

type Deposits struct{ s *Store }

func (d *Deposits) Create(_ context.Context, dep *deposit.Deposit) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	dep.ID = d.s.id()
	d.s.st.deposits[dep.ID] = *dep
	return nil
}

func (d *Deposits) GetByID(_ context.Context, id uint64) (*deposit.Deposit, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	dep, ok := d.s.st.deposits[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &dep, nil
}

func (d *Deposits) Save(_ context.Context, dep *deposit.Deposit) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if _, ok := d.s.st.deposits[dep.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	d.s.st.deposits[dep.ID] = *dep
	return nil
}

func (d *Deposits) Delete(_ context.Context, dep *deposit.Deposit) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	cur, ok := d.s.st.deposits[dep.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(d.s.st.deposits, dep.ID)
	d.s.st.closed[dep.ID] = cur
	return nil
}

func (d *Deposits) FindByCustomer(_ context.Context, customerID int64) ([]deposit.Deposit, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	var out []deposit.Deposit
	for _, dep := range d.s.st.deposits {
		if dep.CustomerID == customerID {
			out = append(out, dep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
