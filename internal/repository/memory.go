package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/itsm-service/internal/domain"
)

type memoryState struct {
	companies map[string]domain.Company
	users     map[string]domain.User
	assets    map[string]domain.Asset
	services  map[string]domain.Service
	contracts map[string]domain.Contract
	tickets   map[string]domain.Ticket
	history   []domain.TicketHistory
	notes     []domain.TicketNote
	config    *domain.SystemConfig
}

func newMemoryState() *memoryState {
	return &memoryState{
		companies: map[string]domain.Company{},
		users:     map[string]domain.User{},
		assets:    map[string]domain.Asset{},
		services:  map[string]domain.Service{},
		contracts: map[string]domain.Contract{},
		tickets:   map[string]domain.Ticket{},
	}
}

func cloneMap[T any](in map[string]T) map[string]T {
	out := make(map[string]T, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *memoryState) clone() *memoryState {
	out := &memoryState{
		companies: cloneMap(s.companies),
		users:     cloneMap(s.users),
		assets:    cloneMap(s.assets),
		services:  cloneMap(s.services),
		contracts: cloneMap(s.contracts),
		tickets:   cloneMap(s.tickets),
		history:   append([]domain.TicketHistory(nil), s.history...),
		notes:     append([]domain.TicketNote(nil), s.notes...),
	}
	if s.config != nil {
		cfg := *s.config
		out.config = &cfg
	}
	return out
}

func (s *memoryState) requireCompany(id string) error {
	if _, ok := s.companies[id]; !ok {
		return ErrConflict
	}
	return nil
}

// MemoryStore is an in-process Store used when no database is configured and in tests.
// Transactions hold the store lock and restore a snapshot when the unit of work fails.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memoryState
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

// Repos returns repositories that lock per call.
func (s *MemoryStore) Repos() Repositories {
	return s.repos(memoryAccess{store: s})
}

// WithinTx runs fn with exclusive access and rolls back on error or cancellation.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.state.clone()
	err := fn(s.repos(memoryAccess{store: s, tx: s.state}))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func (s *MemoryStore) repos(acc memoryAccess) Repositories {
	return Repositories{
		Companies:    memCompanies{acc},
		Users:        memUsers{acc},
		Assets:       memAssets{acc},
		Services:     memServices{acc},
		Contracts:    memContracts{acc},
		Tickets:      memTickets{acc},
		History:      memHistory{acc},
		Notes:        memNotes{acc},
		SystemConfig: memSystemConfig{acc},
	}
}

type memoryAccess struct {
	store *MemoryStore
	tx    *memoryState
}

func (m memoryAccess) read(fn func(s *memoryState) error) error {
	if m.tx != nil {
		return fn(m.tx)
	}
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	return fn(m.store.state)
}

func (m memoryAccess) write(fn func(s *memoryState) error) error {
	if m.tx != nil {
		return fn(m.tx)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return fn(m.store.state)
}

func lookup[T any](records map[string]T, id string) (*T, error) {
	rec, ok := records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func collect[T any](records map[string]T, keep func(T) bool, less func(a, b T) bool, page Page) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	start, end := page.apply(len(out))
	return out[start:end]
}

type memCompanies struct{ memoryAccess }

func (r memCompanies) Create(_ context.Context, c *domain.Company) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.companies[c.ID]; exists {
			return ErrConflict
		}
		s.companies[c.ID] = *c
		return nil
	})
}

func (r memCompanies) Update(_ context.Context, c *domain.Company) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.companies[c.ID]; !exists {
			return ErrNotFound
		}
		s.companies[c.ID] = *c
		return nil
	})
}

func (r memCompanies) Delete(_ context.Context, id string) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.companies[id]; !exists {
			return ErrNotFound
		}
		for _, u := range s.users {
			if u.OwnerCompanyID() == id {
				return ErrConflict
			}
		}
		for _, a := range s.assets {
			if a.CompanyID == id {
				return ErrConflict
			}
		}
		for _, sv := range s.services {
			if sv.CompanyID == id {
				return ErrConflict
			}
		}
		for _, c := range s.contracts {
			if c.CompanyID == id {
				return ErrConflict
			}
		}
		for _, t := range s.tickets {
			if t.CompanyID == id {
				return ErrConflict
			}
		}
		delete(s.companies, id)
		return nil
	})
}

func (r memCompanies) GetByID(_ context.Context, id string) (out *domain.Company, err error) {
	err = r.read(func(s *memoryState) error {
		out, err = lookup(s.companies, id)
		return err
	})
	return out, err
}

func (r memCompanies) List(_ context.Context, page Page) (out []domain.Company, err error) {
	err = r.read(func(s *memoryState) error {
		out = collect(s.companies,
			func(domain.Company) bool { return true },
			func(a, b domain.Company) bool {
				if a.Name != b.Name {
					return a.Name < b.Name
				}
				return a.ID < b.ID
			}, page)
		return nil
	})
	return out, err
}

type memUsers struct{ memoryAccess }

func emailTaken(s *memoryState, email, exceptID string) bool {
	for _, u := range s.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r memUsers) Create(_ context.Context, u *domain.User) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.users[u.ID]; exists || emailTaken(s, u.Email, "") {
			return ErrConflict
		}
		if u.CompanyID != nil {
			if err := s.requireCompany(*u.CompanyID); err != nil {
				return err
			}
		}
		s.users[u.ID] = *u
		return nil
	})
}

func (r memUsers) Update(_ context.Context, u *domain.User) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.users[u.ID]; !exists {
			return ErrNotFound
		}
		if emailTaken(s, u.Email, u.ID) {
			return ErrConflict
		}
		if u.CompanyID != nil {
			if err := s.requireCompany(*u.CompanyID); err != nil {
				return err
			}
		}
		s.users[u.ID] = *u
		return nil
	})
}

func (r memUsers) Delete(_ context.Context, id string) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.users[id]; !exists {
			return ErrNotFound
		}
		delete(s.users, id)
		for tid, t := range s.tickets {
			if t.AssignedTo != nil && *t.AssignedTo == id {
				t.AssignedTo = nil
				s.tickets[tid] = t
			}
		}
		return nil
	})
}

func (r memUsers) GetByID(_ context.Context, id string) (out *domain.User, err error) {
	err = r.read(func(s *memoryState) error {
		out, err = lookup(s.users, id)
		return err
	})
	return out, err
}

func (r memUsers) GetByEmail(_ context.Context, email string) (out *domain.User, err error) {
	err = r.read(func(s *memoryState) error {
		for _, u := range s.users {
			if strings.EqualFold(u.Email, email) {
				found := u
				out = &found
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

func (r memUsers) List(_ context.Context, filter UserFilter) (out []domain.User, err error) {
	err = r.read(func(s *memoryState) error {
		out = collect(s.users, filter.matches, func(a, b domain.User) bool {
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		}, filter.Page)
		return nil
	})
	return out, err
}

type memAssets struct{ memoryAccess }

func (r memAssets) Create(_ context.Context, a *domain.Asset) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.assets[a.ID]; exists {
			return ErrConflict
		}
		if err := s.requireCompany(a.CompanyID); err != nil {
			return err
		}
		s.assets[a.ID] = *a
		return nil
	})
}

func (r memAssets) Update(_ context.Context, a *domain.Asset) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.assets[a.ID]; !exists {
			return ErrNotFound
		}
		if err := s.requireCompany(a.CompanyID); err != nil {
			return err
		}
		s.assets[a.ID] = *a
		return nil
	})
}

func (r memAssets) Delete(_ context.Context, id string) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.assets[id]; !exists {
			return ErrNotFound
		}
		delete(s.assets, id)
		for tid, t := range s.tickets {
			if t.AssetID != nil && *t.AssetID == id {
				t.AssetID = nil
				s.tickets[tid] = t
			}
		}
		return nil
	})
}

func (r memAssets) GetByID(_ context.Context, id string) (out *domain.Asset, err error) {
	err = r.read(func(s *memoryState) error {
		out, err = lookup(s.assets, id)
		return err
	})
	return out, err
}

func (r memAssets) List(_ context.Context, filter AssetFilter) (out []domain.Asset, err error) {
	err = r.read(func(s *memoryState) error {
		out = collect(s.assets, filter.matches, func(a, b domain.Asset) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID < b.ID
		}, filter.Page)
		return nil
	})
	return out, err
}

type memServices struct{ memoryAccess }

func (r memServices) Create(_ context.Context, sv *domain.Service) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.services[sv.ID]; exists {
			return ErrConflict
		}
		if err := s.requireCompany(sv.CompanyID); err != nil {
			return err
		}
		s.services[sv.ID] = *sv
		return nil
	})
}

func (r memServices) Update(_ context.Context, sv *domain.Service) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.services[sv.ID]; !exists {
			return ErrNotFound
		}
		if err := s.requireCompany(sv.CompanyID); err != nil {
			return err
		}
		s.services[sv.ID] = *sv
		return nil
	})
}

func (r memServices) Delete(_ context.Context, id string) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.services[id]; !exists {
			return ErrNotFound
		}
		for _, c := range s.contracts {
			if c.ServiceID == id {
				return ErrConflict
			}
		}
		delete(s.services, id)
		for tid, t := range s.tickets {
			if t.ServiceID != nil && *t.ServiceID == id {
				t.ServiceID = nil
				s.tickets[tid] = t
			}
		}
		return nil
	})
}

func (r memServices) GetByID(_ context.Context, id string) (out *domain.Service, err error) {
	err = r.read(func(s *memoryState) error {
		out, err = lookup(s.services, id)
		return err
	})
	return out, err
}

func (r memServices) List(_ context.Context, filter ServiceFilter) (out []domain.Service, err error) {
	err = r.read(func(s *memoryState) error {
		out = collect(s.services, filter.matches, func(a, b domain.Service) bool {
			if a.Name != b.Name {
				return a.Name < b.Name
			}
			return a.ID < b.ID
		}, filter.Page)
		return nil
	})
	return out, err
}

type memContracts struct{ memoryAccess }

func (r memContracts) checkRefs(s *memoryState, c *domain.Contract) error {
	if err := s.requireCompany(c.CompanyID); err != nil {
		return err
	}
	if _, ok := s.services[c.ServiceID]; !ok {
		return ErrConflict
	}
	return nil
}

func (r memContracts) Create(_ context.Context, c *domain.Contract) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.contracts[c.ID]; exists {
			return ErrConflict
		}
		if err := r.checkRefs(s, c); err != nil {
			return err
		}
		s.contracts[c.ID] = *c
		return nil
	})
}

func (r memContracts) Update(_ context.Context, c *domain.Contract) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.contracts[c.ID]; !exists {
			return ErrNotFound
		}
		if err := r.checkRefs(s, c); err != nil {
			return err
		}
		s.contracts[c.ID] = *c
		return nil
	})
}

func (r memContracts) Delete(_ context.Context, id string) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.contracts[id]; !exists {
			return ErrNotFound
		}
		delete(s.contracts, id)
		return nil
	})
}

func (r memContracts) GetByID(_ context.Context, id string) (out *domain.Contract, err error) {
	err = r.read(func(s *memoryState) error {
		out, err = lookup(s.contracts, id)
		return err
	})
	return out, err
}

func (r memContracts) List(_ context.Context, filter ContractFilter) (out []domain.Contract, err error) {
	err = r.read(func(s *memoryState) error {
		out = collect(s.contracts, filter.matches, func(a, b domain.Contract) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID < b.ID
		}, filter.Page)
		return nil
	})
	return out, err
}

type memTickets struct{ memoryAccess }

func (r memTickets) Create(_ context.Context, t *domain.Ticket) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.tickets[t.ID]; exists {
			return ErrConflict
		}
		if err := s.requireCompany(t.CompanyID); err != nil {
			return err
		}
		s.tickets[t.ID] = *t
		return nil
	})
}

func (r memTickets) Update(_ context.Context, t *domain.Ticket) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.tickets[t.ID]; !exists {
			return ErrNotFound
		}
		if err := s.requireCompany(t.CompanyID); err != nil {
			return err
		}
		s.tickets[t.ID] = *t
		return nil
	})
}

func (r memTickets) Delete(_ context.Context, id string) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.tickets[id]; !exists {
			return ErrNotFound
		}
		// History and notes are append-only and outlive the ticket.
		delete(s.tickets, id)
		return nil
	})
}

func (r memTickets) GetByID(_ context.Context, id string) (out *domain.Ticket, err error) {
	err = r.read(func(s *memoryState) error {
		out, err = lookup(s.tickets, id)
		return err
	})
	return out, err
}

func (r memTickets) List(_ context.Context, filter TicketFilter) (out []domain.Ticket, err error) {
	err = r.read(func(s *memoryState) error {
		out = collect(s.tickets, filter.matches, func(a, b domain.Ticket) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID < b.ID
		}, filter.Page)
		return nil
	})
	return out, err
}

type memHistory struct{ memoryAccess }

func (r memHistory) Create(_ context.Context, h *domain.TicketHistory) error {
	return r.write(func(s *memoryState) error {
		if _, ok := s.tickets[h.TicketID]; !ok {
			return ErrConflict
		}
		s.history = append(s.history, *h)
		return nil
	})
}

func (r memHistory) ListByTicket(_ context.Context, ticketID string) (out []domain.TicketHistory, err error) {
	err = r.read(func(s *memoryState) error {
		for _, h := range s.history {
			if h.TicketID == ticketID {
				out = append(out, h)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
		return nil
	})
	return out, err
}

type memNotes struct{ memoryAccess }

func (r memNotes) Create(_ context.Context, n *domain.TicketNote) error {
	return r.write(func(s *memoryState) error {
		if _, ok := s.tickets[n.TicketID]; !ok {
			return ErrConflict
		}
		s.notes = append(s.notes, *n)
		return nil
	})
}

func (r memNotes) ListByTicket(_ context.Context, ticketID string) (out []domain.TicketNote, err error) {
	err = r.read(func(s *memoryState) error {
		for _, n := range s.notes {
			if n.TicketID == ticketID {
				out = append(out, n)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
		return nil
	})
	return out, err
}

type memSystemConfig struct{ memoryAccess }

func (r memSystemConfig) Get(_ context.Context) (out *domain.SystemConfig, err error) {
	err = r.read(func(s *memoryState) error {
		if s.config == nil {
			return ErrNotFound
		}
		cfg := *s.config
		out = &cfg
		return nil
	})
	return out, err
}

func (r memSystemConfig) Upsert(_ context.Context, cfg *domain.SystemConfig) error {
	return r.write(func(s *memoryState) error {
		stored := *cfg
		s.config = &stored
		return nil
	})
}
