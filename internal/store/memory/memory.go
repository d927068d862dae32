// Package memory is the in-process Stores implementation. It backs unit
// tests and local development; the Firestore and SQLite backends are the
// real persistence paths.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

type expenseDoc struct {
	id        string
	rec       store.ExpenseRecord
	createdAt time.Time
	updatedAt time.Time
}

type typeDoc struct {
	id        string
	rec       store.TypeRecord
	createdAt time.Time
	updatedAt time.Time
}

type profileDoc struct {
	rec         store.ProfileRecord
	createdAt   time.Time
	updatedAt   time.Time
	lastLoginAt time.Time
}

// Store holds all three collections in memory. Documents are stored in
// their encoded record form so the codec sits on the same path as the
// persistent backends.
type Store struct {
	mu       sync.Mutex
	expenses []expenseDoc
	types    []typeDoc
	profiles map[string]profileDoc
	now      func() time.Time
}

func New() *Store {
	return &Store{profiles: map[string]profileDoc{}, now: time.Now}
}

// WithClock fixes the timestamp source. Tests only.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// List pages through the expense collection. The implementation walks and
// discards the records before the requested page, matching the documented
// offset-pagination behavior of the persistent backends.
func (s *Store) List(_ context.Context, opts store.ListOptions) (store.Page, error) {
	opts = opts.Normalize()

	s.mu.Lock()
	docs := append([]expenseDoc(nil), s.expenses...)
	s.mu.Unlock()

	// Totals always count the whole collection, searching or not; the
	// page numbers the UI renders are collection-wide.
	total := len(docs)

	if opts.SearchTerm != "" {
		filtered := docs[:0]
		for _, d := range docs {
			if d.rec.Date >= opts.SearchTerm && d.rec.Date <= opts.SearchTerm+"" {
				filtered = append(filtered, d)
			}
		}
		docs = filtered
	}

	sortDocs(docs, opts.SortField, opts.SortDirection)
	// Discard everything before the page, then read the page.
	if off := opts.Offset(); off < len(docs) {
		docs = docs[off:]
	} else {
		docs = nil
	}
	if len(docs) > opts.PageSize {
		docs = docs[:opts.PageSize]
	}

	items := make([]core.Expense, 0, len(docs))
	for _, d := range docs {
		items = append(items, store.DecodeExpense(d.id, d.rec, d.createdAt, d.updatedAt))
	}
	return store.Page{
		Items:       items,
		TotalItems:  total,
		TotalPages:  store.PageCount(total, opts.PageSize),
		CurrentPage: opts.Page,
	}, nil
}

func (s *Store) Create(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := expenseDoc{
		id:        uuid.NewString(),
		rec:       store.EncodeExpense(e),
		createdAt: s.now(),
	}
	s.expenses = append(s.expenses, doc)
	return doc.id, nil
}

func (s *Store) Update(_ context.Context, e core.Expense) error {
	if e.ID == "" {
		return nil
	}
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].id == e.ID {
			s.expenses[i].rec = store.EncodeExpense(e)
			s.expenses[i].updatedAt = s.now()
			return nil
		}
	}
	return &store.Error{Code: store.CodeNotFound, Op: "memory.update"}
}

func (s *Store) Delete(_ context.Context, e core.Expense) error {
	if e.ID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].id == e.ID {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) SeedBulk(ctx context.Context, rows []store.SeedRow) (int, error) {
	created := 0
	for _, row := range rows {
		e, err := store.ExpenseFromSeedRow(row)
		if err != nil {
			return created, err
		}
		if _, err := s.Create(ctx, e); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Store) ListTypes(_ context.Context) ([]core.AdditionalExpenseType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.AdditionalExpenseType, 0, len(s.types))
	for _, d := range s.types {
		out = append(out, store.DecodeType(d.id, d.rec, d.createdAt, d.updatedAt))
	}
	return out, nil
}

func (s *Store) CreateType(_ context.Context, t core.AdditionalExpenseType) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := typeDoc{id: uuid.NewString(), rec: store.EncodeType(t), createdAt: s.now()}
	s.types = append(s.types, doc)
	return doc.id, nil
}

func (s *Store) UpdateType(_ context.Context, t core.AdditionalExpenseType) error {
	if t.ID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.types {
		if s.types[i].id == t.ID {
			s.types[i].rec = store.EncodeType(t)
			s.types[i].updatedAt = s.now()
			return nil
		}
	}
	return &store.Error{Code: store.CodeNotFound, Op: "memory.updateType"}
}

func (s *Store) DeleteType(_ context.Context, t core.AdditionalExpenseType) error {
	if t.ID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.types {
		if s.types[i].id == t.ID {
			s.types = append(s.types[:i], s.types[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) SeedDefaultTypes(ctx context.Context) (int, error) {
	s.mu.Lock()
	empty := len(s.types) == 0
	s.mu.Unlock()
	if !empty {
		return 0, nil
	}
	created := 0
	for _, t := range core.DefaultExpenseTypes() {
		if _, err := s.CreateType(ctx, t); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Store) GetProfile(_ context.Context, uid string) (core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.profiles[uid]
	if !ok {
		return core.UserProfile{}, core.ErrProfileNotFound
	}
	return store.DecodeProfile(d.rec, d.createdAt, d.updatedAt, d.lastLoginAt), nil
}

func (s *Store) PutProfile(_ context.Context, p core.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	d, ok := s.profiles[p.UID]
	if !ok {
		d = profileDoc{createdAt: now}
	}
	d.rec = store.EncodeProfile(p)
	d.updatedAt = now
	d.lastLoginAt = now
	s.profiles[p.UID] = d
	return nil
}

func (s *Store) UpdateProfile(_ context.Context, uid string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.profiles[uid]
	if !ok {
		return core.ErrProfileNotFound
	}
	for k, v := range updates {
		sv, _ := v.(string)
		switch k {
		case "displayName":
			d.rec.DisplayName = sv
		case "photoURL":
			d.rec.PhotoURL = sv
		case "theme":
			d.rec.Theme = sv
		case "currency":
			d.rec.Currency = sv
		case "language":
			d.rec.Language = sv
		}
	}
	d.updatedAt = s.now()
	s.profiles[uid] = d
	return nil
}

func (s *Store) ListProfiles(_ context.Context) ([]core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.UserProfile, 0, len(s.profiles))
	for _, d := range s.profiles {
		out = append(out, store.DecodeProfile(d.rec, d.createdAt, d.updatedAt, d.lastLoginAt))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

func sortDocs(docs []expenseDoc, field, direction string) {
	desc := direction == store.SortDescending
	less := func(a, b expenseDoc) bool {
		var cmp int
		switch field {
		case "house":
			cmp = compareDecimal(a.rec.House, b.rec.House)
		case "electricity":
			cmp = compareDecimal(a.rec.Electricity, b.rec.Electricity)
		default:
			cmp = strings.Compare(a.rec.Date, b.rec.Date)
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	}
	sort.SliceStable(docs, func(i, j int) bool { return less(docs[i], docs[j]) })
}

func compareDecimal(a, b string) int {
	av, bv := core.ParseDecimal(a), core.ParseDecimal(b)
	switch {
	case av == nil && bv == nil:
		return 0
	case av == nil:
		return -1
	case bv == nil:
		return 1
	case *av < *bv:
		return -1
	case *av > *bv:
		return 1
	}
	return 0
}
