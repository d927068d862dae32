// Package firestore implements store.Stores on Google Cloud Firestore.
package firestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

// Client wraps a Firestore connection. Collections and field layouts match
// the codec in the store package; numeric fields are decimal strings.
type Client struct {
	c *fs.Client
}

// New connects to the given project. credentialsFile may be empty, in
// which case application-default credentials are used.
func New(ctx context.Context, projectID, credentialsFile string) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firestore project ID is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := fs.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Client{c: c}, nil
}

func (cl *Client) Close() error { return cl.c.Close() }

type expenseReadDoc struct {
	store.ExpenseRecord
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type expenseCreateDoc struct {
	store.ExpenseRecord
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
}

// List serves offset pagination the way the product always has: count the
// collection, walk and discard the records before the requested page, then
// read the page starting after the last discarded document. The discard
// phase costs O(page * pageSize) reads per call and no cursor is reused
// across calls. Kept intentionally; swap in a cursor-based implementation
// behind store.ExpenseStore if that ever matters.
func (cl *Client) List(ctx context.Context, opts store.ListOptions) (store.Page, error) {
	opts = opts.Normalize()
	col := cl.c.Collection(store.ExpenseCollection)

	q := col.Query
	if opts.SearchTerm != "" {
		// Prefix range match on the date field, not full-text search.
		q = q.Where("date", ">=", opts.SearchTerm).
			Where("date", "<=", opts.SearchTerm+"")
	}
	dir := fs.Desc
	if opts.SortDirection == store.SortAscending {
		dir = fs.Asc
	}
	q = q.OrderBy(opts.SortField, dir)

	// Totals count the whole collection even while searching; every
	// backend keeps the same collection-wide page numbers.
	totalSnaps, err := col.Documents(ctx).GetAll()
	if err != nil {
		return store.Page{}, cl.fail(ctx, "firestore.list.count", err)
	}
	total := len(totalSnaps)

	if off := opts.Offset(); off > 0 {
		discarded, err := q.Limit(off).Documents(ctx).GetAll()
		if err != nil {
			return store.Page{}, cl.fail(ctx, "firestore.list.offset", err)
		}
		if len(discarded) == off {
			q = q.StartAfter(discarded[len(discarded)-1])
		}
	}

	snaps, err := q.Limit(opts.PageSize).Documents(ctx).GetAll()
	if err != nil {
		return store.Page{}, cl.fail(ctx, "firestore.list.page", err)
	}

	items := make([]core.Expense, 0, len(snaps))
	for _, snap := range snaps {
		var doc expenseReadDoc
		if err := snap.DataTo(&doc); err != nil {
			return store.Page{}, cl.fail(ctx, "firestore.list.decode", err)
		}
		items = append(items, store.DecodeExpense(snap.Ref.ID, doc.ExpenseRecord, doc.CreatedAt, doc.UpdatedAt))
	}

	return store.Page{
		Items:       items,
		TotalItems:  total,
		TotalPages:  store.PageCount(total, opts.PageSize),
		CurrentPage: opts.Page,
	}, nil
}

func (cl *Client) Create(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	ref, _, err := cl.c.Collection(store.ExpenseCollection).Add(ctx, expenseCreateDoc{
		ExpenseRecord: store.EncodeExpense(e),
	})
	if err != nil {
		return "", cl.fail(ctx, "firestore.create", err)
	}
	slog.InfoContext(ctx, "Expense saved", "id", ref.ID, "date", e.Date)
	return ref.ID, nil
}

func (cl *Client) Update(ctx context.Context, e core.Expense) error {
	if e.ID == "" {
		return nil
	}
	if err := e.Validate(); err != nil {
		return err
	}
	updates := append(expenseUpdates(store.EncodeExpense(e)),
		fs.Update{Path: "updatedAt", Value: fs.ServerTimestamp})
	_, err := cl.c.Collection(store.ExpenseCollection).Doc(e.ID).Update(ctx, updates)
	if err != nil {
		return cl.fail(ctx, "firestore.update", err)
	}
	return nil
}

func (cl *Client) Delete(ctx context.Context, e core.Expense) error {
	if e.ID == "" {
		return nil
	}
	_, err := cl.c.Collection(store.ExpenseCollection).Doc(e.ID).Delete(ctx)
	if err != nil {
		return cl.fail(ctx, "firestore.delete", err)
	}
	slog.InfoContext(ctx, "Expense deleted", "id", e.ID)
	return nil
}

func (cl *Client) SeedBulk(ctx context.Context, rows []store.SeedRow) (int, error) {
	created := 0
	for _, row := range rows {
		e, err := store.ExpenseFromSeedRow(row)
		if err != nil {
			return created, fmt.Errorf("clean seed row %q: %w", row.Date, err)
		}
		if _, err := cl.Create(ctx, e); err != nil {
			return created, err
		}
		created++
	}
	slog.InfoContext(ctx, "Bulk seed finished", "rows", created)
	return created, nil
}

type typeReadDoc struct {
	store.TypeRecord
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

type typeCreateDoc struct {
	store.TypeRecord
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp"`
}

func (cl *Client) ListTypes(ctx context.Context) ([]core.AdditionalExpenseType, error) {
	snaps, err := cl.c.Collection(store.TypeCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, cl.fail(ctx, "firestore.listTypes", err)
	}
	out := make([]core.AdditionalExpenseType, 0, len(snaps))
	for _, snap := range snaps {
		var doc typeReadDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, cl.fail(ctx, "firestore.listTypes.decode", err)
		}
		out = append(out, store.DecodeType(snap.Ref.ID, doc.TypeRecord, doc.CreatedAt, doc.UpdatedAt))
	}
	return out, nil
}

func (cl *Client) CreateType(ctx context.Context, t core.AdditionalExpenseType) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	ref, _, err := cl.c.Collection(store.TypeCollection).Add(ctx, typeCreateDoc{
		TypeRecord: store.EncodeType(t),
	})
	if err != nil {
		return "", cl.fail(ctx, "firestore.createType", err)
	}
	return ref.ID, nil
}

func (cl *Client) UpdateType(ctx context.Context, t core.AdditionalExpenseType) error {
	if t.ID == "" {
		return nil
	}
	_, err := cl.c.Collection(store.TypeCollection).Doc(t.ID).Update(ctx, []fs.Update{
		{Path: "name", Value: t.Name},
		{Path: "description", Value: t.Description},
		{Path: "updatedAt", Value: fs.ServerTimestamp},
	})
	if err != nil {
		return cl.fail(ctx, "firestore.updateType", err)
	}
	return nil
}

func (cl *Client) DeleteType(ctx context.Context, t core.AdditionalExpenseType) error {
	if t.ID == "" {
		return nil
	}
	_, err := cl.c.Collection(store.TypeCollection).Doc(t.ID).Delete(ctx)
	if err != nil {
		return cl.fail(ctx, "firestore.deleteType", err)
	}
	return nil
}

func (cl *Client) SeedDefaultTypes(ctx context.Context) (int, error) {
	snaps, err := cl.c.Collection(store.TypeCollection).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return 0, cl.fail(ctx, "firestore.seedTypes", err)
	}
	if len(snaps) > 0 {
		return 0, nil
	}
	created := 0
	for _, t := range core.DefaultExpenseTypes() {
		if _, err := cl.CreateType(ctx, t); err != nil {
			return created, err
		}
		created++
	}
	slog.InfoContext(ctx, "Seeded default expense types", "count", created)
	return created, nil
}

type profileDoc struct {
	store.ProfileRecord
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `firestore:"updatedAt,serverTimestamp"`
	LastLoginAt time.Time `firestore:"lastLoginAt,serverTimestamp"`
}

type profileReadDoc struct {
	store.ProfileRecord
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
	LastLoginAt time.Time `firestore:"lastLoginAt"`
}

func (cl *Client) GetProfile(ctx context.Context, uid string) (core.UserProfile, error) {
	snap, err := cl.c.Collection(store.ProfileCollection).Doc(uid).Get(ctx)
	if err != nil {
		wrapped := cl.fail(ctx, "firestore.getProfile", err)
		if store.IsNotFound(wrapped) {
			return core.UserProfile{}, core.ErrProfileNotFound
		}
		return core.UserProfile{}, wrapped
	}
	var doc profileReadDoc
	if err := snap.DataTo(&doc); err != nil {
		return core.UserProfile{}, cl.fail(ctx, "firestore.getProfile.decode", err)
	}
	return store.DecodeProfile(doc.ProfileRecord, doc.CreatedAt, doc.UpdatedAt, doc.LastLoginAt), nil
}

func (cl *Client) PutProfile(ctx context.Context, p core.UserProfile) error {
	_, err := cl.c.Collection(store.ProfileCollection).Doc(p.UID).Set(ctx, profileDoc{
		ProfileRecord: store.EncodeProfile(p),
	})
	if err != nil {
		return cl.fail(ctx, "firestore.putProfile", err)
	}
	slog.InfoContext(ctx, "Profile written", "uid", p.UID)
	return nil
}

func (cl *Client) UpdateProfile(ctx context.Context, uid string, updates map[string]any) error {
	fields := make([]fs.Update, 0, len(updates)+1)
	for k, v := range updates {
		fields = append(fields, fs.Update{Path: k, Value: v})
	}
	fields = append(fields, fs.Update{Path: "updatedAt", Value: fs.ServerTimestamp})
	_, err := cl.c.Collection(store.ProfileCollection).Doc(uid).Update(ctx, fields)
	if err != nil {
		return cl.fail(ctx, "firestore.updateProfile", err)
	}
	return nil
}

func (cl *Client) ListProfiles(ctx context.Context) ([]core.UserProfile, error) {
	snaps, err := cl.c.Collection(store.ProfileCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, cl.fail(ctx, "firestore.listProfiles", err)
	}
	out := make([]core.UserProfile, 0, len(snaps))
	for _, snap := range snaps {
		var doc profileReadDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, cl.fail(ctx, "firestore.listProfiles.decode", err)
		}
		out = append(out, store.DecodeProfile(doc.ProfileRecord, doc.CreatedAt, doc.UpdatedAt, doc.LastLoginAt))
	}
	return out, nil
}

// fail logs and classifies a backend error. The repository never retries;
// callers decide how to react to the returned code.
func (cl *Client) fail(ctx context.Context, op string, err error) error {
	wrapped := store.WrapError(op, err)
	slog.ErrorContext(ctx, "Firestore operation failed", "op", op, "error", err)
	return wrapped
}

// expenseUpdates flattens a record into field updates so a document edit
// leaves createdAt untouched.
func expenseUpdates(rec store.ExpenseRecord) []fs.Update {
	return []fs.Update{
		{Path: "date", Value: rec.Date},
		{Path: "house", Value: rec.House},
		{Path: "totalElect", Value: rec.TotalElect},
		{Path: "rtAcFridge", Value: rec.RtAcFridge},
		{Path: "pheaFridge", Value: rec.PheaFridge},
		{Path: "mining", Value: rec.Mining},
		{Path: "electricity", Value: rec.Electricity},
		{Path: "water", Value: rec.Water},
		{Path: "waste", Value: rec.Waste},
		{Path: "additional", Value: rec.Additional},
		{Path: "users", Value: rec.Users},
	}
}
