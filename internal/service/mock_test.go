package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ward-diet/api/internal/database"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr error
	commits   int
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error          { m.commits++; return m.commitErr }
func (m *mockTx) Rollback(ctx context.Context) error        { return nil }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockDB implements DB. Queries never reach it; the store factories in the
// tests ignore the DBTX they are given.
type mockDB struct {
	mockTx
	tx     *mockTx
	begins int
}

func (m *mockDB) Begin(ctx context.Context) (pgx.Tx, error) {
	m.begins++
	return m.tx, nil
}

func newMockDB() *mockDB {
	return &mockDB{tx: &mockTx{}}
}

type publishedEvent struct {
	room, eventType string
	payload         interface{}
}

// mockPublisher records every event instead of broadcasting it.
type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (m *mockPublisher) Publish(room, eventType string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{room: room, eventType: eventType, payload: payload})
	return nil
}

func fixedClock(s string) Clock {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

// --- In-memory ledger store ---

// memLedgerStore implements LedgerStore over a slice kept in insertion
// order. It is safe for the concurrent inserts of a repeat.
type memLedgerStore struct {
	mu         sync.Mutex
	entries    []database.FoodIntakeEntry
	canteen    []database.CanteenOrderParams
	dayWrites  int
	locks      []string
	createHook func(arg database.FoodIntakeParams) error
}

func (m *memLedgerStore) LockPatientLedger(ctx context.Context, patientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks = append(m.locks, patientID)
	return nil
}

func (m *memLedgerStore) ListFoodIntakeByPatient(ctx context.Context, patientID string) ([]database.FoodIntakeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []database.FoodIntakeEntry{}
	for _, e := range m.entries {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLedgerStore) GetFoodIntakeEntry(ctx context.Context, id uuid.UUID) (database.FoodIntakeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return database.FoodIntakeEntry{}, pgx.ErrNoRows
}

func (m *memLedgerStore) CreateFoodIntakeEntry(ctx context.Context, arg database.FoodIntakeParams) (database.FoodIntakeEntry, error) {
	if m.createHook != nil {
		if err := m.createHook(arg); err != nil {
			return database.FoodIntakeEntry{}, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e := entryFromParams(arg)
	e.InsertedAt = time.Now()
	m.entries = append(m.entries, e)
	return e, nil
}

func (m *memLedgerStore) UpdateFoodIntakeEntry(ctx context.Context, arg database.FoodIntakeParams) (database.FoodIntakeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == arg.ID {
			updated := entryFromParams(arg)
			updated.DispatchedAt = e.DispatchedAt
			updated.InsertedAt = e.InsertedAt
			m.entries[i] = updated
			return updated, nil
		}
	}
	return database.FoodIntakeEntry{}, pgx.ErrNoRows
}

func (m *memLedgerStore) DeleteFoodIntakeEntry(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return id, nil
		}
	}
	return uuid.Nil, pgx.ErrNoRows
}

func (m *memLedgerStore) SetFoodIntakeDay(ctx context.Context, arg database.SetFoodIntakeDayParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == arg.ID {
			m.entries[i].Day = arg.Day
			m.dayWrites++
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memLedgerStore) MarkFoodIntakeDispatched(ctx context.Context, arg database.MarkFoodIntakeDispatchedParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == arg.ID {
			m.entries[i].DispatchedAt = arg.At
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memLedgerStore) CreateCanteenOrder(ctx context.Context, arg database.CanteenOrderParams) (database.CanteenOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canteen = append(m.canteen, arg)
	return database.CanteenOrder{
		ID:            arg.ID,
		Source:        arg.Source,
		IntakeEntryID: arg.IntakeEntryID,
		PatientID:     arg.PatientID,
		PatientName:   arg.PatientName,
		FoodItems:     arg.FoodItems,
		Date:          arg.Date,
		FoodItem:      arg.FoodItem,
		Status:        "pending",
	}, nil
}

// byFood returns the stored entry with the given food item.
func (m *memLedgerStore) byFood(food string) database.FoodIntakeEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.FoodItem == food {
			return e
		}
	}
	return database.FoodIntakeEntry{}
}

func entryFromParams(arg database.FoodIntakeParams) database.FoodIntakeEntry {
	return database.FoodIntakeEntry{
		ID:           arg.ID,
		PatientID:    arg.PatientID,
		Day:          arg.Day,
		Date:         arg.Date,
		Time:         arg.Time,
		Ampm:         arg.Ampm,
		Category:     arg.Category,
		FoodItem:     arg.FoodItem,
		IntakeAmount: arg.IntakeAmount,
		Unit:         arg.Unit,
		Calories:     arg.Calories,
		EndDate:      arg.EndDate,
		Comments:     arg.Comments,
		Status:       arg.Status,
		CreatedAt:    arg.CreatedAt,
	}
}

func newTestLedger(store *memLedgerStore, now Clock) (*LedgerService, *mockDB, *mockPublisher) {
	db := newMockDB()
	pub := &mockPublisher{}
	newStore := func(database.DBTX) LedgerStore { return store }
	return NewLedgerService(db, newStore, now, pub), db, pub
}
