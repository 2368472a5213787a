package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/dietplan"
	"github.com/ward-diet/api/internal/enum"
	"github.com/ward-diet/api/internal/ws"
)

// Errors returned by the ledger service.
var (
	ErrNoPatientSelected = errors.New("no patient selected")
	ErrNotConfirmed      = errors.New("delete not confirmed")
	ErrEntryNotFound     = errors.New("food intake entry not found")
	ErrNothingSelected   = errors.New("no entries selected")
	ErrNotEligible       = errors.New("only IP patients can send food intake to the canteen")
	ErrAlreadyDispatched = errors.New("entry was already sent to the canteen")
	ErrPatientMismatch   = errors.New("entry belongs to another patient")
)

// maxRepeatWorkers bounds the concurrent clone inserts of a repeat.
const maxRepeatWorkers = 4

// LedgerStore defines the DB methods the ledger needs.
// Satisfied by *database.Queries (and its WithTx variant).
type LedgerStore interface {
	LockPatientLedger(ctx context.Context, patientID string) error
	ListFoodIntakeByPatient(ctx context.Context, patientID string) ([]database.FoodIntakeEntry, error)
	GetFoodIntakeEntry(ctx context.Context, id uuid.UUID) (database.FoodIntakeEntry, error)
	CreateFoodIntakeEntry(ctx context.Context, arg database.FoodIntakeParams) (database.FoodIntakeEntry, error)
	UpdateFoodIntakeEntry(ctx context.Context, arg database.FoodIntakeParams) (database.FoodIntakeEntry, error)
	DeleteFoodIntakeEntry(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	SetFoodIntakeDay(ctx context.Context, arg database.SetFoodIntakeDayParams) error
	MarkFoodIntakeDispatched(ctx context.Context, arg database.MarkFoodIntakeDispatchedParams) error
	CreateCanteenOrder(ctx context.Context, arg database.CanteenOrderParams) (database.CanteenOrder, error)
}

// NewLedgerStore creates a LedgerStore from a DBTX (pool or tx).
type NewLedgerStore func(db database.DBTX) LedgerStore

// IntakeInput is a validated ledger row as entered on the intake form.
type IntakeInput struct {
	PatientID    string
	Date         string
	Time         string
	Ampm         string
	Category     string
	FoodItem     string
	IntakeAmount string
	Unit         string
	Calories     string
	EndDate      string
	Comments     string
	Status       string
}

// IntakePatch carries the fields of an edit. Nil fields are left as they are.
type IntakePatch struct {
	Date         *string
	Time         *string
	Ampm         *string
	Category     *string
	FoodItem     *string
	IntakeAmount *string
	Unit         *string
	Calories     *string
	EndDate      *string
	Comments     *string
	Status       *string
}

// RepeatSelection copies one entry to Date, or to tomorrow when Date is empty.
type RepeatSelection struct {
	EntryID uuid.UUID
	Date    string
}

// CanteenPatient identifies who a ledger dispatch is for.
type CanteenPatient struct {
	PatientID     string
	PatientType   string
	PatientName   string
	ContactNumber string
	Bed           string
	Ward          string
}

// HistoryDay is one date group of a patient's full intake history.
type HistoryDay struct {
	Day     string                     `json:"day"`
	Date    string                     `json:"date"`
	Entries []database.FoodIntakeEntry `json:"entries"`
}

// LedgerService maintains each patient's food intake ledger and its
// chronological day numbering.
type LedgerService struct {
	db        DB
	newStore  NewLedgerStore
	now       Clock
	publisher Publisher
}

// NewLedgerService creates a LedgerService. A nil publisher disables
// realtime events.
func NewLedgerService(db DB, newStore NewLedgerStore, now Clock, publisher Publisher) *LedgerService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &LedgerService{db: db, newStore: newStore, now: now, publisher: publisher}
}

// List returns the patient's entries in display order. Entries already sent
// to the canteen are only included when includeDispatched is set.
func (s *LedgerService) List(ctx context.Context, patientID string, includeDispatched bool) ([]database.FoodIntakeEntry, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, ErrNoPatientSelected
	}
	entries, err := s.newStore(s.db).ListFoodIntakeByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list food intake: %w", err)
	}
	if !includeDispatched {
		entries = pendingEntries(entries)
	}
	dietplan.SortForDisplay(entries, entrySortKey)
	return entries, nil
}

// History groups every entry of the patient, dispatched or not, by date.
func (s *LedgerService) History(ctx context.Context, patientID string) ([]HistoryDay, error) {
	entries, err := s.List(ctx, patientID, true)
	if err != nil {
		return nil, err
	}
	idx := dietplan.NewDayIndex(entryDates(entries)...)

	days := []HistoryDay{}
	for i, e := range entries {
		if dietplan.FirstOfDay(entries, i, entryDate) {
			date := dietplan.NormalizeDate(e.Date)
			days = append(days, HistoryDay{Day: idx.Label(date), Date: date})
		}
		last := &days[len(days)-1]
		last.Entries = append(last.Entries, e)
	}
	return days, nil
}

// Add records a new entry and renumbers the patient's ledger.
func (s *LedgerService) Add(ctx context.Context, in IntakeInput) (database.FoodIntakeEntry, error) {
	in.PatientID = strings.TrimSpace(in.PatientID)
	if in.PatientID == "" {
		return database.FoodIntakeEntry{}, ErrNoPatientSelected
	}
	id, err := uuid.NewV7()
	if err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("generate id: %w", err)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if err := store.LockPatientLedger(ctx, in.PatientID); err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("lock ledger: %w", err)
	}

	existing, err := store.ListFoodIntakeByPatient(ctx, in.PatientID)
	if err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("list food intake: %w", err)
	}
	_, idx := dietplan.NewDayIndex(entryDates(pendingEntries(existing))...).Assign(in.Date)

	params := in.params(id, s.now())
	params.Day = idx.Label(in.Date)
	created, err := store.CreateFoodIntakeEntry(ctx, params)
	if err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("create food intake: %w", err)
	}

	if _, err := renumber(ctx, store, append(existing, created)); err != nil {
		return database.FoodIntakeEntry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

// Edit applies patch to a pending entry. createdAt is never changed; a new
// date renumbers the whole ledger.
func (s *LedgerService) Edit(ctx context.Context, patientID string, id uuid.UUID, patch IntakePatch) (database.FoodIntakeEntry, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	entry, err := s.loadPending(ctx, store, patientID, id)
	if err != nil {
		return database.FoodIntakeEntry{}, err
	}

	if err := store.LockPatientLedger(ctx, entry.PatientID); err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("lock ledger: %w", err)
	}

	params := patch.apply(entry)
	updated, err := store.UpdateFoodIntakeEntry(ctx, params)
	if err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("update food intake: %w", err)
	}

	ledger, err := store.ListFoodIntakeByPatient(ctx, entry.PatientID)
	if err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("list food intake: %w", err)
	}
	days, err := renumber(ctx, store, ledger)
	if err != nil {
		return database.FoodIntakeEntry{}, err
	}
	updated.Day = days[updated.ID]

	if err := tx.Commit(ctx); err != nil {
		return database.FoodIntakeEntry{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// Delete removes a pending entry once the user has confirmed it.
func (s *LedgerService) Delete(ctx context.Context, patientID string, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	entry, err := s.loadPending(ctx, store, patientID, id)
	if err != nil {
		return err
	}
	if err := store.LockPatientLedger(ctx, entry.PatientID); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	if _, err := store.DeleteFoodIntakeEntry(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("delete food intake: %w", err)
	}

	ledger, err := store.ListFoodIntakeByPatient(ctx, entry.PatientID)
	if err != nil {
		return fmt.Errorf("list food intake: %w", err)
	}
	if _, err := renumber(ctx, store, ledger); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Repeat copies the selected entries to new dates for patientID. Clones are
// inserted concurrently on the pool; the ledger is renumbered once they have
// all finished, even when one of them failed.
func (s *LedgerService) Repeat(ctx context.Context, patientID string, selections []RepeatSelection) ([]database.FoodIntakeEntry, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, ErrNoPatientSelected
	}
	if len(selections) == 0 {
		return nil, ErrNothingSelected
	}

	now := s.now()
	defaultDate := dietplan.Tomorrow(now)
	createdAt := dietplan.FormatCreatedAt(now)

	store := s.newStore(s.db)
	clones := make([]database.FoodIntakeParams, len(selections))
	for i, sel := range selections {
		src, err := store.GetFoodIntakeEntry(ctx, sel.EntryID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, sel.EntryID)
			}
			return nil, fmt.Errorf("get food intake: %w", err)
		}
		if src.PatientID != patientID {
			return nil, fmt.Errorf("%w: %s", ErrPatientMismatch, sel.EntryID)
		}
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
		date := strings.TrimSpace(sel.Date)
		if date == "" {
			date = defaultDate
		}
		clones[i] = cloneParams(src, id, patientID, date, createdAt)
	}

	created := make([]database.FoodIntakeEntry, len(clones))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxRepeatWorkers)
	for i := range clones {
		g.Go(func() error {
			e, err := s.newStore(s.db).CreateFoodIntakeEntry(gctx, clones[i])
			if err != nil {
				return fmt.Errorf("create repeated entry: %w", err)
			}
			created[i] = e
			return nil
		})
	}
	cloneErr := g.Wait()

	days, err := s.renumberPatient(ctx, patientID)
	if cloneErr != nil {
		return nil, cloneErr
	}
	if err != nil {
		return nil, err
	}

	for i := range created {
		created[i].Day = days[created[i].ID]
	}
	return created, nil
}

// SendToCanteen copies every pending entry of an IP patient into the
// kitchen queue and marks those entries as dispatched.
func (s *LedgerService) SendToCanteen(ctx context.Context, p CanteenPatient) ([]database.CanteenOrder, error) {
	if strings.TrimSpace(p.PatientID) == "" {
		return nil, ErrNoPatientSelected
	}
	if !strings.EqualFold(strings.TrimSpace(p.PatientType), enum.PatientTypeIP) {
		return nil, ErrNotEligible
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if err := store.LockPatientLedger(ctx, p.PatientID); err != nil {
		return nil, fmt.Errorf("lock ledger: %w", err)
	}

	ledger, err := store.ListFoodIntakeByPatient(ctx, p.PatientID)
	if err != nil {
		return nil, fmt.Errorf("list food intake: %w", err)
	}
	pending := pendingEntries(ledger)
	dietplan.SortForDisplay(pending, entrySortKey)

	at := pgtype.Timestamptz{Time: s.now(), Valid: true}
	orders := make([]database.CanteenOrder, 0, len(pending))
	for _, e := range pending {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate id: %w", err)
		}
		order, err := store.CreateCanteenOrder(ctx, database.CanteenOrderParams{
			ID:            id,
			Source:        enum.CanteenSourceFoodIntake,
			IntakeEntryID: pgtype.UUID{Bytes: e.ID, Valid: true},
			PatientID:     p.PatientID,
			PatientName:   p.PatientName,
			ContactNumber: p.ContactNumber,
			Bed:           p.Bed,
			Ward:          p.Ward,
			FoodItems:     []string{e.FoodItem},
			SpecialNotes:  e.Comments,
			Date:          e.Date,
			Time:          e.Time,
			Category:      e.Category,
			FoodItem:      e.FoodItem,
			IntakeAmount:  e.IntakeAmount,
			Unit:          e.Unit,
			EndDate:       e.EndDate,
		})
		if err != nil {
			return nil, fmt.Errorf("create canteen order: %w", err)
		}
		if err := store.MarkFoodIntakeDispatched(ctx, database.MarkFoodIntakeDispatchedParams{ID: e.ID, At: at}); err != nil {
			return nil, fmt.Errorf("mark dispatched: %w", err)
		}
		orders = append(orders, order)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	for _, o := range orders {
		if err := s.publisher.Publish(ws.RoomCanteen, ws.EventCanteenOrderCreated, o); err != nil {
			log.Warn().Err(err).Str("canteen_order_id", o.ID.String()).Msg("publish canteen order")
		}
	}
	return orders, nil
}

func (s *LedgerService) loadPending(ctx context.Context, store LedgerStore, patientID string, id uuid.UUID) (database.FoodIntakeEntry, error) {
	entry, err := store.GetFoodIntakeEntry(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.FoodIntakeEntry{}, ErrEntryNotFound
		}
		return database.FoodIntakeEntry{}, fmt.Errorf("get food intake: %w", err)
	}
	if patientID != "" && entry.PatientID != patientID {
		return database.FoodIntakeEntry{}, ErrPatientMismatch
	}
	if entry.DispatchedAt.Valid {
		return database.FoodIntakeEntry{}, ErrAlreadyDispatched
	}
	return entry, nil
}

func (s *LedgerService) renumberPatient(ctx context.Context, patientID string) (map[uuid.UUID]string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if err := store.LockPatientLedger(ctx, patientID); err != nil {
		return nil, fmt.Errorf("lock ledger: %w", err)
	}
	ledger, err := store.ListFoodIntakeByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list food intake: %w", err)
	}
	days, err := renumber(ctx, store, ledger)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return days, nil
}

// renumber rewrites the day of every pending entry whose stored day no
// longer matches its rank among the pending dates. Dispatched entries keep
// the day they were sent with.
func renumber(ctx context.Context, store LedgerStore, ledger []database.FoodIntakeEntry) (map[uuid.UUID]string, error) {
	pending := pendingEntries(ledger)
	idx := dietplan.NewDayIndex(entryDates(pending)...)

	days := make(map[uuid.UUID]string, len(ledger))
	for _, e := range ledger {
		days[e.ID] = e.Day
	}
	for _, e := range pending {
		label := idx.Label(e.Date)
		days[e.ID] = label
		if label == e.Day {
			continue
		}
		if err := store.SetFoodIntakeDay(ctx, database.SetFoodIntakeDayParams{ID: e.ID, Day: label}); err != nil {
			return nil, fmt.Errorf("set day of %s: %w", e.ID, err)
		}
	}
	return days, nil
}

func pendingEntries(entries []database.FoodIntakeEntry) []database.FoodIntakeEntry {
	out := make([]database.FoodIntakeEntry, 0, len(entries))
	for _, e := range entries {
		if !e.DispatchedAt.Valid {
			out = append(out, e)
		}
	}
	return out
}

func entryDates(entries []database.FoodIntakeEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Date
	}
	return out
}

func entryDate(e database.FoodIntakeEntry) string { return e.Date }

func entrySortKey(e database.FoodIntakeEntry) dietplan.SortKey {
	return dietplan.SortKey{Date: e.Date, CreatedAt: e.CreatedAt}
}

func (in IntakeInput) params(id uuid.UUID, now time.Time) database.FoodIntakeParams {
	status := in.Status
	if status == "" {
		status = enum.IntakeStatusActive
	}
	return database.FoodIntakeParams{
		ID:           id,
		PatientID:    in.PatientID,
		Date:         dietplan.NormalizeDate(in.Date),
		Time:         in.Time,
		Ampm:         in.Ampm,
		Category:     in.Category,
		FoodItem:     in.FoodItem,
		IntakeAmount: in.IntakeAmount,
		Unit:         in.Unit,
		Calories:     in.Calories,
		EndDate:      in.EndDate,
		Comments:     in.Comments,
		Status:       status,
		CreatedAt:    dietplan.FormatCreatedAt(now),
	}
}

func (p IntakePatch) apply(e database.FoodIntakeEntry) database.FoodIntakeParams {
	out := database.FoodIntakeParams{
		ID:           e.ID,
		PatientID:    e.PatientID,
		Day:          e.Day,
		Date:         e.Date,
		Time:         e.Time,
		Ampm:         e.Ampm,
		Category:     e.Category,
		FoodItem:     e.FoodItem,
		IntakeAmount: e.IntakeAmount,
		Unit:         e.Unit,
		Calories:     e.Calories,
		EndDate:      e.EndDate,
		Comments:     e.Comments,
		Status:       e.Status,
		CreatedAt:    e.CreatedAt,
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	if p.Date != nil {
		out.Date = dietplan.NormalizeDate(*p.Date)
	}
	set(&out.Time, p.Time)
	set(&out.Ampm, p.Ampm)
	set(&out.Category, p.Category)
	set(&out.FoodItem, p.FoodItem)
	set(&out.IntakeAmount, p.IntakeAmount)
	set(&out.Unit, p.Unit)
	set(&out.Calories, p.Calories)
	set(&out.EndDate, p.EndDate)
	set(&out.Comments, p.Comments)
	set(&out.Status, p.Status)
	return out
}

func cloneParams(src database.FoodIntakeEntry, id uuid.UUID, patientID, date, createdAt string) database.FoodIntakeParams {
	return database.FoodIntakeParams{
		ID:           id,
		PatientID:    patientID,
		Date:         dietplan.NormalizeDate(date),
		Time:         src.Time,
		Ampm:         src.Ampm,
		Category:     src.Category,
		FoodItem:     src.FoodItem,
		IntakeAmount: src.IntakeAmount,
		Unit:         src.Unit,
		Calories:     src.Calories,
		EndDate:      src.EndDate,
		Comments:     src.Comments,
		Status:       src.Status,
		CreatedAt:    createdAt,
	}
}
