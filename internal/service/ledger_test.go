package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/enum"
	"github.com/ward-diet/api/internal/ws"
)

const testPatient = "P-100"

func addEntry(t *testing.T, svc *LedgerService, date, food string) database.FoodIntakeEntry {
	t.Helper()
	e, err := svc.Add(context.Background(), IntakeInput{PatientID: testPatient, Date: date, FoodItem: food})
	if err != nil {
		t.Fatalf("add %s on %s: %v", food, date, err)
	}
	return e
}

func strPtr(s string) *string { return &s }

// =====================
// Add
// =====================

func TestAdd_NoPatientSelected(t *testing.T) {
	svc, db, _ := newTestLedger(&memLedgerStore{}, fixedClock("2024-06-01 09:00:00"))

	_, err := svc.Add(context.Background(), IntakeInput{PatientID: "  ", Date: "2024-06-01"})
	if !errors.Is(err, ErrNoPatientSelected) {
		t.Fatalf("expected ErrNoPatientSelected, got %v", err)
	}
	if db.begins != 0 {
		t.Errorf("expected no transaction, got %d", db.begins)
	}
}

func TestAdd_AssignsChronologicalDays(t *testing.T) {
	store := &memLedgerStore{}
	svc, db, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))

	first := addEntry(t, svc, "2024-06-03", "Rice")
	if first.Day != "1" {
		t.Errorf("first entry: expected day 1, got %q", first.Day)
	}

	earlier := addEntry(t, svc, "2024-06-01T07:30:00Z", "Oats")
	if earlier.Day != "1" {
		t.Errorf("earlier entry: expected day 1, got %q", earlier.Day)
	}
	if earlier.Date != "2024-06-01" {
		t.Errorf("expected normalized date, got %q", earlier.Date)
	}
	if got := store.byFood("Rice").Day; got != "2" {
		t.Errorf("later entry should be renumbered to day 2, got %q", got)
	}

	same := addEntry(t, svc, "2024-06-03", "Dal")
	if same.Day != "2" {
		t.Errorf("same date should share day 2, got %q", same.Day)
	}
	if db.tx.commits != 3 {
		t.Errorf("expected 3 commits, got %d", db.tx.commits)
	}
}

func TestAdd_EmptyDateHasNoDay(t *testing.T) {
	store := &memLedgerStore{}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))

	addEntry(t, svc, "2024-06-02", "Rice")
	e := addEntry(t, svc, "", "Water")
	if e.Day != "" {
		t.Errorf("expected empty day, got %q", e.Day)
	}
	if got := store.byFood("Rice").Day; got != "1" {
		t.Errorf("dated entry should stay day 1, got %q", got)
	}
}

func TestAdd_StampsCreatedAtAndDefaultStatus(t *testing.T) {
	svc, _, _ := newTestLedger(&memLedgerStore{}, fixedClock("2024-06-01 09:15:30"))

	e := addEntry(t, svc, "2024-06-01", "Rice")
	if e.CreatedAt != "2024-06-01 09:15:30" {
		t.Errorf("expected local createdAt, got %q", e.CreatedAt)
	}
	if e.Status != enum.IntakeStatusActive {
		t.Errorf("expected status %q, got %q", enum.IntakeStatusActive, e.Status)
	}
}

func TestAdd_DispatchedEntriesKeepTheirDay(t *testing.T) {
	sent := database.FoodIntakeEntry{
		ID:           uuid.New(),
		PatientID:    testPatient,
		Day:          "1",
		Date:         "2024-06-01",
		FoodItem:     "Soup",
		DispatchedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}
	store := &memLedgerStore{entries: []database.FoodIntakeEntry{sent}}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))

	e := addEntry(t, svc, "2024-06-05", "Rice")
	if e.Day != "1" {
		t.Errorf("pending ledger restarts at day 1, got %q", e.Day)
	}
	if got := store.byFood("Soup").Day; got != "1" {
		t.Errorf("dispatched entry must keep its day, got %q", got)
	}
}

// =====================
// Edit / Delete
// =====================

func TestEdit_NewDateRenumbers(t *testing.T) {
	store := &memLedgerStore{}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))

	a := addEntry(t, svc, "2024-06-01", "Rice")
	addEntry(t, svc, "2024-06-02", "Dal")

	updated, err := svc.Edit(context.Background(), testPatient, a.ID, IntakePatch{Date: strPtr("2024-06-03")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Day != "2" {
		t.Errorf("moved entry: expected day 2, got %q", updated.Day)
	}
	if got := store.byFood("Dal").Day; got != "1" {
		t.Errorf("remaining entry: expected day 1, got %q", got)
	}
	if updated.CreatedAt != a.CreatedAt {
		t.Errorf("createdAt changed from %q to %q", a.CreatedAt, updated.CreatedAt)
	}
}

func TestEdit_KeepsUnpatchedFields(t *testing.T) {
	svc, _, _ := newTestLedger(&memLedgerStore{}, fixedClock("2024-06-01 09:00:00"))

	a, err := svc.Add(context.Background(), IntakeInput{
		PatientID: testPatient, Date: "2024-06-01", FoodItem: "Rice", Unit: "g", IntakeAmount: "100",
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := svc.Edit(context.Background(), testPatient, a.ID, IntakePatch{IntakeAmount: strPtr("150")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.IntakeAmount != "150" || updated.Unit != "g" || updated.FoodItem != "Rice" {
		t.Errorf("unexpected entry after edit: %+v", updated)
	}
}

func TestEdit_DispatchedEntryRejected(t *testing.T) {
	id := uuid.New()
	store := &memLedgerStore{entries: []database.FoodIntakeEntry{{
		ID: id, PatientID: testPatient, Date: "2024-06-01", Day: "1",
		DispatchedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true},
	}}}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))

	_, err := svc.Edit(context.Background(), testPatient, id, IntakePatch{Comments: strPtr("late")})
	if !errors.Is(err, ErrAlreadyDispatched) {
		t.Fatalf("expected ErrAlreadyDispatched, got %v", err)
	}
}

func TestEdit_OtherPatientRejected(t *testing.T) {
	store := &memLedgerStore{}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))
	a := addEntry(t, svc, "2024-06-01", "Rice")

	_, err := svc.Edit(context.Background(), "P-999", a.ID, IntakePatch{Comments: strPtr("x")})
	if !errors.Is(err, ErrPatientMismatch) {
		t.Fatalf("expected ErrPatientMismatch, got %v", err)
	}
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	store := &memLedgerStore{}
	svc, db, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))
	a := addEntry(t, svc, "2024-06-01", "Rice")
	begins := db.begins

	err := svc.Delete(context.Background(), testPatient, a.ID, false)
	if !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if db.begins != begins {
		t.Error("unconfirmed delete must not open a transaction")
	}
	if store.byFood("Rice").ID != a.ID {
		t.Error("entry should still exist")
	}
}

func TestDelete_RenumbersRemaining(t *testing.T) {
	store := &memLedgerStore{}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))

	a := addEntry(t, svc, "2024-06-01", "Rice")
	addEntry(t, svc, "2024-06-02", "Dal")
	addEntry(t, svc, "2024-06-04", "Soup")

	if err := svc.Delete(context.Background(), testPatient, a.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.byFood("Dal").Day; got != "1" {
		t.Errorf("Dal: expected day 1, got %q", got)
	}
	if got := store.byFood("Soup").Day; got != "2" {
		t.Errorf("Soup: expected day 2, got %q", got)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _ := newTestLedger(&memLedgerStore{}, fixedClock("2024-06-01 09:00:00"))

	err := svc.Delete(context.Background(), testPatient, uuid.New(), true)
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

// =====================
// List / History
// =====================

func TestList_SortsByDateThenCreatedAt(t *testing.T) {
	store := &memLedgerStore{entries: []database.FoodIntakeEntry{
		{ID: uuid.New(), PatientID: testPatient, Date: "2024-06-02", FoodItem: "C", CreatedAt: "2024-06-01 08:00:00"},
		{ID: uuid.New(), PatientID: testPatient, Date: "2024-06-01", FoodItem: "B", CreatedAt: "2024-06-01 09:00:00"},
		{ID: uuid.New(), PatientID: testPatient, Date: "2024-06-01", FoodItem: "A", CreatedAt: "2024-06-01 07:00:00"},
		{ID: uuid.New(), PatientID: "other", Date: "2024-05-01", FoodItem: "X"},
	}}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))

	entries, err := svc.List(context.Background(), testPatient, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got string
	for _, e := range entries {
		got += e.FoodItem
	}
	if got != "ABC" {
		t.Errorf("expected order ABC, got %s", got)
	}
}

func TestList_HidesDispatchedUnlessAsked(t *testing.T) {
	store := &memLedgerStore{entries: []database.FoodIntakeEntry{
		{ID: uuid.New(), PatientID: testPatient, Date: "2024-06-01", FoodItem: "A"},
		{ID: uuid.New(), PatientID: testPatient, Date: "2024-06-01", FoodItem: "B",
			DispatchedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true}},
	}}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))

	pending, _ := svc.List(context.Background(), testPatient, false)
	if len(pending) != 1 {
		t.Errorf("expected 1 pending entry, got %d", len(pending))
	}
	all, _ := svc.List(context.Background(), testPatient, true)
	if len(all) != 2 {
		t.Errorf("expected 2 entries, got %d", len(all))
	}
}

func TestHistory_GroupsByDate(t *testing.T) {
	store := &memLedgerStore{entries: []database.FoodIntakeEntry{
		{ID: uuid.New(), PatientID: testPatient, Date: "2024-06-03", FoodItem: "C"},
		{ID: uuid.New(), PatientID: testPatient, Date: "2024-06-01", FoodItem: "A",
			DispatchedAt: pgtype.Timestamptz{Time: time.Now(), Valid: true}},
		{ID: uuid.New(), PatientID: testPatient, Date: "2024-06-01", FoodItem: "B"},
	}}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-04 09:00:00"))

	days, err := svc.History(context.Background(), testPatient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(days))
	}
	if days[0].Day != "1" || days[0].Date != "2024-06-01" || len(days[0].Entries) != 2 {
		t.Errorf("unexpected first group: %+v", days[0])
	}
	if days[1].Day != "2" || len(days[1].Entries) != 1 {
		t.Errorf("unexpected second group: %+v", days[1])
	}
}

// =====================
// Repeat
// =====================

func TestRepeat_DefaultsToTomorrow(t *testing.T) {
	store := &memLedgerStore{}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 22:00:00"))
	src := addEntry(t, svc, "2024-06-01", "Rice")

	clones, err := svc.Repeat(context.Background(), testPatient, []RepeatSelection{{EntryID: src.ID}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clones) != 1 {
		t.Fatalf("expected 1 clone, got %d", len(clones))
	}
	c := clones[0]
	if c.Date != "2024-06-02" {
		t.Errorf("expected tomorrow's date, got %q", c.Date)
	}
	if c.Day != "2" {
		t.Errorf("expected day 2, got %q", c.Day)
	}
	if c.ID == src.ID || c.FoodItem != "Rice" {
		t.Errorf("clone should be a new entry with the same food: %+v", c)
	}
}

func TestRepeat_ExplicitDatesRenumberLedger(t *testing.T) {
	store := &memLedgerStore{}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-05 09:00:00"))
	a := addEntry(t, svc, "2024-06-05", "Rice")
	b := addEntry(t, svc, "2024-06-05", "Dal")

	clones, err := svc.Repeat(context.Background(), testPatient, []RepeatSelection{
		{EntryID: a.ID, Date: "2024-06-03"},
		{EntryID: b.ID, Date: "2024-06-07"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clones[0].Day != "1" || clones[1].Day != "3" {
		t.Errorf("expected clone days 1 and 3, got %q and %q", clones[0].Day, clones[1].Day)
	}
	if got := store.byFood("Rice").Day; got != "2" {
		t.Errorf("original entry should move to day 2, got %q", got)
	}
}

func TestRepeat_NothingSelected(t *testing.T) {
	svc, _, _ := newTestLedger(&memLedgerStore{}, fixedClock("2024-06-01 09:00:00"))

	_, err := svc.Repeat(context.Background(), testPatient, nil)
	if !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("expected ErrNothingSelected, got %v", err)
	}
}

func TestRepeat_UnknownEntry(t *testing.T) {
	svc, _, _ := newTestLedger(&memLedgerStore{}, fixedClock("2024-06-01 09:00:00"))

	_, err := svc.Repeat(context.Background(), testPatient, []RepeatSelection{{EntryID: uuid.New()}})
	if !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}
}

func TestRepeat_OtherPatientsEntryRejected(t *testing.T) {
	store := &memLedgerStore{}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))
	src := addEntry(t, svc, "2024-06-02", "Rice")

	_, err := svc.Repeat(context.Background(), "P-999", []RepeatSelection{{EntryID: src.ID, Date: "2024-07-01"}})
	if !errors.Is(err, ErrPatientMismatch) {
		t.Fatalf("expected ErrPatientMismatch, got %v", err)
	}
	if other, _ := store.ListFoodIntakeByPatient(context.Background(), "P-999"); len(other) != 0 {
		t.Errorf("expected no clones in P-999's ledger, got %d", len(other))
	}
}

func TestLedgerWrites_LockPatientLedger(t *testing.T) {
	store := &memLedgerStore{}
	svc, _, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))
	ctx := context.Background()

	a := addEntry(t, svc, "2024-06-02", "Rice")
	if _, err := svc.Edit(ctx, testPatient, a.ID, IntakePatch{Date: strPtr("2024-06-03")}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := svc.Repeat(ctx, testPatient, []RepeatSelection{{EntryID: a.ID}}); err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if err := svc.Delete(ctx, testPatient, a.ID, true); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(store.locks) != 4 {
		t.Fatalf("expected one lock per ledger transaction, got %v", store.locks)
	}
	for _, pid := range store.locks {
		if pid != testPatient {
			t.Errorf("locked %q, want %q", pid, testPatient)
		}
	}
}

func TestRepeat_InsertFailureStillRenumbers(t *testing.T) {
	store := &memLedgerStore{}
	svc, db, _ := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))
	a := addEntry(t, svc, "2024-06-02", "Rice")
	b := addEntry(t, svc, "2024-06-02", "Dal")

	store.createHook = func(arg database.FoodIntakeParams) error {
		if arg.FoodItem == "Dal" {
			return errors.New("insert failed")
		}
		return nil
	}
	commits := db.tx.commits

	_, err := svc.Repeat(context.Background(), testPatient, []RepeatSelection{
		{EntryID: a.ID, Date: "2024-06-01"},
		{EntryID: b.ID, Date: "2024-06-01"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if db.tx.commits != commits+1 {
		t.Error("expected the renumber transaction to commit")
	}
	if got := store.byFood("Dal").Day; got != "2" {
		t.Errorf("existing entries should be renumbered around the clone, got %q", got)
	}
}

// =====================
// SendToCanteen
// =====================

func TestSendToCanteen_OPPatientNotEligible(t *testing.T) {
	store := &memLedgerStore{}
	svc, db, pub := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))
	addEntry(t, svc, "2024-06-01", "Rice")
	begins := db.begins

	_, err := svc.SendToCanteen(context.Background(), CanteenPatient{PatientID: testPatient, PatientType: "OP"})
	if !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible, got %v", err)
	}
	if db.begins != begins || len(store.canteen) != 0 || len(pub.events) != 0 {
		t.Error("ineligible dispatch must not write or publish anything")
	}
}

func TestSendToCanteen_DispatchesPendingEntries(t *testing.T) {
	store := &memLedgerStore{}
	svc, _, pub := newTestLedger(store, fixedClock("2024-06-01 09:00:00"))
	addEntry(t, svc, "2024-06-02", "Dal")
	addEntry(t, svc, "2024-06-01", "Rice")

	orders, err := svc.SendToCanteen(context.Background(), CanteenPatient{
		PatientID: testPatient, PatientType: "ip", PatientName: "Asha", Bed: "12",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 canteen orders, got %d", len(orders))
	}
	if orders[0].FoodItem != "Rice" || orders[1].FoodItem != "Dal" {
		t.Errorf("orders should follow display order, got %s then %s", orders[0].FoodItem, orders[1].FoodItem)
	}
	for _, p := range store.canteen {
		if p.Source != enum.CanteenSourceFoodIntake || !p.IntakeEntryID.Valid || p.PatientName != "Asha" {
			t.Errorf("unexpected canteen params: %+v", p)
		}
	}
	if !store.byFood("Rice").DispatchedAt.Valid || !store.byFood("Dal").DispatchedAt.Valid {
		t.Error("entries should be marked dispatched")
	}
	if len(pub.events) != 2 || pub.events[0].room != ws.RoomCanteen || pub.events[0].eventType != ws.EventCanteenOrderCreated {
		t.Errorf("unexpected events: %+v", pub.events)
	}

	again, err := svc.SendToCanteen(context.Background(), CanteenPatient{PatientID: testPatient, PatientType: "IP"})
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("dispatched entries must not be sent twice, got %d", len(again))
	}
}
