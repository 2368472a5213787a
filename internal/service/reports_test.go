package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/enum"
)

// mockReportStore implements ReportStore over fixed rows.
type mockReportStore struct {
	requests []database.DietRequest
	orders   []database.DietOrder
	tickets  []database.CanteenOrder
	foods    []database.FoodItem
	err      error
}

func (m *mockReportStore) ListDietRequests(ctx context.Context) ([]database.DietRequest, error) {
	return m.requests, m.err
}
func (m *mockReportStore) ListDietOrders(ctx context.Context) ([]database.DietOrder, error) {
	return m.orders, m.err
}
func (m *mockReportStore) ListCanteenOrders(ctx context.Context) ([]database.CanteenOrder, error) {
	return m.tickets, m.err
}
func (m *mockReportStore) ListCanteenOrdersByPatient(ctx context.Context, patientID string) ([]database.CanteenOrder, error) {
	var out []database.CanteenOrder
	for _, t := range m.tickets {
		if t.PatientID == patientID {
			out = append(out, t)
		}
	}
	return out, m.err
}
func (m *mockReportStore) ListFoodItems(ctx context.Context) ([]database.FoodItem, error) {
	return m.foods, m.err
}

func makeNumeric(val string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(val)
	return n
}

func TestDashboard_CountsWithinWindow(t *testing.T) {
	store := &mockReportStore{
		requests: []database.DietRequest{
			{Status: enum.RequestStatusPending, Date: "2024-03-02"},
			{Status: enum.RequestStatusOrderPlaced, Date: "2024-03-05T10:00:00Z"},
			{Status: enum.RequestStatusOrderPlaced, Date: "2024-01-15"},
			{Status: enum.RequestStatusRejected, Date: "2024-03-10"},
			{Status: enum.RequestStatusPending},
			{Status: enum.RequestStatusOrderPlaced, Date: "2023-12-31"},
		},
		orders: []database.DietOrder{
			{ApprovalStatus: enum.ApprovalStatusApproved, Status: enum.DietOrderStatusActive},
			{ApprovalStatus: enum.ApprovalStatusApproved, Status: enum.DietOrderStatusPaused},
			{ApprovalStatus: enum.ApprovalStatusPending, Status: enum.DietOrderStatusActive},
		},
		tickets: []database.CanteenOrder{
			{Status: enum.CanteenStatusPending},
			{Status: enum.CanteenStatusPending},
			{Status: enum.CanteenStatusDelivered},
		},
	}
	svc := NewReportService(store, fixedClock("2024-03-20 12:00:00"))

	d, err := svc.Dashboard(context.Background(), "2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ApprovalCounts{Pending: 2, Approved: 1, Rejected: 1, Total: 4}
	if d.Approvals != want {
		t.Errorf("expected %+v, got %+v", want, d.Approvals)
	}
	if d.Year != 2024 || d.ApprovedByMonth[0] != 1 || d.ApprovedByMonth[2] != 1 || d.ApprovedByMonth[11] != 0 {
		t.Errorf("unexpected monthly series: %d %v", d.Year, d.ApprovedByMonth)
	}
	if d.ActiveDietOrders != 1 {
		t.Errorf("expected 1 active order, got %d", d.ActiveDietOrders)
	}
	if d.CanteenByStatus[enum.CanteenStatusPending] != 2 || d.CanteenByStatus[enum.CanteenStatusDelivered] != 1 {
		t.Errorf("unexpected canteen counts: %v", d.CanteenByStatus)
	}
}

func TestDashboard_FromDateIsLowerBound(t *testing.T) {
	store := &mockReportStore{requests: []database.DietRequest{
		{Status: enum.RequestStatusPending, Date: "2024-03-01"},
		{Status: enum.RequestStatusPending, Date: "2024-03-09"},
		{Status: enum.RequestStatusPending, Date: "2024-02-28"},
	}}
	svc := NewReportService(store, fixedClock("2024-03-20 12:00:00"))

	d, err := svc.Dashboard(context.Background(), "2024-03-01", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Approvals.Total != 2 {
		t.Errorf("expected 2 requests on or after the from date, got %d", d.Approvals.Total)
	}
}

func TestDashboard_StoreError(t *testing.T) {
	svc := NewReportService(&mockReportStore{err: errors.New("boom")}, fixedClock("2024-03-20 12:00:00"))

	if _, err := svc.Dashboard(context.Background(), "", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestPatientDeliveries_TotalsDeliveredItems(t *testing.T) {
	store := &mockReportStore{
		tickets: []database.CanteenOrder{
			{PatientID: "P-1", ContactNumber: "555", Status: enum.CanteenStatusDelivered, FoodItem: "Rice", EndDate: "2024-06-05"},
			{PatientID: "P-1", ContactNumber: "555", Status: enum.CanteenStatusDelivered, FoodItem: "Dal", EndDate: "2024-06-09"},
			{PatientID: "P-1", ContactNumber: "555", Status: enum.CanteenStatusDelivered, FoodItem: "Unknown"},
			{PatientID: "P-1", ContactNumber: "555", Status: enum.CanteenStatusPreparing, FoodItem: "Soup"},
			{PatientID: "P-1", ContactNumber: "777", Status: enum.CanteenStatusDelivered, FoodItem: "Rice"},
			{PatientID: "P-2", Status: enum.CanteenStatusDelivered, FoodItem: "Rice"},
		},
		foods: []database.FoodItem{
			{ID: uuid.New(), Name: "Rice", Price: makeNumeric("40.50")},
			{ID: uuid.New(), Name: "Dal", Price: makeNumeric("25")},
		},
	}
	svc := NewReportService(store, fixedClock("2024-06-10 12:00:00"))

	out, err := svc.PatientDeliveries(context.Background(), "P-1", "555")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Delivered) != 3 || len(out.Outstanding) != 1 {
		t.Errorf("expected 3 delivered and 1 outstanding, got %d and %d", len(out.Delivered), len(out.Outstanding))
	}
	if !out.DeliveredAmount.Equal(decimal.RequireFromString("65.50")) {
		t.Errorf("expected 65.50, got %s", out.DeliveredAmount)
	}
	if out.DietEndDate != "2024-06-09" {
		t.Errorf("expected latest end date, got %q", out.DietEndDate)
	}
}

func TestPatientDeliveries_NoPatient(t *testing.T) {
	svc := NewReportService(&mockReportStore{}, fixedClock("2024-06-10 12:00:00"))

	if _, err := svc.PatientDeliveries(context.Background(), "", ""); !errors.Is(err, ErrNoPatientSelected) {
		t.Fatalf("expected ErrNoPatientSelected, got %v", err)
	}
}
