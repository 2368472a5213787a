package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/dietplan"
	"github.com/ward-diet/api/internal/enum"
)

// ReportStore defines the DB methods the dashboard and patient totals need.
// Satisfied by *database.Queries.
type ReportStore interface {
	ListDietRequests(ctx context.Context) ([]database.DietRequest, error)
	ListDietOrders(ctx context.Context) ([]database.DietOrder, error)
	ListCanteenOrders(ctx context.Context) ([]database.CanteenOrder, error)
	ListCanteenOrdersByPatient(ctx context.Context, patientID string) ([]database.CanteenOrder, error)
	ListFoodItems(ctx context.Context) ([]database.FoodItem, error)
}

// ApprovalCounts splits diet requests by decision.
type ApprovalCounts struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	Approvals        ApprovalCounts `json:"approvals"`
	Year             int            `json:"year"`
	ApprovedByMonth  [12]int        `json:"approved_by_month"`
	ActiveDietOrders int            `json:"active_diet_orders"`
	CanteenByStatus  map[string]int `json:"canteen_by_status"`
}

// PatientDeliveries is what the kitchen has served one patient so far.
type PatientDeliveries struct {
	PatientID       string                  `json:"patient_id"`
	Delivered       []database.CanteenOrder `json:"delivered"`
	Outstanding     []database.CanteenOrder `json:"outstanding"`
	DeliveredAmount decimal.Decimal         `json:"delivered_amount"`
	DietEndDate     string                  `json:"diet_end_date"`
}

// ReportService computes read-only summaries.
type ReportService struct {
	store ReportStore
	now   Clock
}

func NewReportService(store ReportStore, now Clock) *ReportService {
	return &ReportService{store: store, now: now}
}

// Dashboard counts diet request decisions in [from, to]. Requests without a
// date are always counted. The monthly series covers the current year.
func (s *ReportService) Dashboard(ctx context.Context, from, to string) (*Dashboard, error) {
	requests, err := s.store.ListDietRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("list diet requests: %w", err)
	}
	orders, err := s.store.ListDietOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list diet orders: %w", err)
	}
	tickets, err := s.store.ListCanteenOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list canteen orders: %w", err)
	}

	d := &Dashboard{Year: s.now().Year(), CanteenByStatus: map[string]int{}}

	window := dietplan.Criteria{FromDate: from, ToDate: to}
	for _, r := range requests {
		if r.Date != "" && !window.Match(dietplan.Fields{Date: r.Date}) {
			continue
		}
		d.Approvals.Total++
		switch r.Status {
		case enum.RequestStatusPending:
			d.Approvals.Pending++
		case enum.RequestStatusOrderPlaced:
			d.Approvals.Approved++
		case enum.RequestStatusRejected:
			d.Approvals.Rejected++
		}
	}

	for _, r := range requests {
		if r.Status != enum.RequestStatusOrderPlaced {
			continue
		}
		day, err := time.Parse("2006-01-02", dietplan.NormalizeDate(r.Date))
		if err != nil || day.Year() != d.Year {
			continue
		}
		d.ApprovedByMonth[day.Month()-1]++
	}

	for _, o := range orders {
		if o.ApprovalStatus == enum.ApprovalStatusApproved && o.Status == enum.DietOrderStatusActive {
			d.ActiveDietOrders++
		}
	}
	for _, t := range tickets {
		d.CanteenByStatus[t.Status]++
	}
	return d, nil
}

// PatientDeliveries lists a patient's delivered and outstanding tickets and
// prices the delivered ones from the catalog. When contactNumber is set only
// tickets with that number are considered.
func (s *ReportService) PatientDeliveries(ctx context.Context, patientID, contactNumber string) (*PatientDeliveries, error) {
	if patientID == "" {
		return nil, ErrNoPatientSelected
	}
	tickets, err := s.store.ListCanteenOrdersByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list canteen orders: %w", err)
	}
	foods, err := s.store.ListFoodItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list food items: %w", err)
	}

	out := &PatientDeliveries{
		PatientID:   patientID,
		Delivered:   []database.CanteenOrder{},
		Outstanding: []database.CanteenOrder{},
	}
	var deliveredItems, endDates []string
	for _, t := range tickets {
		if contactNumber != "" && t.ContactNumber != contactNumber {
			continue
		}
		if t.EndDate != "" {
			endDates = append(endDates, t.EndDate)
		}
		switch t.Status {
		case enum.CanteenStatusDelivered:
			out.Delivered = append(out.Delivered, t)
			deliveredItems = append(deliveredItems, t.FoodItem)
		case enum.CanteenStatusPending, enum.CanteenStatusPreparing:
			out.Outstanding = append(out.Outstanding, t)
		}
	}

	out.DeliveredAmount = dietplan.TotalCost(deliveredItems, CatalogFromFoodItems(foods))
	if len(endDates) > 0 {
		out.DietEndDate = slices.Max(endDates)
	}
	return out, nil
}

// CatalogFromFoodItems indexes catalog rows for the aggregate helpers.
func CatalogFromFoodItems(foods []database.FoodItem) dietplan.Catalog {
	items := make([]dietplan.CatalogItem, len(foods))
	for i, f := range foods {
		items[i] = dietplan.CatalogItem{
			ID:            f.ID.String(),
			Name:          f.Name,
			Calories:      f.Calories,
			Protein:       f.Protein,
			Carbohydrates: f.Carbohydrates,
			Fat:           f.Fat,
			Price:         database.NumericToDecimal(f.Price),
		}
	}
	return dietplan.NewCatalog(items)
}
