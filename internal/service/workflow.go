package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"

	"github.com/ward-diet/api/internal/customplan"
	"github.com/ward-diet/api/internal/database"
	"github.com/ward-diet/api/internal/dietplan"
	"github.com/ward-diet/api/internal/enum"
	"github.com/ward-diet/api/internal/ws"
)

// Errors returned by the workflow service.
var (
	ErrRequestNotFound      = errors.New("diet request not found")
	ErrDietOrderNotFound    = errors.New("diet order not found")
	ErrCanteenOrderNotFound = errors.New("canteen order not found")
	ErrPackageNotFound      = errors.New("diet package not found")
	ErrNoPackage            = errors.New("diet order has no diet package")
)

// Labels stored on DietRequest.approval.
const (
	requestApprovalApproved = "Approved"
	requestApprovalRejected = "Rejected"
)

// WorkflowStore defines the DB methods the approval and kitchen flows need.
// Satisfied by *database.Queries (and its WithTx variant).
type WorkflowStore interface {
	GetDietRequest(ctx context.Context, id uuid.UUID) (database.DietRequest, error)
	UpdateDietRequestStatus(ctx context.Context, arg database.UpdateDietRequestStatusParams) (database.DietRequest, error)
	CreateDietRequestApproval(ctx context.Context, arg database.CreateDietRequestApprovalParams) (database.DietRequestApproval, error)
	GetDietOrderForUpdate(ctx context.Context, id uuid.UUID) (database.DietOrder, error)
	SetDietOrderApproval(ctx context.Context, arg database.SetDietOrderApprovalParams) (database.DietOrder, error)
	PauseDietOrder(ctx context.Context, arg database.StampDietOrderParams) (database.DietOrder, error)
	RestartDietOrder(ctx context.Context, arg database.StampDietOrderParams) (database.DietOrder, error)
	GetDietPackage(ctx context.Context, id uuid.UUID) (database.DietPackage, error)
	UpsertCanteenOrder(ctx context.Context, arg database.CanteenOrderParams) (database.CanteenOrder, error)
	GetCanteenOrder(ctx context.Context, id uuid.UUID) (database.CanteenOrder, error)
	UpdateCanteenOrderStatus(ctx context.Context, arg database.UpdateCanteenOrderStatusParams) (database.CanteenOrder, error)
}

// NewWorkflowStore creates a WorkflowStore from a DBTX (pool or tx).
type NewWorkflowStore func(db database.DBTX) WorkflowStore

// PlanSource looks up custom plans. *customplan.Registry satisfies it.
type PlanSource interface {
	Get(ctx context.Context, id string) (customplan.Plan, error)
}

// Decision records who decided a diet request and why.
type Decision struct {
	Actor uuid.UUID
	Notes string
}

// DietOrderDraft carries the patient details copied from an approved
// request into the diet order form. It is not linked to the request by key.
type DietOrderDraft struct {
	DietRequestID string `json:"diet_request_id"`
	PatientID     string `json:"patient_id"`
	PatientName   string `json:"patient_name"`
	ContactNumber string `json:"contact_number"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	BloodGroup    string `json:"blood_group"`
	TokenNo       string `json:"token_no"`
	VisitID       string `json:"visit_id"`
	Age           string `json:"age"`
	Gender        string `json:"gender"`
	Bed           string `json:"bed"`
	Ward          string `json:"ward"`
	Floor         string `json:"floor"`
	Doctor        string `json:"doctor"`
	DoctorNotes   string `json:"doctor_notes"`
	PatientType   string `json:"patient_type"`
}

// RequestDecisionResult is the updated request with its new audit row.
type RequestDecisionResult struct {
	Request  database.DietRequest         `json:"request"`
	Approval database.DietRequestApproval `json:"approval"`
	Draft    *DietOrderDraft              `json:"draft,omitempty"`
}

// ApprovalResult is an approved diet order and the kitchen ticket made for it.
type ApprovalResult struct {
	Order        database.DietOrder    `json:"order"`
	CanteenOrder database.CanteenOrder `json:"canteen_order"`
}

// WorkflowService applies status changes to requests, orders and kitchen
// tickets together with their side effects.
type WorkflowService struct {
	db        DB
	newStore  NewWorkflowStore
	plans     PlanSource
	now       Clock
	publisher Publisher
}

// NewWorkflowService creates a WorkflowService. A nil publisher disables
// realtime events.
func NewWorkflowService(db DB, newStore NewWorkflowStore, plans PlanSource, now Clock, publisher Publisher) *WorkflowService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &WorkflowService{db: db, newStore: newStore, plans: plans, now: now, publisher: publisher}
}

// ApproveRequest marks the request "Diet Order Placed" and returns the draft
// for the diet order form.
func (s *WorkflowService) ApproveRequest(ctx context.Context, id uuid.UUID, d Decision) (*RequestDecisionResult, error) {
	res, err := s.decideRequest(ctx, id, d, enum.RequestStatusOrderPlaced, requestApprovalApproved, enum.ApprovalActionApprove)
	if err != nil {
		return nil, err
	}
	res.Draft = draftFromRequest(res.Request)
	return res, nil
}

// RejectRequest marks the request "Rejected".
func (s *WorkflowService) RejectRequest(ctx context.Context, id uuid.UUID, d Decision) (*RequestDecisionResult, error) {
	return s.decideRequest(ctx, id, d, enum.RequestStatusRejected, requestApprovalRejected, enum.ApprovalActionReject)
}

func (s *WorkflowService) decideRequest(ctx context.Context, id uuid.UUID, d Decision, status, approval, action string) (*RequestDecisionResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	req, err := store.GetDietRequest(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("get diet request: %w", err)
	}
	if err := dietplan.RequestTransition(req.Status, status); err != nil {
		return nil, err
	}

	updated, err := store.UpdateDietRequestStatus(ctx, database.UpdateDietRequestStatusParams{
		ID:       id,
		Status:   status,
		Approval: approval,
	})
	if err != nil {
		return nil, fmt.Errorf("update diet request: %w", err)
	}

	auditID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}
	audit, err := store.CreateDietRequestApproval(ctx, database.CreateDietRequestApprovalParams{
		ID:             auditID,
		DietRequestID:  id,
		ApprovalAction: action,
		ApprovalStatus: status,
		ApprovedBy:     pgtype.UUID{Bytes: d.Actor, Valid: d.Actor != uuid.Nil},
		Notes:          pgtype.Text{String: d.Notes, Valid: d.Notes != ""},
	})
	if err != nil {
		return nil, fmt.Errorf("record approval: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &RequestDecisionResult{Request: updated, Approval: audit}, nil
}

// ApproveDietOrder approves a pending order, resolves its package and puts
// a pending ticket with the same id in the kitchen queue.
func (s *WorkflowService) ApproveDietOrder(ctx context.Context, id uuid.UUID, instructions string) (*ApprovalResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockDietOrder(ctx, store, id)
	if err != nil {
		return nil, err
	}
	if err := dietplan.ApprovalTransition(order.ApprovalStatus, enum.ApprovalStatusApproved); err != nil {
		return nil, err
	}

	pkg, err := s.resolvePackage(ctx, store, order.DietPackage)
	if err != nil {
		return nil, err
	}

	approved, err := store.SetDietOrderApproval(ctx, database.SetDietOrderApprovalParams{
		ID:                    id,
		ApprovalStatus:        enum.ApprovalStatusApproved,
		Status:                enum.DietOrderStatusActive,
		DieticianInstructions: instructions,
		PackageName:           pkg.name,
	})
	if err != nil {
		return nil, fmt.Errorf("approve diet order: %w", err)
	}

	mealsJSON, err := json.Marshal(pkg.meals)
	if err != nil {
		return nil, fmt.Errorf("encode meal items: %w", err)
	}
	ticket, err := store.UpsertCanteenOrder(ctx, database.CanteenOrderParams{
		ID:                    approved.ID,
		Source:                enum.CanteenSourceDietOrder,
		PatientID:             approved.PatientID,
		PatientName:           approved.PatientName,
		ContactNumber:         approved.ContactNumber,
		Bed:                   approved.Bed,
		Ward:                  approved.Ward,
		DietPackageName:       pkg.name,
		DietType:              pkg.dietType,
		FoodItems:             dietplan.FlattenMeals(pkg.meals),
		MealItems:             mealsJSON,
		SpecialNotes:          instructions,
		DieticianInstructions: instructions,
		Date:                  approved.StartDate,
		EndDate:               approved.EndDate,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert canteen order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.publish(ws.EventCanteenOrderCreated, ticket)
	return &ApprovalResult{Order: approved, CanteenOrder: ticket}, nil
}

// RejectDietOrder rejects a pending order and stops it.
func (s *WorkflowService) RejectDietOrder(ctx context.Context, id uuid.UUID, instructions string) (database.DietOrder, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return database.DietOrder{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockDietOrder(ctx, store, id)
	if err != nil {
		return database.DietOrder{}, err
	}
	if err := dietplan.ApprovalTransition(order.ApprovalStatus, enum.ApprovalStatusRejected); err != nil {
		return database.DietOrder{}, err
	}

	rejected, err := store.SetDietOrderApproval(ctx, database.SetDietOrderApprovalParams{
		ID:                    id,
		ApprovalStatus:        enum.ApprovalStatusRejected,
		Status:                enum.DietOrderStatusStopped,
		DieticianInstructions: instructions,
		PackageName:           order.PackageName,
	})
	if err != nil {
		return database.DietOrder{}, fmt.Errorf("reject diet order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.DietOrder{}, fmt.Errorf("commit tx: %w", err)
	}
	return rejected, nil
}

// PauseDietOrder stamps the pause date of an approved order.
func (s *WorkflowService) PauseDietOrder(ctx context.Context, id uuid.UUID) (database.DietOrder, error) {
	return s.stampDietOrder(ctx, id, func(store WorkflowStore, arg database.StampDietOrderParams) (database.DietOrder, error) {
		return store.PauseDietOrder(ctx, arg)
	})
}

// RestartDietOrder stamps the restart date of an approved order.
func (s *WorkflowService) RestartDietOrder(ctx context.Context, id uuid.UUID) (database.DietOrder, error) {
	return s.stampDietOrder(ctx, id, func(store WorkflowStore, arg database.StampDietOrderParams) (database.DietOrder, error) {
		return store.RestartDietOrder(ctx, arg)
	})
}

func (s *WorkflowService) stampDietOrder(ctx context.Context, id uuid.UUID, write func(WorkflowStore, database.StampDietOrderParams) (database.DietOrder, error)) (database.DietOrder, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return database.DietOrder{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := lockDietOrder(ctx, store, id)
	if err != nil {
		return database.DietOrder{}, err
	}
	if err := dietplan.CanPauseOrRestart(order.ApprovalStatus); err != nil {
		return database.DietOrder{}, err
	}

	updated, err := write(store, database.StampDietOrderParams{
		ID: id,
		At: pgtype.Timestamptz{Time: s.now(), Valid: true},
	})
	if err != nil {
		return database.DietOrder{}, fmt.Errorf("stamp diet order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.DietOrder{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// MarkPreparing moves a pending ticket to preparing.
func (s *WorkflowService) MarkPreparing(ctx context.Context, id uuid.UUID) (database.CanteenOrder, error) {
	return s.advanceCanteenOrder(ctx, id, enum.CanteenStatusPreparing)
}

// MarkDelivered moves a preparing ticket to delivered.
func (s *WorkflowService) MarkDelivered(ctx context.Context, id uuid.UUID) (database.CanteenOrder, error) {
	return s.advanceCanteenOrder(ctx, id, enum.CanteenStatusDelivered)
}

// advanceCanteenOrder checks the transition before writing. The update is
// guarded on the status that was read, so a concurrent change surfaces as
// an invalid transition instead of a lost update.
func (s *WorkflowService) advanceCanteenOrder(ctx context.Context, id uuid.UUID, next string) (database.CanteenOrder, error) {
	store := s.newStore(s.db)

	current, err := store.GetCanteenOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CanteenOrder{}, ErrCanteenOrderNotFound
		}
		return database.CanteenOrder{}, fmt.Errorf("get canteen order: %w", err)
	}
	if err := dietplan.CanteenTransition(current.Status, next); err != nil {
		return database.CanteenOrder{}, err
	}

	updated, err := store.UpdateCanteenOrderStatus(ctx, database.UpdateCanteenOrderStatusParams{
		ID:         id,
		Status:     next,
		Prepared:   next == enum.CanteenStatusPreparing,
		Delivered:  next == enum.CanteenStatusDelivered,
		FromStatus: current.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CanteenOrder{}, fmt.Errorf("%w: canteen order changed concurrently", dietplan.ErrInvalidTransition)
		}
		return database.CanteenOrder{}, fmt.Errorf("update canteen order: %w", err)
	}

	s.publish(ws.EventCanteenOrderStatusChanged, updated)
	return updated, nil
}

func (s *WorkflowService) publish(eventType string, payload interface{}) {
	if err := s.publisher.Publish(ws.RoomCanteen, eventType, payload); err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("publish canteen event")
	}
}

type resolvedPackage struct {
	name     string
	dietType string
	meals    map[string][]dietplan.MealItem
}

func (s *WorkflowService) resolvePackage(ctx context.Context, store WorkflowStore, stored string) (resolvedPackage, error) {
	if stored == "" {
		return resolvedPackage{}, ErrNoPackage
	}
	ref, err := dietplan.ParsePackageRef(stored)
	if err != nil {
		return resolvedPackage{}, err
	}

	if ref.IsCustom() {
		plan, err := s.plans.Get(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, customplan.ErrNotFound) {
				return resolvedPackage{}, fmt.Errorf("%w: %s", ErrPackageNotFound, ref)
			}
			return resolvedPackage{}, fmt.Errorf("get custom plan: %w", err)
		}
		return resolvedPackage{name: plan.PackageName, dietType: plan.DietType, meals: plan.Meals}, nil
	}

	pkgID, err := uuid.Parse(ref.ID)
	if err != nil {
		return resolvedPackage{}, fmt.Errorf("%w: %s", ErrPackageNotFound, ref)
	}
	pkg, err := store.GetDietPackage(ctx, pkgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return resolvedPackage{}, fmt.Errorf("%w: %s", ErrPackageNotFound, ref)
		}
		return resolvedPackage{}, fmt.Errorf("get diet package: %w", err)
	}
	meals := map[string][]dietplan.MealItem{}
	if len(pkg.Meals) > 0 {
		if err := json.Unmarshal(pkg.Meals, &meals); err != nil {
			return resolvedPackage{}, fmt.Errorf("decode package meals: %w", err)
		}
	}
	return resolvedPackage{name: pkg.Name, dietType: pkg.DietType, meals: meals}, nil
}

func lockDietOrder(ctx context.Context, store WorkflowStore, id uuid.UUID) (database.DietOrder, error) {
	order, err := store.GetDietOrderForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.DietOrder{}, ErrDietOrderNotFound
		}
		return database.DietOrder{}, fmt.Errorf("get diet order: %w", err)
	}
	return order, nil
}

func draftFromRequest(r database.DietRequest) *DietOrderDraft {
	return &DietOrderDraft{
		DietRequestID: r.ID.String(),
		PatientID:     r.PatientID,
		PatientName:   r.PatientName,
		ContactNumber: r.ContactNumber,
		Email:         r.Email,
		Address:       r.Address,
		BloodGroup:    r.BloodGroup,
		TokenNo:       r.TokenNo,
		VisitID:       r.VisitID,
		Age:           r.Age,
		Gender:        r.Gender,
		Bed:           r.Bed,
		Ward:          r.Ward,
		Floor:         r.Floor,
		Doctor:        r.Doctor,
		DoctorNotes:   r.DoctorNotes,
		PatientType:   r.PatientType,
	}
}
