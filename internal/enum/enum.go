package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	RequestStatusPending     = "Pending"
	RequestStatusOrderPlaced = "Diet Order Placed"
	RequestStatusRejected    = "Rejected"
)

const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

const (
	DietOrderStatusActive  = "active"
	DietOrderStatusPaused  = "paused"
	DietOrderStatusStopped = "stopped"
)

// Canteen orders only move pending → preparing → delivered. The remaining
// values are accepted on read for rows written by older clients.
const (
	CanteenStatusPending   = "pending"
	CanteenStatusPreparing = "preparing"
	CanteenStatusDelivered = "delivered"

	CanteenStatusActive   = "active"
	CanteenStatusPaused   = "paused"
	CanteenStatusStopped  = "stopped"
	CanteenStatusPrepared = "prepared"
)

const (
	IntakeStatusActive  = "Active"
	IntakeStatusPaused  = "Paused"
	IntakeStatusStopped = "Stopped"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	StaffRoleAdmin     = "ADMIN"
	StaffRoleDietician = "DIETICIAN"
	StaffRoleNurse     = "NURSE"
	StaffRoleCanteen   = "CANTEEN"
)

const (
	PackageKindStandard = "standard"
	PackageKindCustom   = "custom"
)

const (
	CanteenSourceDietOrder  = "diet_order"
	CanteenSourceFoodIntake = "food_intake"
)

const (
	ApprovalActionApprove = "approve"
	ApprovalActionReject  = "reject"
)

// ── Group B: Configurable labels (no DB constraint) ──

const (
	MealBreakfast = "Breakfast"
	MealLunch     = "Lunch"
	MealDinner    = "Dinner"
	MealSnack     = "Snack"
)

// Meal slots used by diet packages and custom plans.
const (
	SlotBreakfast = "breakfast"
	SlotBrunch    = "brunch"
	SlotLunch     = "lunch"
	SlotDinner    = "dinner"
	SlotEvening   = "evening"
)

// PackageSlots lists the meal slots of a diet package in serving order.
var PackageSlots = []string{SlotBreakfast, SlotBrunch, SlotLunch, SlotDinner, SlotEvening}

const (
	UnitGram       = "g"
	UnitMillilitre = "ml"
	UnitPieces     = "pcs"
)

const (
	PatientTypeIP = "IP"
	PatientTypeOP = "OP"
)
