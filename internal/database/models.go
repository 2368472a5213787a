package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type StaffUser struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type FoodItem struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	FoodType      string         `json:"food_type"`
	Category      string         `json:"category"`
	Unit          string         `json:"unit"`
	Quantity      pgtype.Numeric `json:"quantity"`
	Calories      float64        `json:"calories"`
	Protein       float64        `json:"protein"`
	Carbohydrates float64        `json:"carbohydrates"`
	Fat           float64        `json:"fat"`
	Price         pgtype.Numeric `json:"price"`
	PricePerUnit  pgtype.Numeric `json:"price_per_unit"`
	Keywords      string         `json:"keywords"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type DietPackage struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	DietType       string         `json:"diet_type"`
	Meals          []byte         `json:"meals"`
	TotalRate      pgtype.Numeric `json:"total_rate"`
	TotalNutrition []byte         `json:"total_nutrition"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type CustomPlan struct {
	ID          string         `json:"id"`
	PackageName string         `json:"package_name"`
	DietType    string         `json:"diet_type"`
	Meals       []byte         `json:"meals"`
	Amount      pgtype.Numeric `json:"amount"`
	Position    int32          `json:"position"`
}

type DietRequest struct {
	ID            uuid.UUID `json:"id"`
	PatientID     string    `json:"patient_id"`
	PatientName   string    `json:"patient_name"`
	Age           string    `json:"age"`
	Gender        string    `json:"gender"`
	ContactNumber string    `json:"contact_number"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	BloodGroup    string    `json:"blood_group"`
	TokenNo       string    `json:"token_no"`
	VisitID       string    `json:"visit_id"`
	Bed           string    `json:"bed"`
	Ward          string    `json:"ward"`
	Floor         string    `json:"floor"`
	Doctor        string    `json:"doctor"`
	DoctorNotes   string    `json:"doctor_notes"`
	Status        string    `json:"status"`
	Approval      string    `json:"approval"`
	PatientType   string    `json:"patient_type"`
	Date          string    `json:"date"`
	RequestedTime string    `json:"requested_time"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type DietRequestApproval struct {
	ID                uuid.UUID   `json:"id"`
	DietRequestID     uuid.UUID   `json:"diet_request_id"`
	ApprovalAction    string      `json:"approval_action"`
	ApprovalStatus    string      `json:"approval_status"`
	ApprovedBy        pgtype.UUID `json:"approved_by"`
	Notes             pgtype.Text `json:"notes"`
	ApprovalTimestamp time.Time   `json:"approval_timestamp"`
}

type DietOrder struct {
	ID                    uuid.UUID          `json:"id"`
	DietRequestID         pgtype.UUID        `json:"diet_request_id"`
	PatientID             string             `json:"patient_id"`
	PatientName           string             `json:"patient_name"`
	ContactNumber         string             `json:"contact_number"`
	Email                 string             `json:"email"`
	Address               string             `json:"address"`
	BloodGroup            string             `json:"blood_group"`
	TokenNo               string             `json:"token_no"`
	VisitID               string             `json:"visit_id"`
	Age                   string             `json:"age"`
	Gender                string             `json:"gender"`
	Bed                   string             `json:"bed"`
	Ward                  string             `json:"ward"`
	Floor                 string             `json:"floor"`
	Doctor                string             `json:"doctor"`
	PatientType           string             `json:"patient_type"`
	DietPackage           string             `json:"diet_package"`
	PackageName           string             `json:"package_name"`
	PackageRate           pgtype.Numeric     `json:"package_rate"`
	StartDate             string             `json:"start_date"`
	EndDate               string             `json:"end_date"`
	DoctorNotes           string             `json:"doctor_notes"`
	Status                string             `json:"status"`
	ApprovalStatus        string             `json:"approval_status"`
	DieticianInstructions string             `json:"dietician_instructions"`
	PauseDate             pgtype.Timestamptz `json:"pause_date"`
	RestartDate           pgtype.Timestamptz `json:"restart_date"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

type FoodIntakeEntry struct {
	ID           uuid.UUID          `json:"id"`
	PatientID    string             `json:"patient_id"`
	Day          string             `json:"day"`
	Date         string             `json:"date"`
	Time         string             `json:"time"`
	Ampm         string             `json:"ampm"`
	Category     string             `json:"category"`
	FoodItem     string             `json:"food_item"`
	IntakeAmount string             `json:"intake_amount"`
	Unit         string             `json:"unit"`
	Calories     string             `json:"calories"`
	EndDate      string             `json:"end_date"`
	Comments     string             `json:"comments"`
	Status       string             `json:"status"`
	CreatedAt    string             `json:"created_at"`
	DispatchedAt pgtype.Timestamptz `json:"dispatched_at"`
	InsertedAt   time.Time          `json:"inserted_at"`
}

type CanteenOrder struct {
	ID                    uuid.UUID   `json:"id"`
	Source                string      `json:"source"`
	IntakeEntryID         pgtype.UUID `json:"intake_entry_id"`
	PatientID             string      `json:"patient_id"`
	PatientName           string      `json:"patient_name"`
	ContactNumber         string      `json:"contact_number"`
	Bed                   string      `json:"bed"`
	Ward                  string      `json:"ward"`
	DietPackageName       string      `json:"diet_package_name"`
	DietType              string      `json:"diet_type"`
	FoodItems             []string    `json:"food_items"`
	MealItems             []byte      `json:"meal_items"`
	SpecialNotes          string      `json:"special_notes"`
	DieticianInstructions string      `json:"dietician_instructions"`
	Date                  string      `json:"date"`
	Time                  string      `json:"time"`
	Category              string      `json:"category"`
	FoodItem              string      `json:"food_item"`
	IntakeAmount          string      `json:"intake_amount"`
	Unit                  string      `json:"unit"`
	EndDate               string      `json:"end_date"`
	Status                string      `json:"status"`
	Prepared              bool        `json:"prepared"`
	Delivered             bool        `json:"delivered"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}
