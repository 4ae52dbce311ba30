package bookings

import (
	"time"

	"github.com/reservahq/reserva/pkg/permissions"
)

// Status represents a booking's lifecycle state
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid reports whether the status is a known lifecycle state
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Details is the sector-tagged extension set of a booking. Exactly one
// concrete type exists per sector, so a restaurant booking cannot carry
// dental fields by construction.
type Details interface {
	Sector() permissions.Sector
}

// RestaurantDetails carries restaurant booking extensions
type RestaurantDetails struct {
	Guests  int    `json:"guests,omitempty"`
	TableID string `json:"table_id,omitempty"`
}

// Sector implements Details
func (RestaurantDetails) Sector() permissions.Sector { return permissions.SectorRestaurant }

// DentalDetails carries dental booking extensions
type DentalDetails struct {
	PatientName  string `json:"patient_name,omitempty"`
	ServiceType  string `json:"service_type,omitempty"`
	RoomID       string `json:"room_id,omitempty"`
	MedicalNotes string `json:"medical_notes,omitempty"`
}

// Sector implements Details
func (DentalDetails) Sector() permissions.Sector { return permissions.SectorDental }

// GarageDetails carries garage booking extensions
type GarageDetails struct {
	VehicleBrand       string `json:"vehicle_brand,omitempty"`
	VehicleModel       string `json:"vehicle_model,omitempty"`
	LicensePlate       string `json:"license_plate,omitempty"`
	RepairType         string `json:"repair_type,omitempty"`
	EstimatedCostCents int64  `json:"estimated_cost_cents,omitempty"`
}

// Sector implements Details
func (GarageDetails) Sector() permissions.Sector { return permissions.SectorGarage }

// Booking represents one scheduled appointment (RDV)
type Booking struct {
	ID         int64              `json:"id"`
	TenantID   int64              `json:"tenant_id"`
	Sector     permissions.Sector `json:"sector"`
	ClientName string             `json:"client_name"`
	Phone      string             `json:"phone,omitempty"`
	Email      string             `json:"email,omitempty"`
	Date       string             `json:"date"` // YYYY-MM-DD
	Time       string             `json:"time"` // HH:MM
	Status     Status             `json:"status"`
	Notes      string             `json:"notes,omitempty"`
	Details    Details            `json:"details,omitempty"`
	// Version supports optimistic concurrency on mutations
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest represents a booking creation from staff or an intake channel
type CreateRequest struct {
	ClientName string  `json:"client_name"`
	Phone      string  `json:"phone,omitempty"`
	Email      string  `json:"email,omitempty"`
	Date       string  `json:"date"`
	Time       string  `json:"time"`
	Notes      string  `json:"notes,omitempty"`
	// InitialStatus defaults to pending; intake channels may supply confirmed
	InitialStatus Status  `json:"initial_status,omitempty"`
	Details       Details `json:"-"`
}

// Channel identifies what created a booking
type Channel string

const (
	ChannelStaff Channel = "staff" // authenticated staff session, tier-gated
	ChannelCall  Channel = "call"  // automated call intake
	ChannelForm  Channel = "form"  // public booking form
)

// IsTrustedIntake reports whether the channel bypasses the staff tier gate.
// Intake channels write on behalf of the tenant, not of a staff member.
func (c Channel) IsTrustedIntake() bool {
	return c == ChannelCall || c == ChannelForm
}
