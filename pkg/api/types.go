package api

import (
	"encoding/json"

	"github.com/reservahq/reserva/pkg/bookings"
	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/permissions"
)

// createBookingPayload is the wire form of a booking creation. Details are
// kept raw until the acting tenant's sector is known.
type createBookingPayload struct {
	bookings.CreateRequest
	Channel bookings.Channel `json:"channel,omitempty"`
	Details json.RawMessage  `json:"details,omitempty"`
}

// transitionPayload is the wire form of a booking status change
type transitionPayload struct {
	Status          bookings.Status `json:"status"`
	ExpectedVersion int64           `json:"expected_version"`
}

// availabilityPayload toggles the stock 86 flag
type availabilityPayload struct {
	Available bool `json:"available"`
}

// activePayload toggles a promo
type activePayload struct {
	Active bool `json:"active"`
}

// ghostEnterPayload names the tenant an admin wants to ghost
type ghostEnterPayload struct {
	TargetTenantID int64 `json:"target_tenant_id"`
}

// signupResponse returns the provisioned tenant with its first bearer token.
// The token is shown exactly once.
type signupResponse struct {
	Tenant interface{} `json:"tenant"`
	Token  string      `json:"token"`
}

// decodeDetails interprets raw booking details under the tenant's sector.
// Unknown sectors carry no extension fields, so their details are ignored,
// never interpreted.
func decodeDetails(sector permissions.Sector, raw json.RawMessage) (bookings.Details, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var details bookings.Details
	switch sector {
	case permissions.SectorRestaurant:
		details = &bookings.RestaurantDetails{}
	case permissions.SectorDental:
		details = &bookings.DentalDetails{}
	case permissions.SectorGarage:
		details = &bookings.GarageDetails{}
	default:
		return nil, nil
	}

	if err := json.Unmarshal(raw, details); err != nil {
		return nil, &fault.ValidationError{Field: "details", Reason: "malformed details object"}
	}
	return details, nil
}
