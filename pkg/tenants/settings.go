package tenants

import (
	"encoding/json"
	"fmt"

	"github.com/reservahq/reserva/pkg/permissions"
)

// SettingsVersion is the current settings schema version
const SettingsVersion = 2

// Settings is the versioned, explicitly-typed tenant configuration. It
// replaces the legacy free-form blob that earlier releases merged on write;
// MigrateSettings upgrades stored blobs to the current schema.
type Settings struct {
	Version      int                 `json:"version"`
	Timezone     string              `json:"timezone,omitempty"`
	OpeningHours string              `json:"opening_hours,omitempty"`
	NotifyEmail  string              `json:"notify_email,omitempty"`
	WebhookURL   string              `json:"webhook_url,omitempty"`

	Restaurant *RestaurantSettings `json:"restaurant,omitempty"`
	Dental     *DentalSettings     `json:"dental,omitempty"`
	Garage     *GarageSettings     `json:"garage,omitempty"`
}

// RestaurantSettings holds restaurant-sector configuration
type RestaurantSettings struct {
	TableCount      int  `json:"table_count,omitempty"`
	MaxPartySize    int  `json:"max_party_size,omitempty"`
	KitchenDisplay  bool `json:"kitchen_display,omitempty"`
}

// DentalSettings holds dental-sector configuration
type DentalSettings struct {
	RoomCount        int  `json:"room_count,omitempty"`
	SlotMinutes      int  `json:"slot_minutes,omitempty"`
	RequireInsurance bool `json:"require_insurance,omitempty"`
}

// GarageSettings holds garage-sector configuration
type GarageSettings struct {
	BayCount         int  `json:"bay_count,omitempty"`
	QuoteApproval    bool `json:"quote_approval,omitempty"`
	LoanerVehicles   int  `json:"loaner_vehicles,omitempty"`
}

// DefaultSettings returns the default settings for a sector
func DefaultSettings(sector permissions.Sector) *Settings {
	s := &Settings{Version: SettingsVersion, Timezone: "Europe/Paris"}
	switch sector {
	case permissions.SectorRestaurant:
		s.Restaurant = &RestaurantSettings{TableCount: 10, MaxPartySize: 8}
	case permissions.SectorDental:
		s.Dental = &DentalSettings{RoomCount: 2, SlotMinutes: 30}
	case permissions.SectorGarage:
		s.Garage = &GarageSettings{BayCount: 3}
	}
	return s
}

// MigrateSettings parses a stored settings blob and upgrades it to the current
// schema version. Version 0 is the legacy untyped blob: known keys are lifted
// into the typed struct and everything else is dropped. Version 1 lacked the
// per-sector sections. Unknown future versions are rejected.
func MigrateSettings(raw []byte, sector permissions.Sector) (*Settings, error) {
	if len(raw) == 0 {
		return DefaultSettings(sector), nil
	}

	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse settings blob: %w", err)
	}

	switch probe.Version {
	case SettingsVersion:
		var s Settings
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("failed to parse settings: %w", err)
		}
		return &s, nil
	case 1:
		var s Settings
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("failed to parse v1 settings: %w", err)
		}
		s.Version = SettingsVersion
		attachSectorDefaults(&s, sector)
		return &s, nil
	case 0:
		return migrateLegacyBlob(raw, sector)
	default:
		return nil, fmt.Errorf("unknown settings version %d", probe.Version)
	}
}

// migrateLegacyBlob lifts known keys out of the pre-versioning free-form blob
func migrateLegacyBlob(raw []byte, sector permissions.Sector) (*Settings, error) {
	var blob map[string]any
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, fmt.Errorf("failed to parse legacy settings blob: %w", err)
	}

	s := DefaultSettings(sector)
	if v, ok := blob["timezone"].(string); ok {
		s.Timezone = v
	}
	if v, ok := blob["opening_hours"].(string); ok {
		s.OpeningHours = v
	}
	if v, ok := blob["notify_email"].(string); ok {
		s.NotifyEmail = v
	}
	if v, ok := blob["webhook_url"].(string); ok {
		s.WebhookURL = v
	}
	if v, ok := blob["table_count"].(float64); ok && s.Restaurant != nil {
		s.Restaurant.TableCount = int(v)
	}
	if v, ok := blob["room_count"].(float64); ok && s.Dental != nil {
		s.Dental.RoomCount = int(v)
	}
	return s, nil
}

func attachSectorDefaults(s *Settings, sector permissions.Sector) {
	switch sector {
	case permissions.SectorRestaurant:
		if s.Restaurant == nil {
			s.Restaurant = &RestaurantSettings{TableCount: 10, MaxPartySize: 8}
		}
	case permissions.SectorDental:
		if s.Dental == nil {
			s.Dental = &DentalSettings{RoomCount: 2, SlotMinutes: 30}
		}
	case permissions.SectorGarage:
		if s.Garage == nil {
			s.Garage = &GarageSettings{BayCount: 3}
		}
	}
}
