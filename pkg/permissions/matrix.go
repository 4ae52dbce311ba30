// Package permissions holds the published capability matrix gating what each
// subscription tier may do, and the per-sector booking field sets.
//
// The matrix is a static table with every cell explicit. Higher tiers are NOT
// assumed supersets of lower ones: some capabilities are tier-exclusive (the
// kitchen display ships with pro only), so deriving cells from tier order would
// encode the wrong table. CanPerform and IsFieldApplicable are the only
// authorization interfaces other components should call; nothing else should
// re-implement tier comparisons inline.
package permissions

// matrix is the published tier × capability table.
var matrix = map[Tier]map[Capability]bool{
	TierStarter: {
		CapViewBookings:            true,
		CapMutateBookings:          false,
		CapManageStock:             false,
		CapManageStockAvailability: false,
		CapManagePromotions:        false,
		CapViewKitchenDisplay:      false,
		CapExportCallLogs:          false,
		CapUseSmartRetrigger:       false,
	},
	TierPro: {
		CapViewBookings:            true,
		CapMutateBookings:          true,
		CapManageStock:             true,
		CapManageStockAvailability: false,
		CapManagePromotions:        true,
		CapViewKitchenDisplay:      true,
		CapExportCallLogs:          true,
		CapUseSmartRetrigger:       false,
	},
	TierElite: {
		CapViewBookings:            true,
		CapMutateBookings:          true,
		CapManageStock:             true,
		CapManageStockAvailability: true,
		CapManagePromotions:        true,
		CapViewKitchenDisplay:      false, // replaced by the elite ops console
		CapExportCallLogs:          true,
		CapUseSmartRetrigger:       true,
	},
}

// sectorFields maps each known sector to its applicable booking extension fields.
// Field names use the stable external snake_case schema.
var sectorFields = map[Sector]map[string]bool{
	SectorRestaurant: {
		"guests":   true,
		"table_id": true,
	},
	SectorDental: {
		"patient_name":  true,
		"service_type":  true,
		"room_id":       true,
		"medical_notes": true,
	},
	SectorGarage: {
		"vehicle_brand":        true,
		"vehicle_model":        true,
		"license_plate":        true,
		"repair_type":          true,
		"estimated_cost_cents": true,
	},
}

// CanPerform reports whether the given tier grants the capability.
// Unknown tiers and unknown capabilities are always denied.
func CanPerform(tier Tier, capability Capability) bool {
	caps, ok := matrix[tier]
	if !ok {
		return false
	}
	return caps[capability]
}

// IsFieldApplicable reports whether a booking extension field is meaningful for
// the given sector. Fields outside the sector's set are ignored, never
// interpreted.
func IsFieldApplicable(sector Sector, field string) bool {
	fields, ok := sectorFields[sector]
	if !ok {
		return false
	}
	return fields[field]
}

// SectorFields returns the extension field names for a sector. The returned
// slice is a copy.
func SectorFields(sector Sector) []string {
	fields, ok := sectorFields[sector]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	return names
}

// Capabilities returns all capabilities in the published table
func Capabilities() []Capability {
	return []Capability{
		CapViewBookings,
		CapMutateBookings,
		CapManageStock,
		CapManageStockAvailability,
		CapManagePromotions,
		CapViewKitchenDisplay,
		CapExportCallLogs,
		CapUseSmartRetrigger,
	}
}

// Tiers returns all plan tiers in ascending order
func Tiers() []Tier {
	return []Tier{TierStarter, TierPro, TierElite}
}
