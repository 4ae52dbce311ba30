package permissions

// Tier represents a subscription plan tier
type Tier string

const (
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
	TierElite   Tier = "elite"
)

// tierRank orders tiers for comparison. Ordering is exposed through AtLeast
// only; the capability matrix itself never derives cells from rank.
var tierRank = map[Tier]int{
	TierStarter: 0,
	TierPro:     1,
	TierElite:   2,
}

// IsValid reports whether the tier is a known plan tier
func (t Tier) IsValid() bool {
	_, ok := tierRank[t]
	return ok
}

// AtLeast reports whether the tier is at or above the given tier
func (t Tier) AtLeast(other Tier) bool {
	return tierRank[t] >= tierRank[other]
}

// Sector represents a tenant's business vertical. The enumeration is open:
// unknown sectors are valid tenants with no booking extension fields.
type Sector string

const (
	SectorRestaurant Sector = "restaurant"
	SectorDental     Sector = "dental"
	SectorGarage     Sector = "garage"
)

// Capability represents a named permission checked against the matrix
type Capability string

const (
	CapViewBookings            Capability = "viewBookings"
	CapMutateBookings          Capability = "mutateBookings"
	CapManageStock             Capability = "manageStock"
	CapManageStockAvailability Capability = "manageStockAvailability" // "86 mode"
	CapManagePromotions        Capability = "managePromotions"
	CapViewKitchenDisplay      Capability = "viewKitchenDisplay"
	CapExportCallLogs          Capability = "exportCallLogs"
	CapUseSmartRetrigger       Capability = "useSmartRetrigger"
)

// AdminCapability represents a platform-admin operation. Admin capabilities are
// keyed off the admin role, never off tier, and are unreachable while an admin
// is impersonating a tenant.
type AdminCapability string

const (
	AdminCapListAllTenants    AdminCapability = "listAllTenants"
	AdminCapDeleteTenant      AdminCapability = "deleteTenant"
	AdminCapImpersonateTenant AdminCapability = "impersonateTenant"
)
