package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/reservahq/reserva/pkg/contextkeys"
	"github.com/reservahq/reserva/pkg/identity"
	"github.com/reservahq/reserva/pkg/observability"
	"github.com/reservahq/reserva/pkg/permissions"
)

func serveWithIdentity(t *testing.T, gate func(http.Handler) http.Handler, acting *identity.ActingIdentity) *httptest.ResponseRecorder {
	t.Helper()

	handler := gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/v1/stock", nil)
	if acting != nil {
		req = req.WithContext(contextkeys.WithIdentity(req.Context(), acting))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireCapability(t *testing.T) {
	t.Run("allows granted capability", func(t *testing.T) {
		acting := &identity.ActingIdentity{TenantID: 1, Tier: permissions.TierPro}
		rec := serveWithIdentity(t, RequireCapability(permissions.CapManageStock, nil), acting)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
	})

	t.Run("denies missing capability", func(t *testing.T) {
		acting := &identity.ActingIdentity{TenantID: 1, Tier: permissions.TierStarter}
		rec := serveWithIdentity(t, RequireCapability(permissions.CapMutateBookings, nil), acting)

		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("denies without identity", func(t *testing.T) {
		rec := serveWithIdentity(t, RequireCapability(permissions.CapViewBookings, nil), nil)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("counts denials per capability and tier", func(t *testing.T) {
		metrics := observability.NewMetrics(prometheus.NewRegistry())
		acting := &identity.ActingIdentity{TenantID: 1, Tier: permissions.TierStarter}

		serveWithIdentity(t, RequireCapability(permissions.CapManageStock, metrics), acting)
		serveWithIdentity(t, RequireCapability(permissions.CapManageStock, metrics), acting)

		got := testutil.ToFloat64(metrics.PermissionDenialsTotal.WithLabelValues(
			string(permissions.CapManageStock), string(permissions.TierStarter)))
		if got != 2 {
			t.Errorf("Expected 2 denials counted, got %v", got)
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("allows admin", func(t *testing.T) {
		acting := &identity.ActingIdentity{TenantID: 1, Tier: permissions.TierElite, IsAdmin: true}
		rec := serveWithIdentity(t, RequireAdmin(permissions.AdminCapListAllTenants, nil), acting)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
	})

	t.Run("denies non-admin", func(t *testing.T) {
		acting := &identity.ActingIdentity{TenantID: 1, Tier: permissions.TierElite}
		rec := serveWithIdentity(t, RequireAdmin(permissions.AdminCapDeleteTenant, nil), acting)

		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("denies impersonating admin", func(t *testing.T) {
		// IsAdmin is forced false while ghosting, but guard against a
		// hand-built identity that sets both flags.
		acting := &identity.ActingIdentity{TenantID: 1, IsAdmin: true, Impersonating: true}
		rec := serveWithIdentity(t, RequireAdmin(permissions.AdminCapImpersonateTenant, nil), acting)

		if rec.Code != http.StatusForbidden {
			t.Errorf("Expected 403, got %d", rec.Code)
		}
	})

	t.Run("denies without identity", func(t *testing.T) {
		rec := serveWithIdentity(t, RequireAdmin(permissions.AdminCapListAllTenants, nil), nil)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})
}
