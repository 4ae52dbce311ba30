package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/reservahq/reserva/pkg/audit"
	"github.com/reservahq/reserva/pkg/bookings"
	"github.com/reservahq/reserva/pkg/calllogs"
	"github.com/reservahq/reserva/pkg/fault"
	"github.com/reservahq/reserva/pkg/identity"
	"github.com/reservahq/reserva/pkg/impersonation"
	"github.com/reservahq/reserva/pkg/observability"
	"github.com/reservahq/reserva/pkg/permissions"
	"github.com/reservahq/reserva/pkg/promos"
	"github.com/reservahq/reserva/pkg/stock"
	"github.com/reservahq/reserva/pkg/tenants"
)

// testEnv wires a full server over in-memory stores and miniredis, exercised
// through a real HTTP listener so the whole middleware chain runs.
type testEnv struct {
	ts      *httptest.Server
	tenants *memTenantService

	admin   *tenants.Tenant
	pro     *tenants.Tenant
	starter *tenants.Tenant
	elite   *tenants.Tenant

	adminToken   string
	proToken     string
	starterToken string
	eliteToken   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith wires the server with an explicit rate limiter; nil leaves
// rate limiting off so unrelated suites never trip a limit.
func newTestEnvWith(t *testing.T, limiter RateLimiter) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	tenantSvc := newMemTenantService()
	admin := tenantSvc.seed(&tenants.Tenant{
		Email:       "admin@reserva.test",
		DisplayName: "Platform Admin",
		Role:        tenants.RoleAdmin,
		Status:      tenants.StatusActive,
	})
	pro := tenantSvc.seed(&tenants.Tenant{
		Email:       "bistro@reserva.test",
		DisplayName: "Le Bistro",
		Role:        tenants.RoleClient,
		Sector:      permissions.SectorRestaurant,
		Tier:        permissions.TierPro,
		Status:      tenants.StatusActive,
	})
	starter := tenantSvc.seed(&tenants.Tenant{
		Email:       "dentist@reserva.test",
		DisplayName: "Smile Clinic",
		Role:        tenants.RoleClient,
		Sector:      permissions.SectorDental,
		Tier:        permissions.TierStarter,
		Status:      tenants.StatusActive,
	})
	elite := tenantSvc.seed(&tenants.Tenant{
		Email:       "garage@reserva.test",
		DisplayName: "Fast Garage",
		Role:        tenants.RoleClient,
		Sector:      permissions.SectorGarage,
		Tier:        permissions.TierElite,
		Status:      tenants.StatusActive,
	})

	authenticator, err := identity.NewTokenAuthenticator("api-test-secret")
	require.NoError(t, err)

	ghosts := impersonation.NewManager(redisClient, tenantSvc, time.Minute)
	resolver := identity.NewResolver(tenantSvc, ghosts)

	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	engine := bookings.NewEngine(newMemBookingStore(), nil, logger)
	engine.SetMetrics(metrics)

	server := NewServer(Deps{
		Logger:        logger,
		Metrics:       metrics,
		Tenants:       tenantSvc,
		Bookings:      engine,
		Stock:         stock.NewService(newMemStockStore()),
		Promos:        promos.NewService(newMemPromoStore()),
		CallLogs:      calllogs.NewService(newMemCallLogStore()),
		Ghosts:        ghosts,
		Authenticator: authenticator,
		Resolver:      resolver,
		AuditLogger:   audit.NoOpLogger(),
		RateLimiter:   limiter,
	})

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		ts:           ts,
		tenants:      tenantSvc,
		admin:        admin,
		pro:          pro,
		starter:      starter,
		elite:        elite,
		adminToken:   authenticator.Issue(admin.ID),
		proToken:     authenticator.Issue(pro.ID),
		starterToken: authenticator.Issue(starter.ID),
		eliteToken:   authenticator.Issue(elite.ID),
	}
}

// do issues a request against the test server. token and ghost are optional.
func (e *testEnv) do(t *testing.T, method, path, token, ghost string, body interface{}) *http.Response {
	t.Helper()

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if ghost != "" {
		req.Header.Set("X-Reserva-Ghost", ghost)
	}

	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func readJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// memTenantService is an in-memory tenants.Service for API tests
type memTenantService struct {
	mu      sync.Mutex
	nextID  int64
	tenants map[int64]*tenants.Tenant
}

func newMemTenantService() *memTenantService {
	return &memTenantService{tenants: make(map[int64]*tenants.Tenant)}
}

func (s *memTenantService) seed(tenant *tenants.Tenant) *tenants.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	tenant.ID = s.nextID
	tenant.CreatedAt = time.Now().UTC()
	tenant.UpdatedAt = tenant.CreatedAt
	s.tenants[tenant.ID] = tenant
	return tenant
}

func (s *memTenantService) Create(req *tenants.CreateTenantRequest) (*tenants.Tenant, error) {
	if req.Email == "" {
		return nil, &fault.ValidationError{Field: "email", Reason: "required"}
	}
	return s.seed(&tenants.Tenant{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		CompanyName: req.CompanyName,
		Role:        tenants.RoleClient,
		Sector:      req.Sector,
		Tier:        req.Tier,
		Status:      tenants.StatusActive,
	}), nil
}

func (s *memTenantService) Get(id int64) (*tenants.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant, ok := s.tenants[id]
	if !ok {
		return nil, &fault.NotFoundError{Resource: "tenant"}
	}
	return tenant, nil
}

func (s *memTenantService) GetByEmail(email string) (*tenants.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tenant := range s.tenants {
		if tenant.Email == email {
			return tenant, nil
		}
	}
	return nil, &fault.NotFoundError{Resource: "tenant"}
}

func (s *memTenantService) List() ([]*tenants.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*tenants.Tenant, 0, len(s.tenants))
	for _, tenant := range s.tenants {
		out = append(out, tenant)
	}
	return out, nil
}

func (s *memTenantService) Update(id int64, req *tenants.UpdateTenantRequest) (*tenants.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant, ok := s.tenants[id]
	if !ok {
		return nil, &fault.NotFoundError{Resource: "tenant"}
	}
	if req.DisplayName != nil {
		tenant.DisplayName = *req.DisplayName
	}
	if req.CompanyName != nil {
		tenant.CompanyName = *req.CompanyName
	}
	if req.Tier != nil {
		tenant.Tier = *req.Tier
	}
	if req.Settings != nil {
		tenant.Settings = req.Settings
	}
	tenant.UpdatedAt = time.Now().UTC()
	return tenant, nil
}

func (s *memTenantService) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[id]; !ok {
		return &fault.NotFoundError{Resource: "tenant"}
	}
	delete(s.tenants, id)
	return nil
}

// memBookingStore is an in-memory bookings.Store for API tests
type memBookingStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*bookings.Booking
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{bookings: make(map[int64]*bookings.Booking)}
}

func (s *memBookingStore) Create(ctx context.Context, booking *bookings.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	booking.ID = s.nextID
	booking.CreatedAt = time.Now().UTC()
	booking.UpdatedAt = booking.CreatedAt
	s.bookings[booking.ID] = booking
	return nil
}

func (s *memBookingStore) Get(ctx context.Context, tenantID, id int64) (*bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok || booking.TenantID != tenantID {
		return nil, &fault.NotFoundError{Resource: "booking"}
	}
	return booking, nil
}

func (s *memBookingStore) List(ctx context.Context, tenantID int64) ([]*bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*bookings.Booking
	for _, booking := range s.bookings {
		if booking.TenantID == tenantID {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (s *memBookingStore) UpdateStatus(ctx context.Context, tenantID, id int64, status bookings.Status, expectedVersion int64) (*bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok || booking.TenantID != tenantID {
		return nil, &fault.NotFoundError{Resource: "booking"}
	}
	if booking.Version != expectedVersion {
		return nil, &fault.ConflictError{Resource: "booking"}
	}
	booking.Status = status
	booking.Version++
	booking.UpdatedAt = time.Now().UTC()
	return booking, nil
}

func (s *memBookingStore) Delete(ctx context.Context, tenantID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookings[id]
	if !ok || booking.TenantID != tenantID {
		return &fault.NotFoundError{Resource: "booking"}
	}
	delete(s.bookings, id)
	return nil
}

// memStockStore is an in-memory stock.Store for API tests
type memStockStore struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*stock.Item
}

func newMemStockStore() *memStockStore {
	return &memStockStore{items: make(map[int64]*stock.Item)}
}

func (s *memStockStore) Create(ctx context.Context, item *stock.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	item.ID = s.nextID
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt
	s.items[item.ID] = item
	return nil
}

func (s *memStockStore) Get(ctx context.Context, tenantID, id int64) (*stock.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, &fault.NotFoundError{Resource: "stock item"}
	}
	return item, nil
}

func (s *memStockStore) List(ctx context.Context, tenantID int64) ([]*stock.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*stock.Item
	for _, item := range s.items {
		if item.TenantID == tenantID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memStockStore) Update(ctx context.Context, item *stock.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[item.ID]
	if !ok || existing.TenantID != item.TenantID {
		return &fault.NotFoundError{Resource: "stock item"}
	}
	item.UpdatedAt = time.Now().UTC()
	s.items[item.ID] = item
	return nil
}

func (s *memStockStore) Delete(ctx context.Context, tenantID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.TenantID != tenantID {
		return &fault.NotFoundError{Resource: "stock item"}
	}
	delete(s.items, id)
	return nil
}

// memPromoStore is an in-memory promos.Store for API tests
type memPromoStore struct {
	mu     sync.Mutex
	nextID int64
	promos map[int64]*promos.Promo
}

func newMemPromoStore() *memPromoStore {
	return &memPromoStore{promos: make(map[int64]*promos.Promo)}
}

func (s *memPromoStore) Create(ctx context.Context, promo *promos.Promo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	promo.ID = s.nextID
	promo.CreatedAt = time.Now().UTC()
	promo.UpdatedAt = promo.CreatedAt
	s.promos[promo.ID] = promo
	return nil
}

func (s *memPromoStore) Get(ctx context.Context, tenantID, id int64) (*promos.Promo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	promo, ok := s.promos[id]
	if !ok || promo.TenantID != tenantID {
		return nil, &fault.NotFoundError{Resource: "promo"}
	}
	return promo, nil
}

func (s *memPromoStore) List(ctx context.Context, tenantID int64) ([]*promos.Promo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*promos.Promo
	for _, promo := range s.promos {
		if promo.TenantID == tenantID {
			out = append(out, promo)
		}
	}
	return out, nil
}

func (s *memPromoStore) Update(ctx context.Context, promo *promos.Promo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.promos[promo.ID]
	if !ok || existing.TenantID != promo.TenantID {
		return &fault.NotFoundError{Resource: "promo"}
	}
	promo.UpdatedAt = time.Now().UTC()
	s.promos[promo.ID] = promo
	return nil
}

func (s *memPromoStore) Delete(ctx context.Context, tenantID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	promo, ok := s.promos[id]
	if !ok || promo.TenantID != tenantID {
		return &fault.NotFoundError{Resource: "promo"}
	}
	delete(s.promos, id)
	return nil
}

// memCallLogStore is an in-memory calllogs.Store for API tests
type memCallLogStore struct {
	mu      sync.Mutex
	nextID  int64
	entries map[int64]*calllogs.Entry
}

func newMemCallLogStore() *memCallLogStore {
	return &memCallLogStore{entries: make(map[int64]*calllogs.Entry)}
}

func (s *memCallLogStore) Append(ctx context.Context, entry *calllogs.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	entry.ID = s.nextID
	entry.CreatedAt = time.Now().UTC()
	s.entries[entry.ID] = entry
	return nil
}

func (s *memCallLogStore) List(ctx context.Context, tenantID int64) ([]*calllogs.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*calllogs.Entry
	for _, entry := range s.entries {
		if entry.TenantID == tenantID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *memCallLogStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for id, entry := range s.entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}
