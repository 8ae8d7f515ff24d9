package food_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/sharebite/internal/app/coordinator"
	"github.com/dalemusser/sharebite/internal/app/features/food"
	foodstore "github.com/dalemusser/sharebite/internal/app/store/fooditems"
	userstore "github.com/dalemusser/sharebite/internal/app/store/users"
	"github.com/dalemusser/sharebite/internal/app/system/auth"
	"github.com/dalemusser/sharebite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memStore implements both the coordinator's item store and the
// handler's read side over one map.
type memStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]models.FoodItem
}

func newMemStore() *memStore {
	return &memStore{items: make(map[primitive.ObjectID]models.FoodItem)}
}

func (s *memStore) Insert(_ context.Context, item models.FoodItem) (models.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = primitive.NewObjectID()
	item.Status = models.StatusAvailable
	item.CreatedAt = time.Now().UTC()
	s.items[item.ID] = item
	return item, nil
}

func (s *memStore) GetByID(_ context.Context, id primitive.ObjectID) (models.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return models.FoodItem{}, foodstore.ErrNotFound
	}
	return item, nil
}

func (s *memStore) ClaimAvailable(_ context.Context, itemID, claimerID primitive.ObjectID) (models.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok || item.Status != models.StatusAvailable || item.DonorID == claimerID {
		return models.FoodItem{}, foodstore.ErrNoMatch
	}

	now := time.Now().UTC()
	item.Status = models.StatusClaimed
	item.ClaimedBy = &claimerID
	item.ClaimedAt = &now
	s.items[itemID] = item
	return item, nil
}

func (s *memStore) SetStatus(_ context.Context, id primitive.ObjectID, status string) (models.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return models.FoodItem{}, foodstore.ErrNotFound
	}
	item.Status = status
	s.items[id] = item
	return item, nil
}

func (s *memStore) DeleteByID(_ context.Context, id primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return 0, nil
	}
	delete(s.items, id)
	return 1, nil
}

func (s *memStore) sorted() []models.FoodItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.FoodItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out
}

func (s *memStore) ListByDonor(_ context.Context, donorID primitive.ObjectID) ([]models.FoodItem, error) {
	var out []models.FoodItem
	for _, item := range s.sorted() {
		if item.DonorID == donorID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *memStore) ListAvailable(_ context.Context, after primitive.ObjectID, limit int64) ([]models.FoodItem, error) {
	var out []models.FoodItem
	for _, item := range s.sorted() {
		if item.Status != models.StatusAvailable {
			continue
		}
		if after != primitive.NilObjectID && item.ID.Hex() <= after.Hex() {
			continue
		}
		out = append(out, item)
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (s *memStore) ListClaimedBy(_ context.Context, clientID primitive.ObjectID) ([]models.FoodItem, error) {
	var out []models.FoodItem
	for _, item := range s.sorted() {
		if item.Status == models.StatusClaimed && item.ClaimedBy != nil && *item.ClaimedBy == clientID {
			out = append(out, item)
		}
	}
	return out, nil
}

// memUsers resolves caller ids to fixed user records.
type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[primitive.ObjectID]models.User)}
}

func (d *memUsers) add(role string) models.User {
	d.mu.Lock()
	defer d.mu.Unlock()

	u := models.User{
		ID:       primitive.NewObjectID(),
		Username: "user-" + role,
		Role:     role,
		Location: "12 Market St, Springfield",
		Coordinates: models.Coordinates{
			Latitude:  38.70,
			Longitude: -90.30,
		},
	}
	d.users[u.ID] = u
	return u
}

func (d *memUsers) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	return u, nil
}

type nopBus struct{}

func (nopBus) Publish(string, any) {}

// memClaims backs both the coordinator's claim log and the history
// endpoint's read side.
type memClaims struct {
	mu   sync.Mutex
	recs []models.ClaimRecord
}

func (c *memClaims) Record(_ context.Context, clientID, foodItemID primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recs = append(c.recs, models.ClaimRecord{
		ID:         primitive.NewObjectID(),
		ClientID:   clientID,
		FoodItemID: foodItemID,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

func (c *memClaims) ListByClient(_ context.Context, clientID primitive.ObjectID) ([]models.ClaimRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []models.ClaimRecord
	for i := len(c.recs) - 1; i >= 0; i-- {
		if c.recs[i].ClientID == clientID {
			out = append(out, c.recs[i])
		}
	}
	return out, nil
}

type testEnv struct {
	handler *food.Handler
	store   *memStore
	users   *memUsers
	claims  *memClaims
	tokens  *auth.TokenManager
	router  http.Handler
	donor   models.User
	client  models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := auth.NewTokenManager(strings.Repeat("s", 32), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	store := newMemStore()
	users := newMemUsers()
	claims := &memClaims{}
	coord := coordinator.New(store, users, claims, nopBus{}, zap.NewNop())
	handler := food.NewHandler(coord, store, claims, zap.NewNop())

	return &testEnv{
		handler: handler,
		store:   store,
		users:   users,
		claims:  claims,
		tokens:  tokens,
		router:  food.Routes(handler, tokens),
		donor:   users.add(models.RoleDonor),
		client:  users.add(models.RoleClient),
	}
}

// do sends a request through the full route stack with a real bearer
// token for the given user.
func (e *testEnv) do(t *testing.T, method, path string, as models.User, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if !as.ID.IsZero() {
		token, err := e.tokens.Issue(as.ID.Hex(), as.Role)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func createBody() map[string]any {
	return map[string]any{
		"name":             "Lentil soup",
		"description":      "Two trays left from lunch service",
		"quantity":         12,
		"diet":             "Veg",
		"packed":           true,
		"shelf_life_hours": 6,
	}
}

func TestCreateEndpoint(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/", e.donor, createBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	var item models.FoodItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if item.Status != models.StatusAvailable {
		t.Errorf("status = %q, want Available", item.Status)
	}
	if item.Location != e.donor.Location {
		t.Errorf("location = %q, want donor's address", item.Location)
	}
}

func TestCreateEndpointRejectsClients(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/", e.client, createBody())
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403; body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateEndpointRequiresToken(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/", models.User{}, createBody())
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401; body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateEndpointValidation(t *testing.T) {
	e := newTestEnv(t)

	body := createBody()
	body["quantity"] = 0

	rec := e.do(t, http.MethodPost, "/", e.donor, body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
	}
	if len(e.store.items) != 0 {
		t.Error("invalid request stored an item")
	}
}

func TestListAvailablePagination(t *testing.T) {
	e := newTestEnv(t)

	for i := 0; i < 5; i++ {
		if rec := e.do(t, http.MethodPost, "/", e.donor, createBody()); rec.Code != http.StatusCreated {
			t.Fatalf("create %d: %d", i, rec.Code)
		}
	}

	var firstPage struct {
		Items     []models.FoodItem `json:"items"`
		NextAfter string            `json:"next_after"`
	}
	rec := e.do(t, http.MethodGet, "/available?limit=3", e.client, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("first page: %d; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &firstPage); err != nil {
		t.Fatalf("parse first page: %v", err)
	}
	if len(firstPage.Items) != 3 {
		t.Fatalf("first page items = %d, want 3", len(firstPage.Items))
	}
	if firstPage.NextAfter == "" {
		t.Fatal("first page has no cursor")
	}

	var secondPage struct {
		Items     []models.FoodItem `json:"items"`
		NextAfter string            `json:"next_after"`
	}
	rec = e.do(t, http.MethodGet, "/available?limit=3&after="+firstPage.NextAfter, e.client, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second page: %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &secondPage); err != nil {
		t.Fatalf("parse second page: %v", err)
	}
	if len(secondPage.Items) != 2 {
		t.Fatalf("second page items = %d, want 2", len(secondPage.Items))
	}

	seen := make(map[string]bool)
	for _, item := range append(firstPage.Items, secondPage.Items...) {
		if seen[item.ID.Hex()] {
			t.Errorf("item %s appears on both pages", item.ID.Hex())
		}
		seen[item.ID.Hex()] = true
	}
}

func TestListAvailableRejectsBadCursor(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/available?after=not-an-id", e.client, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestClaimEndpoint(t *testing.T) {
	e := newTestEnv(t)

	create := e.do(t, http.MethodPost, "/", e.donor, createBody())
	var item models.FoodItem
	if err := json.Unmarshal(create.Body.Bytes(), &item); err != nil {
		t.Fatalf("parse created item: %v", err)
	}

	rec := e.do(t, http.MethodPost, "/claim/"+item.ID.Hex(), e.client, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("claim: %d; body %s", rec.Code, rec.Body.String())
	}

	// A second claimer gets 409, not 404.
	second := e.users.add(models.RoleClient)
	rec = e.do(t, http.MethodPost, "/claim/"+item.ID.Hex(), second, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second claim: %d, want 409; body %s", rec.Code, rec.Body.String())
	}

	// A claimed item shows up in the claimer's list.
	rec = e.do(t, http.MethodGet, "/claimed", e.client, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("claimed list: %d", rec.Code)
	}
	var page struct {
		Items []models.FoodItem `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("parse claimed list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != item.ID {
		t.Errorf("claimed list = %+v, want just the claimed item", page.Items)
	}
}

func TestClaimHistoryEndpoint(t *testing.T) {
	e := newTestEnv(t)

	// Empty history is an empty array, not null.
	rec := e.do(t, http.MethodGet, "/claims", e.client, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty history: %d; body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"claims":[]`) {
		t.Errorf("empty history body = %s, want empty claims array", rec.Body.String())
	}

	create := e.do(t, http.MethodPost, "/", e.donor, createBody())
	var item models.FoodItem
	if err := json.Unmarshal(create.Body.Bytes(), &item); err != nil {
		t.Fatalf("parse created item: %v", err)
	}
	if rec := e.do(t, http.MethodPost, "/claim/"+item.ID.Hex(), e.client, nil); rec.Code != http.StatusOK {
		t.Fatalf("claim: %d", rec.Code)
	}

	// Deleting the item does not erase the history record.
	if rec := e.do(t, http.MethodDelete, "/"+item.ID.Hex(), e.donor, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/claims", e.client, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("history: %d; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Claims []models.ClaimRecord `json:"claims"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse history: %v", err)
	}
	if len(resp.Claims) != 1 || resp.Claims[0].FoodItemID != item.ID || resp.Claims[0].ClientID != e.client.ID {
		t.Errorf("history = %+v, want one record for the claimed item", resp.Claims)
	}

	// Donors have no claim history to read.
	if rec := e.do(t, http.MethodGet, "/claims", e.donor, nil); rec.Code != http.StatusForbidden {
		t.Errorf("donor reading history: %d, want 403", rec.Code)
	}
}

func TestClaimEndpointUnknownItem(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/claim/"+primitive.NewObjectID().Hex(), e.client, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404; body %s", rec.Code, rec.Body.String())
	}
}

func TestClaimEndpointMalformedID(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/claim/not-hex", e.client, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestClaimEndpointRejectsDonors(t *testing.T) {
	e := newTestEnv(t)

	create := e.do(t, http.MethodPost, "/", e.donor, createBody())
	var item models.FoodItem
	if err := json.Unmarshal(create.Body.Bytes(), &item); err != nil {
		t.Fatalf("parse created item: %v", err)
	}

	rec := e.do(t, http.MethodPost, "/claim/"+item.ID.Hex(), e.donor, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestSetStatusEndpoint(t *testing.T) {
	e := newTestEnv(t)

	create := e.do(t, http.MethodPost, "/", e.donor, createBody())
	var item models.FoodItem
	if err := json.Unmarshal(create.Body.Bytes(), &item); err != nil {
		t.Fatalf("parse created item: %v", err)
	}

	rec := e.do(t, http.MethodPut, "/"+item.ID.Hex(), e.donor, map[string]string{"status": "Delivered"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}

	var updated models.FoodItem
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if updated.Status != models.StatusDelivered {
		t.Errorf("status = %q, want Delivered", updated.Status)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	e := newTestEnv(t)

	create := e.do(t, http.MethodPost, "/", e.donor, createBody())
	var item models.FoodItem
	if err := json.Unmarshal(create.Body.Bytes(), &item); err != nil {
		t.Fatalf("parse created item: %v", err)
	}

	// A different donor cannot delete it.
	other := e.users.add(models.RoleDonor)
	if rec := e.do(t, http.MethodDelete, "/"+item.ID.Hex(), other, nil); rec.Code != http.StatusForbidden {
		t.Errorf("non-owner delete: %d, want 403", rec.Code)
	}

	if rec := e.do(t, http.MethodDelete, "/"+item.ID.Hex(), e.donor, nil); rec.Code != http.StatusOK {
		t.Errorf("owner delete: %d, want 200", rec.Code)
	}

	if rec := e.do(t, http.MethodDelete, "/"+item.ID.Hex(), e.donor, nil); rec.Code != http.StatusNotFound {
		t.Errorf("repeat delete: %d, want 404", rec.Code)
	}
}
