// internal/app/features/food/handler.go

// Package food exposes the food-item lifecycle over HTTP. All state
// transitions go through the coordinator; the handlers only decode
// requests, resolve the caller, and shape responses.
package food

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/sharebite/internal/app/coordinator"
	"github.com/dalemusser/sharebite/internal/app/system/apierr"
	"github.com/dalemusser/sharebite/internal/app/system/auth"
	"github.com/dalemusser/sharebite/internal/app/system/httpjson"
	"github.com/dalemusser/sharebite/internal/app/system/inputval"
	"github.com/dalemusser/sharebite/internal/app/system/timeouts"
	"github.com/dalemusser/sharebite/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Lister is the read side of the food-item store.
type Lister interface {
	ListByDonor(ctx context.Context, donorID primitive.ObjectID) ([]models.FoodItem, error)
	ListAvailable(ctx context.Context, after primitive.ObjectID, limit int64) ([]models.FoodItem, error)
	ListClaimedBy(ctx context.Context, clientID primitive.ObjectID) ([]models.FoodItem, error)
}

// ClaimHistory is the read side of the claim audit log.
type ClaimHistory interface {
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]models.ClaimRecord, error)
}

// Handler holds dependencies for the food endpoints.
type Handler struct {
	Coord  *coordinator.Coordinator
	Items  Lister
	Claims ClaimHistory
	Log    *zap.Logger
}

// NewHandler constructs a food Handler.
func NewHandler(coord *coordinator.Coordinator, items Lister, claims ClaimHistory, logger *zap.Logger) *Handler {
	return &Handler{Coord: coord, Items: items, Claims: claims, Log: logger}
}

// listResponse wraps item pages. NextAfter is the cursor for the next
// page and is empty on the last page.
type listResponse struct {
	Items     []models.FoodItem `json:"items"`
	NextAfter string            `json:"next_after,omitempty"`
}

// Create handles POST /api/food.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apierr.Unauthorized("authentication token required"))
		return
	}

	var in coordinator.CreateInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if err := inputval.Struct(in); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	item, err := h.Coord.Create(ctx, caller, in)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, item)
}

// ListMine handles GET /api/food: the donor's own listings.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	_, callerID, err := requireCaller(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Items.ListByDonor(ctx, callerID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not load your listings"))
		return
	}
	httpjson.Write(w, http.StatusOK, listResponse{Items: items})
}

// ListAvailable handles GET /api/food/available with keyset pagination:
// ?after=<last seen id>&limit=<page size>.
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	after := primitive.NilObjectID
	if raw := r.URL.Query().Get("after"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpjson.WriteError(w, h.Log, apierr.Validation("malformed after cursor"))
			return
		}
		after = id
	}

	limit := int64(defaultPageSize)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			httpjson.WriteError(w, h.Log, apierr.Validation("limit must be a positive integer"))
			return
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Items.ListAvailable(ctx, after, limit)
	if err != nil {
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not load available listings"))
		return
	}

	resp := listResponse{Items: items}
	if int64(len(items)) == limit {
		resp.NextAfter = items[len(items)-1].ID.Hex()
	}
	httpjson.Write(w, http.StatusOK, resp)
}

// ListClaimed handles GET /api/food/claimed: the items the calling
// client has claimed.
func (h *Handler) ListClaimed(w http.ResponseWriter, r *http.Request) {
	_, callerID, err := requireCaller(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := h.Items.ListClaimedBy(ctx, callerID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not load claimed listings"))
		return
	}
	httpjson.Write(w, http.StatusOK, listResponse{Items: items})
}

// ListClaimHistory handles GET /api/food/claims: the calling client's
// claim audit trail, most recent first. Unlike /claimed it reflects
// every claim the client ever won, including items later delivered or
// deleted.
func (h *Handler) ListClaimHistory(w http.ResponseWriter, r *http.Request) {
	_, callerID, err := requireCaller(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	recs, err := h.Claims.ListByClient(ctx, callerID)
	if err != nil {
		httpjson.WriteError(w, h.Log, apierr.Unavailable(err, "could not load your claim history"))
		return
	}
	if recs == nil {
		recs = []models.ClaimRecord{}
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"claims": recs})
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SetStatus handles PUT /api/food/{id}.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apierr.Unauthorized("authentication token required"))
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	var req statusRequest
	if err := httpjson.Decode(w, r, &req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	if err := inputval.Struct(req); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	item, err := h.Coord.SetStatus(ctx, caller, itemID, req.Status)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, item)
}

// Claim handles POST /api/food/claim/{id}.
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apierr.Unauthorized("authentication token required"))
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	item, err := h.Coord.Claim(ctx, caller, itemID)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, item)
}

// Delete handles DELETE /api/food/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.WriteError(w, h.Log, apierr.Unauthorized("authentication token required"))
		return
	}
	itemID, err := pathID(r)
	if err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Coord.Delete(ctx, caller, itemID); err != nil {
		httpjson.WriteError(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"message": "food item deleted"})
}

func pathID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, apierr.Validation("malformed item id")
	}
	return id, nil
}

func requireCaller(r *http.Request) (auth.Identity, primitive.ObjectID, error) {
	caller, ok := auth.CurrentUser(r)
	if !ok {
		return auth.Identity{}, primitive.NilObjectID, apierr.Unauthorized("authentication token required")
	}
	id, err := primitive.ObjectIDFromHex(caller.ID)
	if err != nil {
		return auth.Identity{}, primitive.NilObjectID, apierr.Unauthorized("malformed caller identity")
	}
	return caller, id, nil
}
