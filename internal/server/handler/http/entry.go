package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/atinyakov/FinTrack/internal/middleware"
	"github.com/atinyakov/FinTrack/internal/models"
	"github.com/atinyakov/FinTrack/internal/pagination"
	"github.com/atinyakov/FinTrack/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EntryService defines the owner-scoped entry operations used by EntryHandler.
type EntryService interface {
	Create(ctx context.Context, ownerID int64, f models.EntryFields) (*models.Entry, error)
	List(ctx context.Context, ownerID int64, filter models.ListFilter) (*service.EntryPage, error)
	GetByID(ctx context.Context, ownerID, id int64) (*models.Entry, error)
	Update(ctx context.Context, ownerID, id int64, f models.EntryFields) (*models.Entry, error)
	Patch(ctx context.Context, ownerID, id int64, p models.EntryPatch) (*models.Entry, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

// EntryHandler serves the CRUD endpoints of one resource, costs or
// receivements. It must be mounted behind middleware.BearerAuth.
type EntryHandler struct {
	svc      EntryService
	res      models.Resource
	notFound string
	log      *zap.Logger
}

// listResponse is the body of a list request.
type listResponse struct {
	Items      []models.Entry   `json:"items"`
	Pagination pagination.Meta  `json:"pagination"`
	Links      pagination.Links `json:"links"`
}

// NewEntryHandler creates a handler for the entries of res.
func NewEntryHandler(svc EntryService, res models.Resource, log *zap.Logger) *EntryHandler {
	return &EntryHandler{
		svc:      svc,
		res:      res,
		notFound: res.Kind + " not found",
		log:      log,
	}
}

// Routes registers the handler on r:
//
//	POST   /      create
//	GET    /      list
//	GET    /{id}  get
//	PUT    /{id}  full update
//	PATCH  /{id}  partial update
//	DELETE /{id}  delete
func (h *EntryHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}", h.Patch)
	r.Delete("/{id}", h.Delete)
}

// Create stores a new entry for the caller and answers 201 with it.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.validateCreate(); err != nil {
		h.fail(w, r, err)
		return
	}

	e, err := h.svc.Create(r.Context(), owner.ID, req.fields())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+strconv.FormatInt(e.ID, 10))
	writeJSON(w, http.StatusCreated, e)
}

// List answers one page of the caller's entries with navigation links.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}

	filter, raw, err := parseListQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.svc.List(r.Context(), owner.ID, filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Items:      page.Items,
		Pagination: page.Pagination,
		Links:      pagination.BuildLinks(r.URL.Path, page.Pagination, raw),
	})
}

// Get answers one of the caller's entries.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	e, err := h.svc.GetByID(r.Context(), owner.ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Update replaces every field of one of the caller's entries.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.validateUpdate(); err != nil {
		h.fail(w, r, err)
		return
	}

	e, err := h.svc.Update(r.Context(), owner.ID, id, req.fields())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Patch changes the fields present and non-null in the body.
func (h *EntryHandler) Patch(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := req.validatePatch(); err != nil {
		h.fail(w, r, err)
		return
	}

	e, err := h.svc.Patch(r.Context(), owner.ID, id, req.patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Delete removes one of the caller's entries and answers 204.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, id, ok := h.target(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), owner.ID, id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EntryHandler) owner(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return id, ok
}

// target resolves the caller and the {id} path parameter. An id that is
// not a positive integer cannot name any entry and answers 404.
func (h *EntryHandler) target(w http.ResponseWriter, r *http.Request) (models.Identity, int64, bool) {
	owner, ok := h.owner(w, r)
	if !ok {
		return owner, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusNotFound, h.notFound)
		return owner, 0, false
	}
	return owner, id, true
}

func (h *EntryHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.log, err, h.notFound)
}
