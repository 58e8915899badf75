package service

import (
	"context"
	"strconv"

	"github.com/atinyakov/FinTrack/internal/models"
	"github.com/atinyakov/FinTrack/internal/pagination"
)

// EntryRepository defines the owner-scoped persistence operations needed by
// EntryService. Every method must filter by ownerID in the query itself.
type EntryRepository interface {
	// Create inserts a new entry owned by ownerID.
	Create(ctx context.Context, ownerID int64, f models.EntryFields) (*models.Entry, error)
	// List returns one page of matching entries and the number of all matching entries.
	List(ctx context.Context, ownerID int64, filter models.ListFilter) ([]models.Entry, int, error)
	// GetByID returns models.ErrNotFound for a missing or foreign entry.
	GetByID(ctx context.Context, ownerID, id int64) (*models.Entry, error)
	// Update replaces all mutable fields; models.ErrNotFound as for GetByID.
	Update(ctx context.Context, ownerID, id int64, f models.EntryFields) (*models.Entry, error)
	// Patch changes the fields set in p; models.ErrNotFound as for GetByID.
	Patch(ctx context.Context, ownerID, id int64, p models.EntryPatch) (*models.Entry, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, ownerID, id int64) (bool, error)
}

// EntryPage is one page of a list result.
type EntryPage struct {
	Items      []models.Entry  `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

// EntryService implements the owner-scoped operations on one kind of entry.
// The same type serves costs and receivements; only the repository differs.
type EntryService struct {
	// repo is the underlying persistence repository.
	repo EntryRepository
}

// NewEntryService constructs an EntryService with the provided repository.
func NewEntryService(repo EntryRepository) *EntryService {
	return &EntryService{repo: repo}
}

// Create stores a new entry for ownerID. The owner always comes from the
// caller's identity, never from the payload.
func (s *EntryService) Create(ctx context.Context, ownerID int64, f models.EntryFields) (*models.Entry, error) {
	if f.TransactionDate.IsZero() {
		f.TransactionDate = models.Today()
	}
	return s.repo.Create(ctx, ownerID, f)
}

// List returns the requested page of the owner's entries, newest first.
// Zero Page and PageSize take their defaults. A page past the last one is
// empty, not an error.
func (s *EntryService) List(ctx context.Context, ownerID int64, filter models.ListFilter) (*EntryPage, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Entry{}
	}
	return &EntryPage{
		Items:      items,
		Pagination: pagination.NewMeta(filter.Page, filter.PageSize, total),
	}, nil
}

// GetByID returns one of the owner's entries or models.ErrNotFound.
func (s *EntryService) GetByID(ctx context.Context, ownerID, id int64) (*models.Entry, error) {
	return s.repo.GetByID(ctx, ownerID, id)
}

// Update replaces every mutable field of one of the owner's entries.
func (s *EntryService) Update(ctx context.Context, ownerID, id int64, f models.EntryFields) (*models.Entry, error) {
	return s.repo.Update(ctx, ownerID, id, f)
}

// Patch applies a partial update. An empty patch returns the entry as is.
func (s *EntryService) Patch(ctx context.Context, ownerID, id int64, p models.EntryPatch) (*models.Entry, error) {
	return s.repo.Patch(ctx, ownerID, id, p)
}

// Delete removes one of the owner's entries or returns models.ErrNotFound.
func (s *EntryService) Delete(ctx context.Context, ownerID, id int64) error {
	removed, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !removed {
		return models.ErrNotFound
	}
	return nil
}

func normalizeFilter(f models.ListFilter) (models.ListFilter, error) {
	if f.Page == 0 {
		f.Page = pagination.DefaultPage
	}
	if f.PageSize == 0 {
		f.PageSize = pagination.DefaultPageSize
	}

	verr := ValidationError{}
	if f.Page < 1 {
		verr["page"] = "must be no less than 1"
	}
	if f.PageSize < 1 || f.PageSize > pagination.MaxPageSize {
		verr["page_size"] = "must be between 1 and " + strconv.Itoa(pagination.MaxPageSize)
	}
	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(f.EndDate.Time) {
		verr["start_date"] = "must not be after end_date"
	}
	if len(verr) > 0 {
		return f, verr
	}
	return f, nil
}
