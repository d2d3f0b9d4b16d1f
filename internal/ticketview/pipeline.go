package ticketview

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository"
)

// windowFactor bounds the server fetch: the pipeline asks for
// PageSize*windowFactor candidates and filters/paginates them in memory.
// TotalUnfiltered carries the true count so a truncated window is
// detectable by the caller.
const windowFactor = 10

const DefaultPageSize = 9

// Params is the dashboard filter/sort/pagination state.
type Params struct {
	Search   string
	Status   string // a valid status or "all"
	Category string // a valid category or "all"
	Sort     string // recent|oldest|commented|upvoted
	Page     int    // 1-based
	PageSize int
}

func (p *Params) normalize() {
	p.Search = strings.TrimSpace(p.Search)
	if p.Status == "" {
		p.Status = models.FilterAll
	}
	if p.Category == "" {
		p.Category = models.FilterAll
	}
	if !ValidSort(p.Sort) {
		p.Sort = SortRecent
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
}

// Snapshot is the derived view state handed to the rendering layer.
type Snapshot struct {
	VisibleTickets  []models.Ticket `json:"items"`
	TotalFiltered   int             `json:"totalFiltered"`
	TotalUnfiltered int             `json:"totalUnfiltered"`
	Page            int             `json:"page"`
	TotalPages      int             `json:"totalPages"`
}

// Pipeline owns the ticket list for one dashboard view. The server-side
// filter narrows the candidate set; the in-memory pass below is what the
// user actually sees. Fetches are tagged with a generation token and a
// response that is no longer the latest is discarded, so an old slow fetch
// can never overwrite a newer one.
type Pipeline struct {
	src    Source
	viewer string
	log    zerolog.Logger

	mu     sync.Mutex
	params Params
	window []models.Ticket // last accepted fetch window
	total  int             // true filtered count from the source
	gen    uint64          // latest issued fetch generation
	closed bool
}

func NewPipeline(src Source, viewerID string, params Params, log zerolog.Logger) *Pipeline {
	params.normalize()
	return &Pipeline{src: src, viewer: viewerID, params: params, log: log}
}

// Refresh runs one fetch with the current params. It is also the manual
// retry path; there is no automatic retry.
func (p *Pipeline) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.gen++
	gen := p.gen
	f := repository.TicketFilter{
		Search:   p.params.Search,
		Status:   p.params.Status,
		Category: p.params.Category,
		ViewerID: p.viewer,
		Sort:     p.params.Sort,
		Limit:    p.params.PageSize * windowFactor,
		Offset:   0,
	}
	p.mu.Unlock()

	window, total, err := p.src.List(ctx, f)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if gen != p.gen {
		// A newer fetch was issued while this one was in flight.
		p.log.Debug().Uint64("gen", gen).Uint64("latest", p.gen).Msg("discarding stale ticket fetch")
		return ErrStale
	}
	if err != nil {
		return ClassifyFetchErr(err)
	}
	p.window = window
	p.total = total
	return nil
}

// SetSearch, SetStatus, SetCategory and SetSort change one filter parameter
// and reset the page to 1. The caller refreshes afterwards.
func (p *Pipeline) SetSearch(q string) { p.setParam(func(pr *Params) { pr.Search = q }) }

func (p *Pipeline) SetStatus(s string) { p.setParam(func(pr *Params) { pr.Status = s }) }

func (p *Pipeline) SetCategory(c string) { p.setParam(func(pr *Params) { pr.Category = c }) }

func (p *Pipeline) SetSort(s string) { p.setParam(func(pr *Params) { pr.Sort = s }) }

func (p *Pipeline) setParam(apply func(*Params)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	apply(&p.params)
	p.params.Page = 1
	p.params.normalize()
}

// SetPage moves to the given page, clamped to the valid range for the
// current filtered set. Changing pages re-derives from the cached window;
// it does not re-fetch.
func (p *Pipeline) SetPage(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	filtered := p.filterLocked()
	last := (len(filtered) + p.params.PageSize - 1) / p.params.PageSize
	if last < 1 {
		last = 1
	}
	if page < 1 {
		page = 1
	}
	if page > last {
		page = last
	}
	p.params.Page = page
}

// ClearFilters restores the default view: no search, all statuses and
// categories, recent-first, page 1.
func (p *Pipeline) ClearFilters() {
	p.setParam(func(pr *Params) {
		pr.Search = ""
		pr.Status = models.FilterAll
		pr.Category = models.FilterAll
		pr.Sort = SortRecent
	})
}

func (p *Pipeline) Params() Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

// Close invalidates every in-flight fetch. Late responses become no-ops.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.gen++
}

// Snapshot derives the visible page from the cached window. A page beyond
// the filtered range yields an empty slice, never an error.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	filtered := p.filterLocked()
	sortTickets(filtered, p.params.Sort)

	size := p.params.PageSize
	totalPages := (len(filtered) + size - 1) / size
	lo := (p.params.Page - 1) * size
	hi := lo + size
	if lo > len(filtered) {
		lo = len(filtered)
	}
	if hi > len(filtered) {
		hi = len(filtered)
	}

	visible := make([]models.Ticket, hi-lo)
	copy(visible, filtered[lo:hi])

	return Snapshot{
		VisibleTickets:  visible,
		TotalFiltered:   len(filtered),
		TotalUnfiltered: p.total,
		Page:            p.params.Page,
		TotalPages:      totalPages,
	}
}

func (p *Pipeline) filterLocked() []models.Ticket {
	out := make([]models.Ticket, 0, len(p.window))
	for _, t := range p.window {
		if matches(t, p.params) {
			out = append(out, t)
		}
	}
	return out
}

// matches is the authoritative visibility predicate: the server filter is
// best-effort only and is re-applied here to guard against drift.
func matches(t models.Ticket, p Params) bool {
	if q := strings.ToLower(p.Search); q != "" {
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) &&
			!strings.Contains(strings.ToLower(t.TicketNumber), q) {
			return false
		}
	}
	if p.Status != models.FilterAll && !strings.EqualFold(p.Status, t.Status) {
		return false
	}
	if p.Category != models.FilterAll && !strings.EqualFold(p.Category, t.Category) {
		return false
	}
	return true
}

// sortTickets orders in place by the dashboard sort key, ties broken by id
// ascending for a stable, deterministic order.
func sortTickets(ts []models.Ticket, key string) {
	slices.SortFunc(ts, func(a, b models.Ticket) int {
		switch key {
		case SortOldest:
			if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
				return c
			}
		case SortCommented:
			if c := cmp.Compare(b.CommentCount, a.CommentCount); c != 0 {
				return c
			}
		case SortUpvoted:
			if c := cmp.Compare(b.Upvotes, a.Upvotes); c != 0 {
				return c
			}
		default: // SortRecent
			if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
