// Package gardens implements the garden listing component: it loads garden
// records from the backend, keeps a deduplicated copy for rendering and
// handles confirmed deletes.
package gardens

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vbonduro/gardenbook/internal/auth"
	"github.com/vbonduro/gardenbook/internal/domain"
	"github.com/vbonduro/gardenbook/internal/pocketbase"
)

const (
	// PageSize is the number of gardens requested per load. Only the first
	// page is ever shown.
	PageSize  = 50
	SortField = "title"

	ConfirmDeletePrompt = "Are you sure you want to delete this garden?"
	DeletedMessage      = "Garden deleted successfully"

	loadFailedMessage       = "Failed to load gardens"
	loadUnexpectedMessage   = "An error occurred while loading gardens"
	deleteFailedMessage     = "Failed to delete garden"
	deleteUnexpectedMessage = "An error occurred while deleting the garden"
)

// RecordClient is the subset of *pocketbase.Client the list requires.
type RecordClient interface {
	AuthStore() *pocketbase.AuthStore
	List(ctx context.Context, collection string, page, perPage int, opts pocketbase.ListOptions) (*pocketbase.ListResult, error)
	Delete(ctx context.Context, collection, id string) error
	FileURL(record *pocketbase.Record, filename string) string
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

type Options struct {
	// OnRefresh runs after every successful load.
	OnRefresh        func()
	ShowActions      bool
	ShowCreateButton bool
}

// DefaultOptions shows both the per-card actions and the create button.
func DefaultOptions() Options {
	return Options{ShowActions: true, ShowCreateButton: true}
}

// State is a snapshot of the list's view state. Error and Success are empty
// when there is nothing to show.
type State struct {
	Loading  bool
	Deleting bool
	Error    string
	Success  string
	Gardens  []domain.Garden
}

type entry struct {
	garden domain.Garden
	record *pocketbase.Record
}

type List struct {
	client RecordClient
	tokens auth.TokenProvider
	opts   Options
	logger *slog.Logger

	loads singleflight.Group

	mu       sync.Mutex
	loading  bool
	deleting bool
	errMsg   string
	success  string
	entries  []entry
}

// NewList builds an empty list. The owner must call Load once to populate it.
func NewList(client RecordClient, tokens auth.TokenProvider, opts Options, logger *slog.Logger) *List {
	if tokens == nil {
		tokens = auth.Static("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &List{client: client, tokens: tokens, opts: opts, logger: logger}
}

// Load fetches the first page of gardens sorted by title and replaces the
// current sequence. Failures are reported through State().Error and leave the
// previous sequence in place. Concurrent calls share a single request, which
// is not cancelled when the caller that started it gives up.
func (l *List) Load(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	_, _, _ = l.loads.Do("load", func() (any, error) {
		l.load(ctx)
		return nil, nil
	})
}

func (l *List) load(ctx context.Context) {
	l.mu.Lock()
	l.loading = true
	l.errMsg = ""
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.loading = false
		l.mu.Unlock()
	}()

	if err := l.authorize(ctx); err != nil {
		l.logger.Error("error loading gardens", "error", err)
		l.setError(loadUnexpectedMessage)
		return
	}

	res, err := l.client.List(ctx, domain.GardensCollection, 1, PageSize, pocketbase.ListOptions{Sort: SortField})
	if err != nil {
		l.logger.Error("error loading gardens", "error", err)
		l.setError(pocketbase.Message(err, loadFailedMessage))
		return
	}

	entries, err := toEntries(Dedupe(res.Items))
	if err != nil {
		l.logger.Error("error loading gardens", "error", err)
		l.setError(loadUnexpectedMessage)
		return
	}

	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
	l.logger.Debug("gardens loaded", "count", len(entries), "received", len(res.Items))

	if l.opts.OnRefresh != nil {
		l.opts.OnRefresh()
	}
}

// Delete removes the garden with id after confirm approves it, then reloads
// the list. A declined confirmation, or a delete already in flight, leaves the
// state untouched.
func (l *List) Delete(ctx context.Context, id string, confirm Confirmer) {
	if confirm == nil || l.State().Deleting {
		return
	}
	if !confirm.Confirm(ctx, ConfirmDeletePrompt) {
		return
	}

	// Another delete may have started while the user was answering.
	l.mu.Lock()
	if l.deleting {
		l.mu.Unlock()
		return
	}
	l.deleting = true
	l.errMsg = ""
	l.success = ""
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.deleting = false
		l.mu.Unlock()
	}()

	if err := l.authorize(ctx); err != nil {
		l.logger.Error("error deleting garden", "garden_id", id, "error", err)
		l.setError(deleteUnexpectedMessage)
		return
	}

	if err := l.client.Delete(ctx, domain.GardensCollection, id); err != nil {
		l.logger.Error("error deleting garden", "garden_id", id, "error", err)
		l.setError(pocketbase.Message(err, deleteFailedMessage))
		return
	}

	l.mu.Lock()
	l.success = DeletedMessage
	l.mu.Unlock()
	l.logger.Info("garden deleted", "garden_id", id)

	// Always a fresh request: joining a load that started before the delete
	// could resurrect the deleted garden.
	l.load(ctx)
}

func (l *List) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := State{
		Loading:  l.loading,
		Deleting: l.deleting,
		Error:    l.errMsg,
		Success:  l.success,
		Gardens:  make([]domain.Garden, 0, len(l.entries)),
	}
	for _, e := range l.entries {
		g := e.garden
		g.Photos = append([]string(nil), e.garden.Photos...)
		s.Gardens = append(s.Gardens, g)
	}
	return s
}

func (l *List) authorize(ctx context.Context) error {
	token, err := l.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth token: %w", err)
	}
	l.client.AuthStore().Save(token, nil)
	return nil
}

func (l *List) setError(msg string) {
	l.mu.Lock()
	l.errMsg = msg
	l.mu.Unlock()
}

// Dedupe collapses records that share an ID. Each ID keeps the position of
// its first occurrence and the fields of its last.
func Dedupe(records []*pocketbase.Record) []*pocketbase.Record {
	index := make(map[string]int, len(records))
	out := make([]*pocketbase.Record, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if i, ok := index[rec.ID]; ok {
			out[i] = rec
			continue
		}
		index[rec.ID] = len(out)
		out = append(out, rec)
	}
	return out
}

func toEntries(records []*pocketbase.Record) ([]entry, error) {
	entries := make([]entry, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("garden record without id")
		}
		entries = append(entries, entry{
			garden: domain.Garden{
				ID:      rec.ID,
				Title:   rec.GetString("title"),
				Address: rec.GetString("address"),
				Photos:  rec.GetStringSlice("photos"),
			},
			record: rec,
		})
	}
	return entries, nil
}
