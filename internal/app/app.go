package app

import (
	"time"

	"go.uber.org/zap"

	"stock-watch/internal/refresh"
	"stock-watch/internal/watchlist"
)

const (
	DefaultEveryTicks = 60
	// listRowOffset is the terminal row of the first list entry.
	listRowOffset = 2
)

type State int

const (
	StateNormal State = iota
	StateAdding
)

func (s State) String() string {
	if s == StateAdding {
		return "adding"
	}
	return "normal"
}

// Refresher is the foreground side of the refresh worker.
type Refresher interface {
	RequestRefresh(codes []string) error
	Drain() []refresh.Result
}

type Storage interface {
	Load() ([]string, error)
	Save(codes []string) error
}

type Option func(*App)

func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.log = l
		}
	}
}

// WithEveryTicks sets how many ticks pass between periodic refreshes.
func WithEveryTicks(n int) Option {
	return func(a *App) {
		if n > 0 {
			a.everyTicks = n
		}
	}
}

// App is the foreground controller. It owns the watchlist; nothing else
// mutates it, so none of its methods may be called from another goroutine.
type App struct {
	list       *watchlist.List
	refresher  Refresher
	storage    Storage
	log        *zap.Logger
	everyTicks int

	state       State
	input       []rune
	selected    int
	errMsg      string
	lastRefresh time.Time
	ticks       uint64
	exit        bool
}

func New(refresher Refresher, storage Storage, opts ...Option) *App {
	a := &App{
		list:       watchlist.New(nil),
		refresher:  refresher,
		storage:    storage,
		log:        zap.NewNop(),
		everyTicks: DefaultEveryTicks,
		selected:   -1,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start loads the persisted list and requests the first refresh.
func (a *App) Start() {
	_ = a.Reload()
	a.Refresh()
}

// Reload replaces the list with the persisted one. On failure the current
// list is kept and the error is shown.
func (a *App) Reload() error {
	codes, err := a.storage.Load()
	if err != nil {
		a.log.Warn("load watchlist failed", zap.Error(err))
		a.errMsg = err.Error()
		return err
	}
	a.list.Replace(codes)
	if a.selected >= a.list.Len() {
		a.selected = -1
	}
	return nil
}

// Refresh asks the worker for the current code set. It is a no-op on an
// empty list.
func (a *App) Refresh() {
	if a.list.Len() == 0 {
		return
	}
	if err := a.refresher.RequestRefresh(a.list.Codes()); err != nil {
		a.errMsg = err.Error()
	}
}

// OnTick advances the tick counter, applies finished refreshes and issues
// the periodic refresh. The periodic refresh is skipped while adding.
func (a *App) OnTick() {
	a.ticks++
	a.DrainEvents()
	if a.ticks%uint64(a.everyTicks) == 0 && a.state == StateNormal {
		a.Refresh()
	}
}

// DrainEvents applies every result the worker has published so far.
func (a *App) DrainEvents() {
	for _, res := range a.refresher.Drain() {
		if !res.OK() {
			a.errMsg = res.Err.Error()
			continue
		}
		a.list.Merge(res.Quotes)
		a.lastRefresh = res.FetchedAt
		a.errMsg = ""
	}
}

func (a *App) Handle(ev Event) {
	switch e := ev.(type) {
	case KeyEvent:
		if a.state == StateAdding {
			a.handleAddingKey(e)
			return
		}
		a.handleNormalKey(e)
	case MouseEvent:
		if a.state == StateNormal {
			a.handleMouse(e)
		}
	}
}

func (a *App) handleNormalKey(e KeyEvent) {
	switch e.Key {
	case KeyUp:
		a.selectPrev()
		return
	case KeyDown:
		a.selectNext()
		return
	case KeyRune:
	default:
		return
	}

	switch e.Rune {
	case 'q':
		a.exit = true
	case 'r':
		a.Refresh()
	case 'n':
		a.state = StateAdding
		a.input = a.input[:0]
	case 'd':
		if a.list.Remove(a.selected) {
			a.save()
			a.selected = -1
		}
	case 'u':
		if a.list.MoveUp(a.selected) {
			a.selected--
			a.save()
		}
	case 'j':
		if a.list.MoveDown(a.selected) {
			a.selected++
			a.save()
		}
	}
}

func (a *App) handleAddingKey(e KeyEvent) {
	switch e.Key {
	case KeyEnter:
		a.state = StateNormal
		code := string(a.input)
		a.input = a.input[:0]
		if code == "" {
			return
		}
		if err := a.list.Add(code); err != nil {
			a.errMsg = err.Error()
			return
		}
		a.Refresh()
		a.save()
	case KeyEsc:
		a.state = StateNormal
		a.input = a.input[:0]
	case KeyBackspace:
		if n := len(a.input); n > 0 {
			a.input = a.input[:n-1]
		}
	case KeyRune:
		a.input = append(a.input, e.Rune)
	}
}

func (a *App) handleMouse(e MouseEvent) {
	switch e.Kind {
	case MouseRelease:
		if idx := e.Row - listRowOffset; idx >= 0 && idx < a.list.Len() {
			a.selected = idx
		}
	case MouseScrollUp:
		a.selectPrev()
	case MouseScrollDown:
		a.selectNext()
	}
}

func (a *App) selectPrev() {
	if a.list.Len() == 0 {
		return
	}
	if a.selected > 0 {
		a.selected--
		return
	}
	a.selected = 0
}

func (a *App) selectNext() {
	n := a.list.Len()
	if n == 0 {
		return
	}
	if a.selected < 0 {
		a.selected = 0
		return
	}
	if a.selected < n-1 {
		a.selected++
	}
}

func (a *App) save() {
	if err := a.storage.Save(a.list.Codes()); err != nil {
		a.log.Warn("save watchlist failed", zap.Error(err))
		a.errMsg = err.Error()
	}
}

func (a *App) ShouldExit() bool { return a.exit }

// View is a read-only copy of what the UI needs to draw one frame.
type View struct {
	State       State
	Input       string
	Entries     []watchlist.Entry
	Selected    int
	Error       string
	LastRefresh time.Time
}

func (a *App) View() View {
	entries := make([]watchlist.Entry, a.list.Len())
	copy(entries, a.list.Entries())
	return View{
		State:       a.state,
		Input:       string(a.input),
		Entries:     entries,
		Selected:    a.selected,
		Error:       a.errMsg,
		LastRefresh: a.lastRefresh,
	}
}
