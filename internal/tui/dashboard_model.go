package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/ghgledger/internal/emissions"
	"github.com/rshade/ghgledger/internal/engine"
	"github.com/rshade/ghgledger/internal/logging"
	"github.com/rshade/ghgledger/internal/rollup"
	"github.com/rshade/ghgledger/internal/timeseries"
)

// Projector produces the trend and stats projections the dashboard shows.
// *engine.Engine satisfies it.
type Projector interface {
	Trend(ctx context.Context, computed []emissions.ComputedEmission, w timeseries.Window, now time.Time) engine.TrendView
	Stats(ctx context.Context, c rollup.Categorised, now time.Time, previous *rollup.PeriodTotals) rollup.Stats
}

// LoadFunc fetches and computes the emissions to display.
type LoadFunc func(ctx context.Context) ([]emissions.ComputedEmission, error)

// DashboardLoadedMsg carries the result of a LoadFunc.
type DashboardLoadedMsg struct {
	Computed []emissions.ComputedEmission
	Err      error
}

// DashboardModel is the Bubble Tea model for the interactive trend dashboard.
// The list view shows the bucketed trend; the detail view shows the summary
// cards.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type DashboardModel struct {
	state ViewState
	ctx   context.Context
	now   func() time.Time

	load      LoadFunc
	projector Projector

	computed []emissions.ComputedEmission
	window   timeseries.Window
	trend    engine.TrendView
	stats    rollup.Stats
	byScope  bool

	table        table.Model
	width        int
	height       int
	loadingState *LoadingState

	err error
}

// DashboardOption configures a DashboardModel.
type DashboardOption func(*DashboardModel)

// WithClock overrides the dashboard's clock.
func WithClock(now func() time.Time) DashboardOption {
	return func(m *DashboardModel) { m.now = now }
}

// WithWindow sets the initial window; the default is the last 12 months.
func WithWindow(w timeseries.Window) DashboardOption {
	return func(m *DashboardModel) { m.window = w }
}

// NewDashboardModel creates a dashboard that fetches its data with load.
func NewDashboardModel(
	ctx context.Context,
	load LoadFunc,
	projector Projector,
	opts ...DashboardOption,
) (DashboardModel, tea.Cmd) {
	m := DashboardModel{
		state:     ViewStateLoading,
		ctx:       ctx,
		now:       time.Now,
		load:      load,
		projector: projector,
		window:    timeseries.DefaultWindow(timeseries.Month),
		width:     defaultWidth,
		height:    defaultHeight,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.table = m.buildTrendTable()
	m.loadingState = NewLoadingState()
	return m, m.Init()
}

// Init starts the spinner and the first load (Bubble Tea interface).
func (m DashboardModel) Init() tea.Cmd {
	loading := m.loadingState
	if loading == nil {
		loading = NewLoadingState()
	}
	return tea.Batch(loading.Init(), m.loadCmd())
}

func (m DashboardModel) loadCmd() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		if load == nil {
			return DashboardLoadedMsg{Computed: []emissions.ComputedEmission{}}
		}
		computed, err := load(ctx)
		return DashboardLoadedMsg{Computed: computed, Err: err}
	}
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.buildTrendTable()
		return m, nil
	case DashboardLoadedMsg:
		return m.handleLoaded(msg)
	case tea.KeyMsg:
		if s := msg.String(); s == keyCtrlC || s == keyQuit {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
	}

	switch m.state {
	case ViewStateLoading:
		if m.loadingState != nil {
			return m, m.loadingState.Update(msg)
		}
		return m, nil
	case ViewStateList:
		return m.handleListUpdate(msg)
	case ViewStateDetail:
		return m.handleDetailUpdate(msg)
	case ViewStateQuitting, ViewStateError:
		return m, nil
	default:
		return m, nil
	}
}

func (m DashboardModel) handleLoaded(msg DashboardLoadedMsg) (tea.Model, tea.Cmd) {
	log := logging.FromContext(m.ctx)
	if msg.Err != nil {
		log.Error().Err(msg.Err).Str("component", "tui").Msg("dashboard load failed")
		m.state = ViewStateError
		m.err = msg.Err
		return m, nil
	}
	m.computed = msg.Computed
	m.state = ViewStateList
	m.refresh()
	log.Debug().
		Str("component", "tui").
		Int("emissions", len(m.computed)).
		Stringer("window", m.window).
		Msg("dashboard loaded")
	return m, nil
}

func (m DashboardModel) handleListUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case keyDay:
		m.setGranularity(timeseries.Day)
	case keyWeek:
		m.setGranularity(timeseries.Week)
	case keyMonth:
		m.setGranularity(timeseries.Month)
	case keyYear:
		m.setGranularity(timeseries.Year)
	case keyScope:
		m.byScope = !m.byScope
		m.table = m.buildTrendTable()
	case keyEnter:
		m.state = ViewStateDetail
	case keyLoad:
		m.state = ViewStateLoading
		return m, tea.Batch(m.loadingState.Init(), m.loadCmd())
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		return m, cmd
	}
	return m, nil
}

func (m DashboardModel) handleDetailUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEsc, keyEnter:
			m.state = ViewStateList
			m.table.Focus()
		}
	}
	return m, nil
}

// setGranularity switches to the default relative window for g.
func (m *DashboardModel) setGranularity(g timeseries.Granularity) {
	if !m.window.Custom && m.window.Granularity == g {
		return
	}
	m.window = timeseries.DefaultWindow(g)
	m.refresh()
}

// refresh recomputes the projections for the current window.
func (m *DashboardModel) refresh() {
	now := m.now()
	m.trend = m.projector.Trend(m.ctx, m.computed, m.window, now)
	c := rollup.Categorised{}
	c.Add(m.computed...)
	m.stats = m.projector.Stats(m.ctx, c, now, nil)
	m.table = m.buildTrendTable()
}

// buildTrendTable builds the bucket table, most recent period last.
func (m DashboardModel) buildTrendTable() table.Model {
	columns := []table.Column{
		{Title: "Period", Width: 14}, //nolint:mnd // Column width.
		{Title: "tCO2e", Width: 12},  //nolint:mnd // Column width.
		{Title: "Records", Width: 8}, //nolint:mnd // Column width.
	}
	if m.byScope {
		columns = append(columns,
			table.Column{Title: "Scope 1", Width: 12}, //nolint:mnd // Column width.
			table.Column{Title: "Scope 2", Width: 12}, //nolint:mnd // Column width.
			table.Column{Title: "Scope 3", Width: 12}, //nolint:mnd // Column width.
		)
	}

	rows := make([]table.Row, len(m.trend.Buckets))
	for i, b := range m.trend.Buckets {
		rows[i] = bucketRow(b, m.byScope)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-chromeHeight, minTableRows)),
	)
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	if len(rows) > 0 {
		t.SetCursor(len(rows) - 1)
	}
	return t
}

// State returns the current view state.
func (m DashboardModel) State() ViewState { return m.state }

// Window returns the window being displayed.
func (m DashboardModel) Window() timeseries.Window { return m.window }

// Buckets returns the current trend buckets.
func (m DashboardModel) Buckets() []timeseries.Bucket { return m.trend.Buckets }

// Stats returns the current summary stats.
func (m DashboardModel) Stats() rollup.Stats { return m.stats }

// Err returns the load error, if any.
func (m DashboardModel) Err() error { return m.err }
