package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/frontpage/internal/config"
	"github.com/pders01/frontpage/internal/content"
	"github.com/pders01/frontpage/internal/debuglog"
	"github.com/pders01/frontpage/internal/fetchstate"
	"github.com/pders01/frontpage/internal/media"
	"github.com/pders01/frontpage/internal/render"
	"github.com/pders01/frontpage/internal/search"
	"github.com/pders01/frontpage/internal/storage"
	"github.com/pders01/frontpage/internal/topstories"
)

const searchLimit = 20

var (
	statusTimeout  = 4 * time.Second
	searchDebounce = 200 * time.Millisecond
)

type App struct {
	config     *config.Config
	store      *storage.Store
	tracker    *fetchstate.Tracker
	searcher   search.Searcher
	launcher   *media.Launcher
	registry   *content.Registry
	renderer   *render.Renderer
	keyHandler *KeyHandler

	storyList   list.Model
	sectionList list.Model
	searchList  list.Model
	mediaList   list.Model
	searchInput textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model

	view           View
	previousView   View
	cameFromSearch bool

	initialSection string
	state          fetchstate.State
	stories        []topstories.Story
	sortMode       topstories.SortMode
	read           map[string]bool

	currentStory   *topstories.Story
	currentBody    *content.Content
	contentSeq     uint64
	contentCancel  context.CancelFunc
	loadingArticle bool

	searchSeq          int
	pendingSearchQuery string
	searchResults      []searchResultItem

	status       string
	statusKind   StatusKind
	statusSeq    int
	spinning     bool
	spinnerLabel string

	width  int
	height int
	err    error
	now    func() time.Time
}

func NewApp(store *storage.Store, source topstories.Source, cfg *config.Config) *App {
	storyList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	storyList.Title = "› top stories"
	storyList.SetShowStatusBar(false)
	storyList.Styles.Title = TitleStyle
	storyList.SetFilteringEnabled(true)
	storyList.SetShowHelp(true)

	sectionList := list.New(sectionItems(""), list.NewDefaultDelegate(), 0, 0)
	sectionList.Title = "› sections"
	sectionList.SetShowStatusBar(false)
	sectionList.Styles.Title = TitleStyle
	sectionList.SetFilteringEnabled(true)
	sectionList.SetShowHelp(true)

	searchList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	searchList.Title = "› search results"
	searchList.SetShowStatusBar(false)
	searchList.Styles.Title = TitleStyle
	searchList.SetShowHelp(false)
	searchList.SetFilteringEnabled(false)

	mediaList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	mediaList.Title = "› media"
	mediaList.SetShowStatusBar(false)
	mediaList.Styles.Title = TitleStyle
	mediaList.SetFilteringEnabled(false)

	si := textinput.New()
	si.Placeholder = "Search stories..."
	si.CharLimit = maxQueryLength

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(SecondaryColor)),
	)

	searcher, err := search.New(cfg.UI.FilterEngine)
	if err != nil {
		debuglog.Warnf("search engine %q unavailable, using simple: %v", cfg.UI.FilterEngine, err)
		searcher = search.NewEngine()
	}

	app := &App{
		config:         cfg,
		store:          store,
		tracker:        fetchstate.NewTracker(source),
		searcher:       searcher,
		launcher:       media.NewLauncher(cfg),
		registry:       content.NewDefaultRegistry(cfg),
		renderer:       render.NewRenderer(cfg.UI.Article),
		storyList:      storyList,
		sectionList:    sectionList,
		searchList:     searchList,
		mediaList:      mediaList,
		searchInput:    si,
		viewport:       viewport.New(0, 0),
		spinner:        sp,
		view:           ViewStories,
		previousView:   ViewStories,
		initialSection: topstories.NormalizeSection(cfg.API.DefaultSection),
		sortMode:       topstories.SortDefault,
		read:           make(map[string]bool),
		now:            time.Now,
	}
	app.state = app.tracker.State()

	if mode, err := topstories.ParseSortMode(cfg.UI.DefaultSort); err == nil {
		app.sortMode = mode
	}
	app.restorePreferences()

	app.keyHandler = NewKeyHandler(app, cfg)

	return app
}

// restorePreferences applies the section and sort mode saved by the last
// session. Unknown or unreadable values are ignored.
func (a *App) restorePreferences() {
	if a.store == nil {
		return
	}
	if v, err := a.store.Preference(storage.PrefLastSection); err == nil {
		if s, ok := topstories.LookupSection(v); ok {
			a.initialSection = s.Name
		}
	}
	if v, err := a.store.Preference(storage.PrefSortMode); err == nil {
		if mode, err := topstories.ParseSortMode(v); err == nil {
			a.sortMode = mode
		}
	}
}

// Close cancels any request still in flight.
func (a *App) Close() {
	a.tracker.Close()
	if a.contentCancel != nil {
		a.contentCancel()
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.loadSection(a.initialSection),
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		if a.view == ViewReader && a.currentStory != nil {
			cmds = append(cmds, a.renderStory(a.contentSeq, false))
		}

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case spinner.TickMsg:
		if !a.spinning {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case storiesFetchedMsg:
		state, applied := a.tracker.Resolve(msg.outcome)
		if !applied {
			debuglog.Debugf("dropping outcome of superseded request %d", msg.outcome.Request.Seq)
			return a, nil
		}
		return a, a.applyState(state)

	case readMarksMsg:
		for k, v := range msg.marks {
			a.read[k] = v
		}
		a.refreshStoryItems()
		return a, nil

	case openStoryMsg:
		return a, a.openStory(msg.story, msg.fromSearch)

	case contentLoadedMsg:
		if msg.seq != a.contentSeq || a.currentStory == nil {
			return a, nil
		}
		a.stopSpinner()
		if msg.err != nil {
			a.currentBody = content.Unavailable(a.currentStory.URL, msg.err)
		} else {
			a.currentBody = msg.content
		}
		return a, a.renderStory(msg.seq, false)

	case articleRenderedMsg:
		// a render without the body must not replace one that has it
		if msg.seq != a.contentSeq || (msg.partial && a.currentBody != nil) {
			return a, nil
		}
		a.viewport.SetContent(msg.content)
		if msg.reset {
			a.viewport.GotoTop()
		}
		a.loadingArticle = false
		return a, nil

	case searchDebounceFireMsg:
		if msg.seq != a.searchSeq || a.view != ViewSearch {
			return a, nil
		}
		return a, a.performSearch(msg.seq, a.pendingSearchQuery)

	case searchResultsMsg:
		if a.view == ViewSearch && msg.seq == a.searchSeq {
			a.searchResults = msg.results
			items := make([]list.Item, len(msg.results))
			for i, result := range msg.results {
				items[i] = result
			}
			a.searchList.SetItems(items)
		}
		return a, nil

	case statusMsg:
		return a, a.setStatus(msg.text, msg.kind)

	case clearStatusMsg:
		if msg.seq == a.statusSeq {
			a.status = ""
		}
		return a, nil

	case errorMsg:
		a.err = msg.err
		return a, nil
	}

	switch a.view {
	case ViewStories:
		newListModel, cmd := a.storyList.Update(msg)
		a.storyList = newListModel
		cmds = append(cmds, cmd)
	case ViewSections:
		newListModel, cmd := a.sectionList.Update(msg)
		a.sectionList = newListModel
		cmds = append(cmds, cmd)
	case ViewReader:
		if _, ok := msg.(tea.MouseMsg); ok {
			newViewport, cmd := a.viewport.Update(msg)
			a.viewport = newViewport
			cmds = append(cmds, cmd)
		}
	case ViewMedia:
		newListModel, cmd := a.mediaList.Update(msg)
		a.mediaList = newListModel
		cmds = append(cmds, cmd)
	case ViewSearch:
		newSearchInput, cmd := a.searchInput.Update(msg)
		a.searchInput = newSearchInput
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	// header (2) + separator + status bar
	a.storyList.SetSize(width, max(height-5, 3))
	a.sectionList.SetSize(width, max(height-3, 3))
	a.mediaList.SetSize(width, max(height-3, 3))
	// Search view layout requires 10 lines for UI chrome
	a.searchList.SetSize(width, max(height-10, 5))
	a.viewport.Width = width
	a.viewport.Height = max(height-3, 1)

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width - 4
	}
	a.searchInput.Width = inputWidth
}

// loadSection starts a new fetch cycle. Any request still in flight is
// superseded and its outcome will be dropped.
func (a *App) loadSection(section string) tea.Cmd {
	return a.beginFetch(a.tracker.Begin(section))
}

func (a *App) retry() tea.Cmd {
	return a.beginFetch(a.tracker.Retry())
}

func (a *App) beginFetch(req fetchstate.Request) tea.Cmd {
	a.state = a.tracker.State()
	a.err = nil
	a.stories = nil
	a.storyList.ResetFilter()
	a.storyList.SetItems(nil)
	a.storyList.Title = "› " + topstories.SectionLabel(req.Section)
	a.sectionList.SetItems(sectionItems(req.Section))
	return tea.Batch(a.startSpinner(MsgLoadingStories), a.fetchStories(req))
}

func (a *App) applyState(state fetchstate.State) tea.Cmd {
	a.state = state
	a.stopSpinner()

	if state.Status != fetchstate.Ready {
		a.stories = nil
		a.storyList.SetItems(nil)
		return a.setStatus(state.Message(), StatusError)
	}

	a.resortStories()
	stories := state.Stories()
	keys := make([]string, 0, len(stories))
	for i := range stories {
		keys = append(keys, stories[i].Key())
	}

	return tea.Batch(
		a.indexStories(stories),
		a.loadReadMarks(keys),
		a.savePreference(storage.PrefLastSection, state.Section),
		a.setStatus(MsgStoriesLoaded(state.Section, len(stories)), StatusSuccess),
	)
}

// resortStories rebuilds the list from the ready state in the current sort
// mode, keeping the selected story selected.
func (a *App) resortStories() {
	selected := ""
	if i, ok := a.storyList.SelectedItem().(storyItem); ok {
		selected = i.story.Key()
	}

	a.stories = topstories.Sort(a.state.Stories(), a.sortMode)
	a.refreshStoryItems()

	for i := range a.stories {
		if selected != "" && a.stories[i].Key() == selected {
			a.storyList.Select(i)
			return
		}
	}
	a.storyList.Select(0)
}

func (a *App) refreshStoryItems() {
	idx := a.storyList.Index()
	now := a.now()
	items := make([]list.Item, len(a.stories))
	for i := range a.stories {
		items[i] = storyItem{
			story:  a.stories[i],
			read:   a.read[a.stories[i].Key()],
			now:    now,
			maxLen: a.config.UI.Article.MaxAbstractLength,
		}
	}
	a.storyList.SetItems(items)
	if idx < len(items) {
		a.storyList.Select(idx)
	}
}

func (a *App) cycleSort() tea.Cmd {
	a.sortMode = a.sortMode.Next()
	if a.state.Status == fetchstate.Ready {
		a.resortStories()
	}
	return tea.Batch(
		a.savePreference(storage.PrefSortMode, string(a.sortMode)),
		a.setStatus(MsgSortChanged(a.sortMode), StatusInfo),
	)
}

// openStory shows story in the reader. The story arrives by value, so the
// reader never depends on the list it came from.
func (a *App) openStory(story topstories.Story, fromSearch bool) tea.Cmd {
	a.currentStory = &story
	a.currentBody = nil
	a.cameFromSearch = fromSearch
	a.loadingArticle = true
	a.view = ViewReader
	a.viewport.SetContent("")
	a.viewport.GotoTop()

	a.contentSeq++
	if a.contentCancel != nil {
		a.contentCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.contentCancel = cancel

	a.read[story.Key()] = true
	a.refreshStoryItems()

	return tea.Batch(
		a.startSpinner(MsgLoadingArticle),
		a.renderStory(a.contentSeq, true),
		a.loadContent(ctx, a.contentSeq, story.URL),
		a.markRead(story),
	)
}

// setStatus shows text in the status bar. Errors stay until replaced; other
// kinds clear themselves.
func (a *App) setStatus(text string, kind StatusKind) tea.Cmd {
	a.statusSeq++
	a.status = text
	a.statusKind = kind
	if kind == StatusError || text == "" {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (a *App) startSpinner(label string) tea.Cmd {
	a.spinnerLabel = label
	if a.spinning {
		return nil
	}
	a.spinning = true
	return a.spinner.Tick
}

func (a *App) stopSpinner() {
	a.spinning = false
	a.spinnerLabel = ""
}

func (a *App) View() string {
	contentHeight := max(a.height-2, 1)
	var content string

	switch a.view {
	case ViewStories:
		content = a.storiesView(contentHeight)
	case ViewSections:
		content = a.sectionList.View()
	case ViewReader:
		if a.loadingArticle {
			content = renderCentered(a.width, contentHeight,
				a.spinner.View()+" "+renderMuted(MsgLoadingArticle))
		} else {
			content = a.viewport.View()
		}
	case ViewSearch:
		content = a.searchView(contentHeight)
	case ViewMedia:
		content = a.mediaList.View()
	}

	customStatus := a.getCustomStatusBar()
	if customStatus != "" {
		return lipgloss.JoinVertical(lipgloss.Top, content, renderSeparator(a.width-1), customStatus)
	}

	return content
}

func (a *App) storiesView(height int) string {
	switch a.state.Status {
	case fetchstate.Loading:
		return renderCentered(a.width, height,
			a.spinner.View()+" "+renderMuted(MsgLoadingStories))
	case fetchstate.Error:
		hints := []string{
			a.keyHandler.modifierKey + "r: " + MsgRetryHint,
			a.keyHandler.modifierKey + "l: sections",
			"q: quit",
		}
		return renderCentered(a.width, height,
			renderErrorPanel("Error Loading Stories", a.state.Message(), hints, a.width))
	}

	if len(a.stories) == 0 {
		return renderCentered(a.width, height, GetWelcomeMessage())
	}

	header := renderHeader("› Top Stories · "+topstories.SectionLabel(a.state.Section), a.storiesSubtitle(), a.width)
	return lipgloss.JoinVertical(lipgloss.Top, header, a.storyList.View())
}

func (a *App) storiesSubtitle() string {
	var parts []string
	if r := a.state.Result; r != nil && !r.LastUpdated.IsZero() {
		parts = append(parts, "Last updated: "+r.LastUpdated.Time.Local().Format("Jan 2, 2006 15:04"))
	}
	parts = append(parts, "sort: "+a.sortMode.Label())
	parts = append(parts, fmt.Sprintf("%d stories", len(a.stories)))
	return strings.Join(parts, " • ")
}

func (a *App) searchView(height int) string {
	searchHeader := "› search " + topstories.SectionLabel(a.state.Section)

	helpText := ""
	switch {
	case a.searchInput.Focused():
		helpText = "Type to search • Tab/↓: results • Esc: back"
	case len(a.searchList.Items()) > 0:
		helpText = "↑↓: navigate • Enter: read • Tab/↑: search box • Esc: back"
	default:
		helpText = MsgNoResults + " • Tab/↑: search box • Esc: back"
	}

	resultCount := ""
	if a.pendingSearchQuery != "" {
		resultCount = MsgResultsCount(len(a.searchResults))
	}

	searchContent := lipgloss.JoinVertical(
		lipgloss.Top,
		renderHeader(searchHeader, resultCount, a.width),
		"",
		renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
		renderMuted(helpText),
		"",
		a.searchList.View(),
	)

	return ContentWrapper(a.width, height).Render(searchContent)
}

func (a *App) getCustomStatusBar() string {
	barStyle := lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Foreground(MutedColor)

	if a.err != nil {
		return barStyle.Render(ErrorMessageStyle.Render(fmt.Sprintf("✗ %s", errorText(a.err))))
	}

	var parts []string
	switch {
	case a.spinning:
		parts = append(parts, a.spinner.View()+" "+a.spinnerLabel)
	case a.status != "":
		parts = append(parts, a.statusKind.style().Render(a.status))
	}

	if commands := a.keyHandler.GetHelpForCurrentView(); len(commands) > 0 {
		parts = append(parts, strings.Join(commands, " • "))
	}

	if len(parts) == 0 {
		return ""
	}
	return barStyle.Render(strings.Join(parts, "  │  "))
}

type storiesFetchedMsg struct {
	outcome fetchstate.Outcome
}

type readMarksMsg struct {
	marks map[string]bool
}

// openStoryMsg hands a story to the reader view.
type openStoryMsg struct {
	story      topstories.Story
	fromSearch bool
}

type contentLoadedMsg struct {
	seq     uint64
	content *content.Content
	err     error
}

type articleRenderedMsg struct {
	seq     uint64
	content string
	reset   bool
	partial bool
}

type searchDebounceFireMsg struct {
	seq int
}

type searchResultsMsg struct {
	seq     int
	results []searchResultItem
}

type statusMsg struct {
	text string
	kind StatusKind
}

type clearStatusMsg struct {
	seq int
}

type errorMsg struct {
	err error
}
