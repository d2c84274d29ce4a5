package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/frontpage/internal/config"
	"github.com/pders01/frontpage/internal/fetchstate"
	"github.com/pders01/frontpage/internal/topstories"
)

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	kh.app.err = nil

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	switch kh.app.view {
	case ViewSearch:
		return kh.app.searchInput.Focused()
	case ViewStories:
		return kh.app.storyList.FilterState() == list.Filtering
	case ViewSections:
		return kh.app.sectionList.FilterState() == list.Filtering
	default:
		return false
	}
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return kh.app, tea.Quit
	}
	if kh.app.view != ViewSearch {
		// list filter prompt: the list handles esc and enter itself
		return kh.delegateToCharm(msg)
	}

	switch key {
	case "esc":
		return kh.navigateBack()
	case "enter":
		if items := kh.app.searchList.Items(); len(items) > 0 {
			if i, ok := items[0].(searchResultItem); ok {
				return kh.app, sendStory(i.story, true)
			}
		}
		return kh.app, nil
	case "tab", "down":
		if len(kh.app.searchList.Items()) > 0 {
			kh.app.searchInput.Blur()
			kh.app.searchList.Select(0)
		}
		return kh.app, nil
	default:
		return kh.delegateToTextInput(msg)
	}
}

// delegateToTextInput passes the key to the search input and schedules a
// debounced search when the query changed.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	prev := a.pendingSearchQuery

	newSearchInput, cmd := a.searchInput.Update(msg)
	a.searchInput = newSearchInput

	query := sanitizeQuery(a.searchInput.Value())
	if query == prev {
		return a, cmd
	}

	a.pendingSearchQuery = query
	a.searchSeq++
	seq := a.searchSeq
	return a, tea.Batch(cmd, tea.Tick(searchDebounce, func(time.Time) tea.Msg { return searchDebounceFireMsg{seq: seq} }))
}

// handleCustomKeys handles only our custom action keys
func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch key {
	case "ctrl+c", "q":
		return a, tea.Quit, true
	case "esc":
		if a.view == ViewStories && a.storyList.FilterState() == list.FilterApplied {
			a.storyList.ResetFilter()
			return a, nil, true
		}
		model, cmd := kh.navigateBack()
		return model, cmd, true
	case kh.modifierKey + "s":
		model, cmd := kh.enterSearchMode()
		return model, cmd, true
	case kh.modifierKey + "l":
		model, cmd := kh.enterSections()
		return model, cmd, true
	}

	switch a.view {
	case ViewStories:
		return kh.handleStoriesCustomKeys(key)
	case ViewSections:
		return kh.handleSectionsCustomKeys(key)
	case ViewReader:
		return kh.handleReaderCustomKeys(key)
	case ViewSearch:
		return kh.handleSearchCustomKeys(key)
	case ViewMedia:
		return kh.handleMediaCustomKeys(key)
	default:
		return a, nil, false
	}
}

func (kh *KeyHandler) handleStoriesCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch key {
	case kh.modifierKey + "r":
		return a, a.retry(), true
	case kh.modifierKey + "t":
		return a, a.cycleSort(), true
	}

	if a.state.Status != fetchstate.Ready {
		return a, nil, false
	}
	i, ok := a.storyList.SelectedItem().(storyItem)
	if !ok {
		return a, nil, false
	}

	switch key {
	case "enter":
		return a, sendStory(i.story, false), true
	case kh.modifierKey + "o":
		return a, a.openArticle(i.story.URL), true
	case kh.modifierKey + "g":
		return a, a.showMedia(&i.story), true
	case kh.modifierKey + "u":
		return a, a.toggleRead(i.story), true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleSectionsCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	if key != "enter" {
		return a, nil, false
	}
	i, ok := a.sectionList.SelectedItem().(sectionItem)
	if !ok {
		return a, nil, true
	}
	a.sectionList.ResetFilter()
	a.view = ViewStories
	return a, a.loadSection(i.section.Name), true
}

func (kh *KeyHandler) handleReaderCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	if a.currentStory == nil {
		return a, nil, false
	}

	switch key {
	case kh.modifierKey + "o":
		return a, a.openArticle(a.currentStory.URL), true
	case kh.modifierKey + "g":
		return a, a.showMedia(a.currentStory), true
	case kh.modifierKey + "r":
		return a, a.openStory(*a.currentStory, a.cameFromSearch), true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleSearchCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch key {
	case "tab", "shift+tab", "/", "i":
		a.searchInput.Focus()
		return a, nil, true
	case "up":
		if a.searchList.Index() == 0 {
			a.searchInput.Focus()
			return a, nil, true
		}
	case "enter":
		if i, ok := a.searchList.SelectedItem().(searchResultItem); ok {
			return a, sendStory(i.story, true), true
		}
		return a, nil, true
	case kh.modifierKey + "o":
		if i, ok := a.searchList.SelectedItem().(searchResultItem); ok {
			return a, a.openArticle(i.story.URL), true
		}
		return a, nil, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleMediaCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch key {
	case "enter", kh.modifierKey + "o":
		if item, ok := a.mediaList.SelectedItem().(mediaItem); ok {
			return a, a.openMedia(item.media), true
		}
		return a, nil, true
	}
	return a, nil, false
}

// delegateToCharm lets Charm handle all keys we don't intercept
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd

	switch a.view {
	case ViewStories:
		a.storyList, cmd = a.storyList.Update(msg)
	case ViewSections:
		a.sectionList, cmd = a.sectionList.Update(msg)
	case ViewSearch:
		a.searchList, cmd = a.searchList.Update(msg)
	case ViewReader:
		a.viewport, cmd = a.viewport.Update(msg)
	case ViewMedia:
		a.mediaList, cmd = a.mediaList.Update(msg)
	}
	return a, cmd
}

// navigateBack implements smart back navigation
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	a := kh.app

	switch a.view {
	case ViewSections:
		a.view = ViewStories
		return a, nil

	case ViewSearch:
		a.view = a.previousView
		a.searchInput.Reset()
		a.pendingSearchQuery = ""
		a.searchSeq++
		a.searchResults = nil
		a.searchList.SetItems([]list.Item{})
		return a, nil

	case ViewMedia:
		a.view = a.previousView
		a.mediaList.SetItems([]list.Item{})
		return a, nil

	case ViewReader:
		if a.contentCancel != nil {
			a.contentCancel()
		}
		a.contentSeq++
		a.loadingArticle = false
		if a.state.Status != fetchstate.Loading {
			a.stopSpinner()
		}
		if a.cameFromSearch {
			a.view = ViewSearch
			a.cameFromSearch = false
			a.searchInput.Blur()
			return a, nil
		}
		a.view = ViewStories
		return a, nil

	default:
		return a, tea.Quit
	}
}

func (kh *KeyHandler) enterSearchMode() (tea.Model, tea.Cmd) {
	a := kh.app
	if a.view == ViewSearch {
		a.searchInput.Focus()
		return a, nil
	}
	a.previousView = a.view
	if a.previousView == ViewMedia {
		a.previousView = ViewStories
	}
	a.view = ViewSearch
	a.searchInput.Reset()
	a.searchInput.Focus()
	a.pendingSearchQuery = ""
	a.searchResults = nil
	a.searchList.SetItems([]list.Item{})
	return a, a.searchStatus()
}

func (kh *KeyHandler) enterSections() (tea.Model, tea.Cmd) {
	a := kh.app
	a.view = ViewSections
	a.sectionList.ResetFilter()
	a.sectionList.Select(sectionIndex(a.state.Section))
	return a, nil
}

// GetHelpForCurrentView returns only our custom help text (Charm handles the rest)
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	m := kh.modifierKey
	a := kh.app

	switch a.view {
	case ViewStories:
		switch a.state.Status {
		case fetchstate.Loading:
			return []string{m + "l: sections", m + "t: sort"}
		case fetchstate.Error:
			return []string{m + "r: " + MsgRetryHint, m + "l: sections"}
		}
		return []string{
			"enter: read", m + "o: open", m + "t: " + a.sortMode.Label(),
			m + "l: sections", m + "s: search", m + "g: media", m + "r: reload",
		}

	case ViewSections:
		return []string{"enter: select", "esc: back"}

	case ViewReader:
		help := []string{m + "o: open original"}
		if mediaCount(a.currentStory) > 0 {
			help = append(help, m+"g: media")
		}
		return append(help, m+"s: search", "esc: back")

	case ViewSearch:
		return []string{"enter: read", m + "o: open", "esc: back"}

	case ViewMedia:
		return []string{"enter: open", m + "o: open", "esc: back"}

	default:
		return []string{}
	}
}

// sendStory hands story to the reader by message.
func sendStory(story topstories.Story, fromSearch bool) tea.Cmd {
	return func() tea.Msg {
		return openStoryMsg{story: story, fromSearch: fromSearch}
	}
}
