package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/frontpage/internal/debuglog"
	"github.com/pders01/frontpage/internal/fetchstate"
	"github.com/pders01/frontpage/internal/render"
	"github.com/pders01/frontpage/internal/search"
	"github.com/pders01/frontpage/internal/storage"
	"github.com/pders01/frontpage/internal/topstories"
)

func (a *App) fetchStories(req fetchstate.Request) tea.Cmd {
	tracker := a.tracker
	return func() tea.Msg {
		return storiesFetchedMsg{outcome: tracker.Run(req)}
	}
}

func (a *App) indexStories(stories []topstories.Story) tea.Cmd {
	searcher := a.searcher
	return func() tea.Msg {
		if err := searcher.Index(stories); err != nil {
			return errorMsg{err: wrapErr("indexing stories", err)}
		}
		return nil
	}
}

func (a *App) loadReadMarks(keys []string) tea.Cmd {
	if a.store == nil || len(keys) == 0 {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		marks, err := store.ReadKeys(keys)
		if err != nil {
			return errorMsg{err: wrapErr("loading read marks", err)}
		}
		return readMarksMsg{marks: marks}
	}
}

func (a *App) markRead(story topstories.Story) tea.Cmd {
	if a.store == nil || story.Key() == "" {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		err := store.MarkRead(&storage.ReadMark{
			Key:     story.Key(),
			Section: story.Section,
			Title:   story.Title,
			URL:     story.URL,
		})
		if err != nil {
			return errorMsg{err: wrapErr("marking read", err)}
		}
		return nil
	}
}

func (a *App) toggleRead(story topstories.Story) tea.Cmd {
	key := story.Key()
	if key == "" {
		return nil
	}
	wasRead := a.read[key]
	a.read[key] = !wasRead
	a.refreshStoryItems()

	if a.store == nil {
		return nil
	}
	if !wasRead {
		return a.markRead(story)
	}
	store := a.store
	return func() tea.Msg {
		if err := store.MarkUnread(key); err != nil {
			return errorMsg{err: wrapErr("marking unread", err)}
		}
		return nil
	}
}

func (a *App) savePreference(name, value string) tea.Cmd {
	if a.store == nil {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		if err := store.SetPreference(name, value); err != nil {
			debuglog.Warnf("saving preference %s: %v", name, err)
		}
		return nil
	}
}

func (a *App) loadContent(ctx context.Context, seq uint64, url string) tea.Cmd {
	registry := a.registry
	return func() tea.Msg {
		c, err := registry.Extract(ctx, url)
		return contentLoadedMsg{seq: seq, content: c, err: err}
	}
}

// renderStory renders the current story and body at the current width.
// reset scrolls the reader back to the top.
func (a *App) renderStory(seq uint64, reset bool) tea.Cmd {
	if a.currentStory == nil {
		return nil
	}
	story := *a.currentStory
	body := a.currentBody
	width := a.width
	renderer := a.renderer

	return func() tea.Msg {
		rendered, err := renderer.Render(render.StoryMarkdown(&story, body), width)
		if err != nil {
			rendered = fmt.Sprintf("Failed to render article: %s\n\nPress Esc to go back.", err)
		}
		return articleRenderedMsg{seq: seq, content: rendered, reset: reset, partial: body == nil}
	}
}

func (a *App) performSearch(seq int, query string) tea.Cmd {
	searcher := a.searcher
	read := make(map[string]bool, len(a.read))
	for k, v := range a.read {
		read[k] = v
	}

	return func() tea.Msg {
		if len([]rune(query)) < 2 {
			return searchResultsMsg{seq: seq}
		}

		found, err := searcher.Search(query, searchLimit)
		if err != nil {
			return errorMsg{err: wrapErr("search", err)}
		}

		results := make([]searchResultItem, 0, len(found))
		for _, r := range found {
			if r.Story == nil {
				continue
			}
			results = append(results, newSearchResultItem(r, read[r.Story.Key()]))
		}
		return searchResultsMsg{seq: seq, results: results}
	}
}

func (a *App) openArticle(url string) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.OpenArticle(url); err != nil {
			return errorMsg{err: err}
		}
		return statusMsg{text: MsgOpened, kind: StatusSuccess}
	}
}

func (a *App) openMedia(m topstories.Media) tea.Cmd {
	launcher := a.launcher
	return func() tea.Msg {
		if err := launcher.OpenMedia(m); err != nil {
			return errorMsg{err: err}
		}
		return statusMsg{text: "Opened " + launcher.Detect(m).String(), kind: StatusSuccess}
	}
}

// showMedia lists the multimedia of story in the media view.
func (a *App) showMedia(story *topstories.Story) tea.Cmd {
	if story == nil {
		return nil
	}

	var items []list.Item
	for _, m := range story.Multimedia {
		if m.URL == "" {
			continue
		}
		items = append(items, mediaItem{media: m, mediaType: a.launcher.Detect(m)})
	}
	if len(items) == 0 {
		return a.setStatus(MsgNoMedia, StatusWarn)
	}
	for i := range items {
		it := items[i].(mediaItem)
		it.index, it.total = i, len(items)
		items[i] = it
	}

	if a.view != ViewReader {
		s := *story
		a.currentStory = &s
		a.currentBody = nil
		a.contentSeq++
	}
	a.mediaList.SetItems(items)
	a.mediaList.Select(0)
	a.mediaList.Title = "› media from: " + truncateEnd(oneLine(story.Title), 50)
	a.previousView = a.view
	a.view = ViewMedia
	return nil
}

func (a *App) searchStatus() tea.Cmd {
	engine := fmt.Sprintf("%T", a.searcher)
	docs := -1
	if ds, ok := a.searcher.(search.DebugStatser); ok {
		if n, err := ds.DocCount(); err == nil {
			docs = n
		}
	}
	return a.setStatus(MsgSearchEngine(engine, docs), StatusInfo)
}

// mediaCount counts the items showMedia would list.
func mediaCount(story *topstories.Story) int {
	if story == nil {
		return 0
	}
	n := 0
	for _, m := range story.Multimedia {
		if m.URL != "" {
			n++
		}
	}
	return n
}
