package tui

type View int

const (
	ViewStories View = iota
	ViewSections
	ViewReader
	ViewSearch
	ViewMedia
)

func (v View) String() string {
	switch v {
	case ViewStories:
		return "stories"
	case ViewSections:
		return "sections"
	case ViewReader:
		return "reader"
	case ViewSearch:
		return "search"
	case ViewMedia:
		return "media"
	default:
		return "unknown"
	}
}
