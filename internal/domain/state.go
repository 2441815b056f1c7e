package domain

type DeviceMode string

const (
	DeviceDesktop DeviceMode = "desktop"
	DeviceMobile  DeviceMode = "mobile"
)

func (d DeviceMode) Valid() bool {
	return d == DeviceDesktop || d == DeviceMobile
}

type ViewMode string

const (
	ViewPages    ViewMode = "pages"
	ViewJourneys ViewMode = "journeys"
)

func (v ViewMode) Valid() bool {
	return v == ViewPages || v == ViewJourneys
}

// GridSize is shared by every page.
type GridSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// State is the complete design document.
type State struct {
	Pages        []Page       `json:"pages"`
	ActivePageID string       `json:"activePageId"`
	PageNodes    []PageNode   `json:"pageNodes"`
	Connections  []Connection `json:"connections"`
	Grid         GridSize     `json:"grid"`
	Device       DeviceMode   `json:"device"`
	View         ViewMode     `json:"view"`
}

// Clone returns a deep copy that shares no slices or maps with s.
func (s State) Clone() State {
	out := s
	if s.Pages != nil {
		out.Pages = make([]Page, len(s.Pages))
		for i, p := range s.Pages {
			out.Pages[i] = p.Clone()
		}
	}
	if s.PageNodes != nil {
		out.PageNodes = append([]PageNode(nil), s.PageNodes...)
	}
	if s.Connections != nil {
		out.Connections = append([]Connection(nil), s.Connections...)
	}
	return out
}

// Page looks up a page by id.
func (s State) Page(id string) (Page, bool) {
	for _, p := range s.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return Page{}, false
}

// PageIndex returns the position of the page in Pages, or -1.
func (s State) PageIndex(id string) int {
	for i, p := range s.Pages {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// ActivePage returns the page currently being edited.
func (s State) ActivePage() (Page, bool) {
	return s.Page(s.ActivePageID)
}
