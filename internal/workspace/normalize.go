package workspace

import (
	"fmt"

	"mockingbird/internal/domain"
	"mockingbird/internal/grid"
	"mockingbird/internal/journey"
)

// DefaultState is a fresh design: one empty page on the default grid.
func DefaultState(ids IDGenerator, size domain.GridSize, pl journey.Placement) domain.State {
	page := domain.Page{ID: ids.NewID(PrefixPage), Name: pageName(1), Contents: []domain.GridContent{}}
	s := domain.State{
		Pages:        []domain.Page{page},
		ActivePageID: page.ID,
		Connections:  []domain.Connection{},
		Grid:         size,
		Device:       domain.DeviceDesktop,
		View:         domain.ViewPages,
	}
	s.PageNodes = journey.ReconcileNodes(s.Pages, nil, pl)
	return s
}

func pageName(n int) string {
	return fmt.Sprintf("Page %d", n)
}

// Normalize repairs a loaded state so every invariant holds: at least one
// page, a valid active page, one node per page, no connection to a missing
// page, grid dimensions of at least one and known modes. Empty collections
// are non-nil so an encode/decode cycle is exact.
func Normalize(s domain.State, ids IDGenerator, size domain.GridSize, pl journey.Placement) domain.State {
	s = s.Clone()

	if s.Grid.Rows < 1 {
		s.Grid.Rows = size.Rows
	}
	if s.Grid.Cols < 1 {
		s.Grid.Cols = size.Cols
	}
	if s.Grid.Rows < 1 || s.Grid.Cols < 1 {
		s.Grid = grid.DefaultSize()
	}
	if !s.Device.Valid() {
		s.Device = domain.DeviceDesktop
	}
	if !s.View.Valid() {
		s.View = domain.ViewPages
	}

	if len(s.Pages) == 0 {
		s.Pages = []domain.Page{{ID: ids.NewID(PrefixPage), Name: pageName(1)}}
	}
	for i := range s.Pages {
		if s.Pages[i].Contents == nil {
			s.Pages[i].Contents = []domain.GridContent{}
		}
		for j := range s.Pages[i].Contents {
			if s.Pages[i].Contents[j].Properties == nil {
				s.Pages[i].Contents[j].Properties = map[string]any{}
			}
		}
	}
	if s.PageIndex(s.ActivePageID) < 0 {
		s.ActivePageID = s.Pages[0].ID
	}

	s.PageNodes = journey.ReconcileNodes(s.Pages, s.PageNodes, pl)

	conns := make([]domain.Connection, 0, len(s.Connections))
	for _, c := range s.Connections {
		if s.PageIndex(c.FromPageID) >= 0 && s.PageIndex(c.ToPageID) >= 0 {
			conns = append(conns, c)
		}
	}
	s.Connections = conns
	return s
}
