// Package export turns a design into a structured document that a code
// generator can consume.
package export

import (
	"fmt"

	"mockingbird/internal/domain"
	"mockingbird/internal/journey"
)

// Scope selects how much of the design is exported.
type Scope string

const (
	ScopeActive Scope = "active"
	ScopeAll    Scope = "all"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeActive:
		return ScopeActive, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", fmt.Errorf("unknown export scope %q", s)
}

// Interaction kinds.
const (
	KindNavigation    = "navigation"
	KindUIInteraction = "ui-interaction"
)

type Document struct {
	Grid         domain.GridSize `json:"grid" yaml:"grid"`
	Device       string          `json:"device" yaml:"device"`
	Scope        Scope           `json:"scope" yaml:"scope"`
	Pages        []Page          `json:"pages" yaml:"pages"`
	Interactions []Interaction   `json:"interactions" yaml:"interactions"`
}

type Page struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Active     bool        `json:"active" yaml:"active"`
	Components []Component `json:"components" yaml:"components"`
}

type Component struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Row        int            `json:"row" yaml:"row"`
	Col        int            `json:"col" yaml:"col"`
	RowSpan    int            `json:"rowSpan" yaml:"rowSpan"`
	ColSpan    int            `json:"colSpan" yaml:"colSpan"`
	Properties map[string]any `json:"properties" yaml:"properties"`
}

// Endpoint is one end of an interaction with names resolved. Resolved is
// false when the page or component no longer exists.
type Endpoint struct {
	PageID        string `json:"pageId" yaml:"pageId"`
	PageName      string `json:"pageName,omitempty" yaml:"pageName,omitempty"`
	ComponentID   string `json:"componentId,omitempty" yaml:"componentId,omitempty"`
	ComponentType string `json:"componentType,omitempty" yaml:"componentType,omitempty"`
	Resolved      bool   `json:"resolved" yaml:"resolved"`
}

type Interaction struct {
	ID    string   `json:"id" yaml:"id"`
	Kind  string   `json:"kind" yaml:"kind"`
	Color string   `json:"color" yaml:"color"`
	From  Endpoint `json:"from" yaml:"from"`
	To    Endpoint `json:"to" yaml:"to"`
}

// Build assembles the document. With ScopeActive only the active page is
// included, along with the connections that touch it.
func Build(s domain.State, scope Scope) Document {
	doc := Document{
		Grid:         s.Grid,
		Device:       string(s.Device),
		Scope:        scope,
		Pages:        []Page{},
		Interactions: []Interaction{},
	}

	for _, p := range s.Pages {
		if scope == ScopeActive && p.ID != s.ActivePageID {
			continue
		}
		doc.Pages = append(doc.Pages, buildPage(p, p.ID == s.ActivePageID))
	}

	for i, c := range s.Connections {
		if scope == ScopeActive && !c.Touches(s.ActivePageID) {
			continue
		}
		kind := KindNavigation
		if c.SamePage() {
			kind = KindUIInteraction
		}
		doc.Interactions = append(doc.Interactions, Interaction{
			ID:    c.ID,
			Kind:  kind,
			Color: journey.ColorFor(i),
			From:  resolve(s, c.FromPageID, c.FromComponentID),
			To:    resolve(s, c.ToPageID, c.ToComponentID),
		})
	}
	return doc
}

func buildPage(p domain.Page, active bool) Page {
	out := Page{ID: p.ID, Name: p.Name, Active: active, Components: []Component{}}
	for _, c := range journey.SortedComponents(p) {
		props := domain.CloneProperties(c.Properties)
		if props == nil {
			props = map[string]any{}
		}
		out.Components = append(out.Components, Component{
			ID:         c.ID,
			Type:       string(c.Type),
			Row:        c.Position.Row,
			Col:        c.Position.Col,
			RowSpan:    c.Span.Rows,
			ColSpan:    c.Span.Cols,
			Properties: props,
		})
	}
	return out
}

func resolve(s domain.State, pageID, componentID string) Endpoint {
	e := Endpoint{PageID: pageID, ComponentID: componentID}
	p, ok := s.Page(pageID)
	if !ok {
		return e
	}
	e.PageName = p.Name
	if componentID == "" {
		e.Resolved = true
		return e
	}
	if c, ok := p.Content(componentID); ok {
		e.ComponentType = string(c.Type)
		e.Resolved = true
	}
	return e
}
