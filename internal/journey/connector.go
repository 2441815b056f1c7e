package journey

import (
	"fmt"

	"mockingbird/internal/domain"
)

// CompletionMode selects which clicks finish a pending connection.
type CompletionMode string

const (
	// CompleteOnPage finishes only on another page's header. A component
	// click while pending starts over from that component.
	CompleteOnPage CompletionMode = "page"
	// CompleteOnComponent also finishes on any other component, which
	// yields a same-page UI interaction when both are on one page.
	CompleteOnComponent CompletionMode = "component"
)

// ParseCompletionMode accepts "page" or "component"; empty means page.
func ParseCompletionMode(s string) (CompletionMode, error) {
	switch CompletionMode(s) {
	case "", CompleteOnPage:
		return CompleteOnPage, nil
	case CompleteOnComponent:
		return CompleteOnComponent, nil
	}
	return "", fmt.Errorf("unknown completion mode %q", s)
}

// OutcomeKind reports what a click did to the connect gesture.
type OutcomeKind string

const (
	OutcomeBegan     OutcomeKind = "began"
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeNone      OutcomeKind = "none"
)

// Outcome is the result of a click on the journey canvas. Connection is
// set when Kind is OutcomeCompleted; its ID is left for the caller to fill.
type Outcome struct {
	Kind       OutcomeKind       `json:"kind"`
	Pending    *domain.Endpoint  `json:"pending,omitempty"`
	Connection domain.Connection `json:"connection"`
}

// Connector is the two-click connect gesture. The zero value uses
// CompleteOnPage and has nothing pending.
type Connector struct {
	Mode    CompletionMode
	pending *domain.Endpoint
}

// Pending returns the source endpoint of the gesture in progress.
func (c *Connector) Pending() (domain.Endpoint, bool) {
	if c.pending == nil {
		return domain.Endpoint{}, false
	}
	return *c.pending, true
}

// Reset drops any pending endpoint.
func (c *Connector) Reset() {
	c.pending = nil
}

// ClickComponent handles a click on componentID of pageID. Component
// existence is checked by the caller.
func (c *Connector) ClickComponent(pageID, componentID string) (Outcome, error) {
	target := domain.Endpoint{PageID: pageID, ComponentID: componentID}
	if c.pending == nil || c.Mode != CompleteOnComponent {
		c.pending = &target
		return Outcome{Kind: OutcomeBegan, Pending: c.snapshot()}, nil
	}

	if *c.pending == target {
		c.pending = nil
		return Outcome{Kind: OutcomeCancelled}, nil
	}
	return c.complete(target), nil
}

// ClickHeader handles a click on a page header. Without a pending source
// it does nothing. Completing onto the source's own page is rejected and
// keeps the gesture alive.
func (c *Connector) ClickHeader(pageID string) (Outcome, error) {
	if c.pending == nil {
		return Outcome{Kind: OutcomeNone}, ErrNothingPending
	}
	if c.pending.PageID == pageID {
		return Outcome{Kind: OutcomeNone, Pending: c.snapshot()}, ErrSamePage
	}
	return c.complete(domain.Endpoint{PageID: pageID}), nil
}

// ClickCanvas cancels the gesture in progress.
func (c *Connector) ClickCanvas() Outcome {
	if c.pending == nil {
		return Outcome{Kind: OutcomeNone}
	}
	c.pending = nil
	return Outcome{Kind: OutcomeCancelled}
}

func (c *Connector) complete(to domain.Endpoint) Outcome {
	from := *c.pending
	c.pending = nil
	return Outcome{
		Kind: OutcomeCompleted,
		Connection: domain.Connection{
			FromPageID:      from.PageID,
			FromComponentID: from.ComponentID,
			ToPageID:        to.PageID,
			ToComponentID:   to.ComponentID,
		},
	}
}

func (c *Connector) snapshot() *domain.Endpoint {
	if c.pending == nil {
		return nil
	}
	e := *c.pending
	return &e
}
