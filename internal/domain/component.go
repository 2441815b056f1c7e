package domain

// ComponentType names a placeholder kind that can be placed on the grid.
type ComponentType string

const (
	ComponentButton     ComponentType = "button"
	ComponentInput      ComponentType = "input"
	ComponentCard       ComponentType = "card"
	ComponentTable      ComponentType = "table"
	ComponentBadge      ComponentType = "badge"
	ComponentAvatar     ComponentType = "avatar"
	ComponentTabs       ComponentType = "tabs"
	ComponentAccordion  ComponentType = "accordion"
	ComponentAlert      ComponentType = "alert"
	ComponentSidebar    ComponentType = "sidebar"
	ComponentSelect     ComponentType = "select"
	ComponentCheckbox   ComponentType = "checkbox"
	ComponentRadio      ComponentType = "radio"
	ComponentSwitch     ComponentType = "switch"
	ComponentSlider     ComponentType = "slider"
	ComponentTextarea   ComponentType = "textarea"
	ComponentCalendar   ComponentType = "calendar"
	ComponentDatePicker ComponentType = "datepicker"
	ComponentDropdown   ComponentType = "dropdown"
	ComponentPopover    ComponentType = "popover"
	ComponentTooltip    ComponentType = "tooltip"
	ComponentProgress   ComponentType = "progress"
	ComponentSeparator  ComponentType = "separator"
	ComponentSkeleton   ComponentType = "skeleton"
	ComponentBarChart   ComponentType = "barchart"
	ComponentLineChart  ComponentType = "linechart"
	ComponentAreaChart  ComponentType = "areachart"
	ComponentPieChart   ComponentType = "piechart"
)

var componentTypes = []ComponentType{
	ComponentButton, ComponentInput, ComponentCard, ComponentTable,
	ComponentBadge, ComponentAvatar, ComponentTabs, ComponentAccordion,
	ComponentAlert, ComponentSidebar, ComponentSelect, ComponentCheckbox,
	ComponentRadio, ComponentSwitch, ComponentSlider, ComponentTextarea,
	ComponentCalendar, ComponentDatePicker, ComponentDropdown, ComponentPopover,
	ComponentTooltip, ComponentProgress, ComponentSeparator, ComponentSkeleton,
	ComponentBarChart, ComponentLineChart, ComponentAreaChart, ComponentPieChart,
}

// ComponentTypes returns every placeable type in palette order.
func ComponentTypes() []ComponentType {
	out := make([]ComponentType, len(componentTypes))
	copy(out, componentTypes)
	return out
}

// Valid reports whether t is one of the known component types.
func (t ComponentType) Valid() bool {
	for _, ct := range componentTypes {
		if ct == t {
			return true
		}
	}
	return false
}

// DefaultProperties returns the display properties a freshly placed
// component of type t starts with. Values are JSON-native so a stored
// layout decodes back to an equal map. Every call returns a new map.
func DefaultProperties(t ComponentType) map[string]any {
	switch t {
	case ComponentButton:
		return map[string]any{"text": "Click me", "variant": "default"}
	case ComponentInput:
		return map[string]any{"placeholder": "Enter text...", "inputType": "text"}
	case ComponentCard:
		return map[string]any{
			"title":       "Card Title",
			"description": "Card description goes here",
			"content":     "This is a card component that can be used for content blocks.",
		}
	case ComponentTable:
		return map[string]any{"rows": []any{
			map[string]any{"name": "John Doe", "status": "Active", "date": "2024-01-15"},
			map[string]any{"name": "Jane Smith", "status": "Inactive", "date": "2024-01-14"},
		}}
	case ComponentBadge:
		return map[string]any{"text": "Badge", "variant": "default"}
	case ComponentAvatar:
		return map[string]any{"name": "User Name", "email": "user@example.com", "fallback": "UN"}
	case ComponentTabs:
		return map[string]any{"tabs": []any{
			map[string]any{"id": "tab1", "label": "Tab 1", "content": "Content for Tab 1"},
			map[string]any{"id": "tab2", "label": "Tab 2", "content": "Content for Tab 2"},
			map[string]any{"id": "tab3", "label": "Tab 3", "content": "Content for Tab 3"},
		}}
	case ComponentAccordion:
		return map[string]any{"items": []any{
			map[string]any{"id": "item-1", "title": "Section 1", "content": "This is the content for section 1. It can contain any type of content."},
			map[string]any{"id": "item-2", "title": "Section 2", "content": "This is the content for section 2. You can add more sections as needed."},
		}}
	case ComponentAlert:
		return map[string]any{
			"title":       "Heads up!",
			"description": "You can add components to your app using the cli.",
			"variant":     "default",
		}
	case ComponentSidebar:
		return map[string]any{"title": "Navigation", "menuItems": []any{"Dashboard", "Projects", "Settings"}}
	case ComponentSelect:
		return map[string]any{"placeholder": "Select an option", "options": []any{"Option 1", "Option 2", "Option 3"}}
	case ComponentCheckbox:
		return map[string]any{"label": "Accept terms and conditions", "checked": false}
	case ComponentRadio:
		return map[string]any{"options": []any{"Option 1", "Option 2", "Option 3"}, "selected": "Option 1"}
	case ComponentSwitch:
		return map[string]any{"label": "Airplane mode", "checked": false}
	case ComponentSlider:
		return map[string]any{"value": float64(50), "min": float64(0), "max": float64(100)}
	case ComponentTextarea:
		return map[string]any{"placeholder": "Type your message here."}
	case ComponentDatePicker:
		return map[string]any{"placeholder": "Pick a date"}
	case ComponentDropdown:
		return map[string]any{"label": "Open", "items": []any{"Profile", "Billing", "Settings"}}
	case ComponentPopover:
		return map[string]any{"trigger": "Open popover", "content": "Place content for the popover here."}
	case ComponentTooltip:
		return map[string]any{"trigger": "Hover", "content": "Add to library"}
	case ComponentProgress:
		return map[string]any{"value": float64(60)}
	case ComponentSeparator:
		return map[string]any{"orientation": "horizontal"}
	case ComponentSkeleton:
		return map[string]any{"lines": float64(3)}
	case ComponentBarChart, ComponentLineChart, ComponentAreaChart:
		return map[string]any{"title": "Monthly Overview", "data": []any{
			map[string]any{"label": "Jan", "value": float64(186)},
			map[string]any{"label": "Feb", "value": float64(305)},
			map[string]any{"label": "Mar", "value": float64(237)},
		}}
	case ComponentPieChart:
		return map[string]any{"title": "Distribution", "data": []any{
			map[string]any{"label": "Chrome", "value": float64(275)},
			map[string]any{"label": "Safari", "value": float64(200)},
			map[string]any{"label": "Other", "value": float64(90)},
		}}
	}
	return map[string]any{}
}
