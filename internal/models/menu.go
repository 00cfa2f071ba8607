package models

// MenuKind identifies which multi-select menu a persisted snapshot belongs to.
// A volunteer has at most one live snapshot at a time.
type MenuKind string

const (
	MenuKindSymptoms   MenuKind = "symptoms"
	MenuKindActivities MenuKind = "activities"
)

// MenuOption is one button in a menu. Selectable options render with a
// checkbox glyph in front of the label; the rest are plain action buttons.
type MenuOption struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Selectable bool   `json:"selectable,omitempty"`
	Selected   bool   `json:"selected,omitempty"`
}

// Menu is an ordered grid of options, one slice per keyboard row.
type Menu struct {
	Kind MenuKind       `json:"kind,omitempty"`
	Rows [][]MenuOption `json:"rows"`
}

// Toggle returns a copy of the menu with the selected flag of the matching
// selectable option flipped. Toggling an unknown or non-selectable option
// returns an unchanged copy.
func (m *Menu) Toggle(optionID string) *Menu {
	out := &Menu{Kind: m.Kind, Rows: make([][]MenuOption, len(m.Rows))}
	for i, row := range m.Rows {
		out.Rows[i] = make([]MenuOption, len(row))
		copy(out.Rows[i], row)
		for j := range out.Rows[i] {
			if out.Rows[i][j].ID == optionID && out.Rows[i][j].Selectable {
				out.Rows[i][j].Selected = !out.Rows[i][j].Selected
			}
		}
	}
	return out
}

// Selected returns the IDs of all ticked options, in display order.
func (m *Menu) Selected() []string {
	var ids []string
	for _, row := range m.Rows {
		for _, opt := range row {
			if opt.Selectable && opt.Selected {
				ids = append(ids, opt.ID)
			}
		}
	}
	return ids
}

// Has reports whether the menu contains an option with the given ID.
func (m *Menu) Has(optionID string) bool {
	for _, row := range m.Rows {
		for _, opt := range row {
			if opt.ID == optionID {
				return true
			}
		}
	}
	return false
}
