package types

// MinWindowEdge is the smallest width/height persisted for a window.
// Captured values below this are clamped up on the write path.
const MinWindowEdge = 200

// Bounds describes a window rectangle. X and Y are optional; a Bounds is
// only meaningful when both Width and Height are positive.
type Bounds struct {
	X      *int `json:"x,omitempty"`
	Y      *int `json:"y,omitempty"`
	Width  int  `json:"width"`
	Height int  `json:"height"`
}

// WinState is the persisted window geometry for a profile. A WinState with
// neither a valid Bounds nor IsMaximized set carries no information and is
// normalized away (stored as nil).
type WinState struct {
	Bounds      *Bounds `json:"bounds,omitempty"`
	IsMaximized bool    `json:"isMaximized"`
}

// Clone returns a deep copy, safe to store on a second profile.
func (w *WinState) Clone() *WinState {
	if w == nil {
		return nil
	}
	out := &WinState{IsMaximized: w.IsMaximized}
	if w.Bounds != nil {
		b := *w.Bounds
		if w.Bounds.X != nil {
			x := *w.Bounds.X
			b.X = &x
		}
		if w.Bounds.Y != nil {
			y := *w.Bounds.Y
			b.Y = &y
		}
		out.Bounds = &b
	}
	return out
}

// Profile is one user-created persona.
//
// Partition is the storage partition identifier the profile's embedded web
// session uses. Once assigned it is stable across renames: the stored value
// always wins over re-derivation from the name.
type Profile struct {
	Name      string    `json:"name"`
	Job       string    `json:"job"`
	Partition string    `json:"partition"`
	Frame     bool      `json:"frame"`
	IsClone   bool      `json:"isClone"`
	Muted     bool      `json:"muted,omitempty"`
	WinState  *WinState `json:"winState,omitempty"`
}
