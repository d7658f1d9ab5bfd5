package profile

import (
	"github.com/bytedance/sonic"

	"github.com/toffeegg/flyffu-launcherd/internal/shared/types"
	"github.com/toffeegg/flyffu-launcherd/internal/shared/utils"
)

// rawProfile accepts both the current record shape and the earliest
// format, where each entry was a bare name string.
type rawProfile struct {
	types.Profile
}

// UnmarshalJSON upgrades bare-string entries to full records.
func (r *rawProfile) UnmarshalJSON(data []byte) error {
	var name string
	if err := sonic.Unmarshal(data, &name); err == nil {
		r.Profile = types.Profile{Name: name}
		return nil
	}
	return sonic.Unmarshal(data, &r.Profile)
}

// normalize upgrades one loaded record in memory. Invalid records (empty
// name after sanitization) are dropped by returning false.
func normalize(p *types.Profile) bool {
	p.Name = utils.SanitizeDisplayName(p.Name)
	if p.Name == "" {
		return false
	}
	p.Job = types.NormalizeJob(p.Job)
	if !p.IsClone && utils.InferIsClone(p.Name) {
		p.IsClone = true
	}
	p.WinState = sanitizeWinState(p.WinState)
	return true
}

// sanitizeWinState discards geometry that carries no information: bounds
// without positive dimensions are dropped, and a state with neither valid
// bounds nor a maximize flag becomes nil.
func sanitizeWinState(ws *types.WinState) *types.WinState {
	if ws == nil {
		return nil
	}
	out := ws.Clone()
	if out.Bounds != nil && (out.Bounds.Width <= 0 || out.Bounds.Height <= 0) {
		out.Bounds = nil
	}
	if out.Bounds == nil && !out.IsMaximized {
		return nil
	}
	if out.Bounds != nil {
		if out.Bounds.Width < types.MinWindowEdge {
			out.Bounds.Width = types.MinWindowEdge
		}
		if out.Bounds.Height < types.MinWindowEdge {
			out.Bounds.Height = types.MinWindowEdge
		}
	}
	return out
}
