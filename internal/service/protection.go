package service

import (
	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
)

// Region is an inclusive block box in one dimension
type Region struct {
	Min       [3]int
	Max       [3]int
	Dimension string
}

// Contains reports whether pos lies inside the box
func (r Region) Contains(dimension string, pos model.BlockPos) bool {
	if r.Dimension != "" && dimension != r.Dimension {
		return false
	}
	p := [3]int{pos.X, pos.Y, pos.Z}
	for i := range p {
		if p[i] < r.Min[i] || p[i] > r.Max[i] {
			return false
		}
	}
	return true
}

// ProtectionService guards the spawn region against block edits
type ProtectionService struct {
	regions   []Region
	directory Directory
	text      *locale.Localizer
}

// NewProtectionService creates a guard over regions. No regions allows
// everything.
func NewProtectionService(directory Directory, text *locale.Localizer, regions ...Region) *ProtectionService {
	return &ProtectionService{regions: regions, directory: directory, text: text}
}

// CheckBlockEdit decides whether the player may break or place a block.
// Operators may always edit; players the directory does not know are treated
// as regular players.
func (s *ProtectionService) CheckBlockEdit(req model.BlockEditRequest) model.BlockEditDecision {
	if p, ok := s.directory.FindConnected(req.Player); ok && p.IsOp {
		return model.BlockEditDecision{Allowed: true}
	}
	for _, r := range s.regions {
		if r.Contains(req.Dimension, req.Position) {
			return model.BlockEditDecision{Message: s.text.Text(locale.BlockEditDenied, nil)}
		}
	}
	return model.BlockEditDecision{Allowed: true}
}
