package pipeline

import (
	"github.com/matzehuels/medialaxis/pkg/boundary"
	"github.com/matzehuels/medialaxis/pkg/errors"
	"github.com/matzehuels/medialaxis/pkg/evaluation"
	"github.com/matzehuels/medialaxis/pkg/shape"
)

// Comparison is the distance between two masks.
type Comparison struct {
	// SymDiffArea is the symmetric difference as a fraction of the
	// reference area.
	SymDiffArea float64 `json:"sym_diff_area"`

	// Hausdorff is the Hausdorff distance between the traced boundaries.
	Hausdorff float64 `json:"hausdorff"`
}

// Compare measures cmp against the reference mask ref. Both masks must have
// the same size and a single traceable boundary loop.
func Compare(ref, cmp *shape.Shape) (Comparison, error) {
	if ref.Width() != cmp.Width() || ref.Height() != cmp.Height() {
		return Comparison{}, errors.New(errors.ErrCodeInvalidInput,
			"image sizes differ: %dx%d vs %dx%d", ref.Width(), ref.Height(), cmp.Width(), cmp.Height())
	}

	bref, err := boundary.Extract(ref)
	if err != nil {
		return Comparison{}, errors.Wrap(errors.ErrCodeInvalidShape, err, "reference boundary")
	}
	bcmp, err := boundary.Extract(cmp)
	if err != nil {
		return Comparison{}, errors.Wrap(errors.ErrCodeInvalidShape, err, "compared boundary")
	}

	return Comparison{
		SymDiffArea: evaluation.SymDiffArea(ref, cmp),
		Hausdorff:   evaluation.BoundaryHausDist(bref, bcmp),
	}, nil
}
