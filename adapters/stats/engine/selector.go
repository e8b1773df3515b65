package engine

import (
	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
)

// SelectTest chooses the test family. A non-nil forced value overrides the
// normality verdicts; otherwise every group must be normal for the
// parametric branch.
func SelectTest(groupCount int, verdicts []comparison.NormalityVerdict, forced *bool, equalVar bool) (bool, comparison.TestKind, error) {
	if groupCount < 2 {
		return false, "", core.NewInvalidGroupCountError(groupCount)
	}

	parametric := true
	if forced != nil {
		parametric = *forced
	} else {
		for _, v := range verdicts {
			if !v.IsNormal {
				parametric = false
				break
			}
		}
	}

	switch {
	case groupCount == 2 && parametric && equalVar:
		return true, comparison.KindPooledT, nil
	case groupCount == 2 && parametric:
		return true, comparison.KindWelchT, nil
	case groupCount == 2:
		return false, comparison.KindMannWhitneyU, nil
	case parametric:
		return true, comparison.KindOneWayANOVA, nil
	default:
		return false, comparison.KindKruskalWallis, nil
	}
}
