package threshold

import (
	"fmt"
	"strings"

	"saevis/domain/core"
)

// Category classifies a node by the split stage that produced it.
type Category string

const (
	CategoryRoot           Category = "root"
	CategoryBooleanSplit   Category = "boolean-split"
	CategoryDistanceSplit  Category = "distance-split"
	CategoryAgreementSplit Category = "agreement-split"
)

// Branch is the outcome of the stage-1 boolean split.
type Branch string

const (
	BranchTrue  Branch = "true"
	BranchFalse Branch = "false"
)

// DistanceLevel is the outcome of the stage-2 distance split.
type DistanceLevel string

const (
	DistanceHigh DistanceLevel = "high"
	DistanceLow  DistanceLevel = "low"
)

// AgreementBand is the outcome of the stage-3 score-agreement split.
type AgreementBand string

const (
	AgreementHigh  AgreementBand = "high"
	AgreementMixed AgreementBand = "mixed"
	AgreementLow   AgreementBand = "low"
)

// Path is the typed decomposition of a node identifier. Node identifiers
// encode the route through the pipeline as underscore-joined segments
// ("root", "split_true", "split_true_semdist_high",
// "split_true_semdist_high_agree_mixed"); Path makes that structure
// explicit so grouping rules never slice identifier strings directly.
type Path struct {
	Split     *Branch
	Distance  *DistanceLevel
	Agreement *AgreementBand
}

// ParsePath parses a node identifier into its typed path. It is total over
// well-formed identifiers and rejects everything else, so a malformed id
// can never silently land in the wrong threshold group.
func ParsePath(id core.NodeID) (Path, error) {
	s := id.String()
	if s == "root" {
		return Path{}, nil
	}

	tokens := strings.Split(s, "_")
	var p Path
	i := 0

	consume := func(keyword string) (string, bool) {
		if i+1 < len(tokens) && tokens[i] == keyword {
			value := tokens[i+1]
			i += 2
			return value, true
		}
		return "", false
	}

	if v, ok := consume("split"); ok {
		b := Branch(v)
		if b != BranchTrue && b != BranchFalse {
			return Path{}, fmt.Errorf("invalid split branch %q in node id %q", v, s)
		}
		p.Split = &b
	} else {
		return Path{}, fmt.Errorf("node id %q does not start with a split segment", s)
	}

	if v, ok := consume("semdist"); ok {
		l := DistanceLevel(v)
		if l != DistanceHigh && l != DistanceLow {
			return Path{}, fmt.Errorf("invalid distance level %q in node id %q", v, s)
		}
		p.Distance = &l
	}

	if v, ok := consume("agree"); ok {
		if p.Distance == nil {
			return Path{}, fmt.Errorf("node id %q has an agreement segment without a distance segment", s)
		}
		a := AgreementBand(v)
		if a != AgreementHigh && a != AgreementMixed && a != AgreementLow {
			return Path{}, fmt.Errorf("invalid agreement band %q in node id %q", v, s)
		}
		p.Agreement = &a
	}

	if i != len(tokens) {
		return Path{}, fmt.Errorf("unexpected trailing segments in node id %q", s)
	}

	return p, nil
}

// Category returns the classification of the node this path names.
func (p Path) Category() Category {
	switch {
	case p.Agreement != nil:
		return CategoryAgreementSplit
	case p.Distance != nil:
		return CategoryDistanceSplit
	case p.Split != nil:
		return CategoryBooleanSplit
	default:
		return CategoryRoot
	}
}

// Stage returns the pipeline stage index (0 for the root).
func (p Path) Stage() int {
	switch p.Category() {
	case CategoryBooleanSplit:
		return 1
	case CategoryDistanceSplit:
		return 2
	case CategoryAgreementSplit:
		return 3
	default:
		return 0
	}
}

// NodeID reassembles the identifier this path was parsed from.
func (p Path) NodeID() core.NodeID {
	if p.Split == nil {
		return core.NodeID("root")
	}
	var b strings.Builder
	b.WriteString("split_")
	b.WriteString(string(*p.Split))
	if p.Distance != nil {
		b.WriteString("_semdist_")
		b.WriteString(string(*p.Distance))
	}
	if p.Agreement != nil {
		b.WriteString("_agree_")
		b.WriteString(string(*p.Agreement))
	}
	return core.NodeID(b.String())
}

// Parent returns the identifier of the node one stage up, and false for
// the root, which has no parent.
func (p Path) Parent() (core.NodeID, bool) {
	switch p.Category() {
	case CategoryAgreementSplit:
		parent := Path{Split: p.Split, Distance: p.Distance}
		return parent.NodeID(), true
	case CategoryDistanceSplit:
		parent := Path{Split: p.Split}
		return parent.NodeID(), true
	case CategoryBooleanSplit:
		return core.NodeID("root"), true
	default:
		return "", false
	}
}
