package disambiguation

import "sort"

// Policy holds the auto-resolve thresholds. The top group wins outright when
// its total is at least Ratio times the runner-up's, when the runner-up has
// zero popularity, or when the top total reaches AbsoluteTop while the
// runner-up stays below RunnerUpCeiling.
type Policy struct {
	Ratio           float64
	AbsoluteTop     int64
	RunnerUpCeiling int64
}

// DefaultPolicy returns the stock thresholds (3x, 100/20).
func DefaultPolicy() Policy {
	return Policy{Ratio: 3, AbsoluteTop: 100, RunnerUpCeiling: 20}
}

// Decision labels recorded on a Resolution.
const (
	DecisionNoSearcher    = "no_searcher"
	DecisionSearchFailed  = "search_failed"
	DecisionNoCandidates  = "no_candidates"
	DecisionSingleCreator = "single_creator"
	DecisionRatio         = "dominant_ratio"
	DecisionRunnerUpZero  = "runner_up_zero"
	DecisionAbsolute      = "absolute_dominance"
	DecisionClarify       = "needs_clarification"
)

// CreatorGroup aggregates candidates sharing a surname key.
type CreatorGroup struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Total        int64  `json:"total"`
	Max          int64  `json:"max"`
	Observations int    `json:"observations"`

	order int
}

// Resolution is the outcome of DisambiguateCreator.
type Resolution struct {
	Creators           []string       `json:"creators"`
	NeedsClarification bool           `json:"needs_clarification"`
	Groups             []CreatorGroup `json:"groups,omitempty"`
	Decision           string         `json:"decision"`
}

// Resolved reports whether exactly one creator was chosen without asking.
func (r Resolution) Resolved() bool {
	return !r.NeedsClarification && len(r.Creators) == 1
}

// groupCandidates buckets candidates by surname key and ranks the buckets by
// total popularity, then max popularity, then first appearance.
func groupCandidates(candidates []Candidate) []CreatorGroup {
	index := make(map[string]int)
	groups := make([]CreatorGroup, 0)
	for _, c := range candidates {
		pos, ok := index[c.SurnameKey]
		if !ok {
			pos = len(groups)
			index[c.SurnameKey] = pos
			groups = append(groups, CreatorGroup{Key: c.SurnameKey, Name: c.Creator, order: pos})
		}
		g := &groups[pos]
		g.Total += c.Popularity
		if c.Popularity > g.Max {
			g.Max = c.Popularity
		}
		if len(c.Creator) > len(g.Name) {
			g.Name = c.Creator
		}
		g.Observations++
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Total != groups[j].Total {
			return groups[i].Total > groups[j].Total
		}
		if groups[i].Max != groups[j].Max {
			return groups[i].Max > groups[j].Max
		}
		return groups[i].order < groups[j].order
	})
	return groups
}

// Decide applies p to ranked groups.
func (p Policy) Decide(groups []CreatorGroup) Resolution {
	res := Resolution{Groups: groups}
	switch len(groups) {
	case 0:
		res.Decision = DecisionNoCandidates
		return res
	case 1:
		res.Creators = []string{groups[0].Name}
		res.Decision = DecisionSingleCreator
		return res
	}

	top, second := groups[0].Total, groups[1].Total
	switch {
	case top > 0 && second == 0:
		res.Decision = DecisionRunnerUpZero
	case top > 0 && float64(top) >= p.Ratio*float64(second):
		res.Decision = DecisionRatio
	case top > 0 && top >= p.AbsoluteTop && second < p.RunnerUpCeiling:
		res.Decision = DecisionAbsolute
	default:
		res.Decision = DecisionClarify
		res.NeedsClarification = true
		res.Creators = make([]string, len(groups))
		for i, g := range groups {
			res.Creators[i] = g.Name
		}
		return res
	}
	res.Creators = []string{groups[0].Name}
	return res
}
