package registry

// Predicate decides whether a rule applies to a version
type Predicate func(Version) bool

// Always matches every version
func Always() Predicate {
	return func(Version) bool { return true }
}

// BuildAtLeast matches builds >= b
func BuildAtLeast(b int) Predicate {
	return func(v Version) bool { return v.Build >= b }
}

// BuildBelow matches builds < b
func BuildBelow(b int) Predicate {
	return func(v Version) bool { return v.Build < b }
}

// BuildRange matches lo <= build < hi
func BuildRange(lo, hi int) Predicate {
	return func(v Version) bool { return v.Build >= lo && v.Build < hi }
}

// ExpansionIs matches any of the given expansions
func ExpansionIs(exps ...Expansion) Predicate {
	return func(v Version) bool {
		for _, e := range exps {
			if v.Expansion == e {
				return true
			}
		}
		return false
	}
}

// All matches when every predicate matches
func All(preds ...Predicate) Predicate {
	return func(v Version) bool {
		for _, p := range preds {
			if !p(v) {
				return false
			}
		}
		return true
	}
}

// AnyOf matches when at least one predicate matches
func AnyOf(preds ...Predicate) Predicate {
	return func(v Version) bool {
		for _, p := range preds {
			if p(v) {
				return true
			}
		}
		return false
	}
}
