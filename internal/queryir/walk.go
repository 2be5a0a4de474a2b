package queryir

// WalkFunc is called for every triple with its polarity.
type WalkFunc func(t Triple, mustExist bool)

// Walk visits every triple under g depth first, in source order. The
// polarity starts true and flips on entry to each NotExists block.
func Walk(g Group, fn WalkFunc) {
	walkGroup(g, true, fn)
}

func walkGroup(g Group, mustExist bool, fn WalkFunc) {
	for _, p := range g.Patterns {
		switch pat := p.(type) {
		case Triple:
			fn(pat, mustExist)
		case *Triple:
			fn(*pat, mustExist)
		case Group:
			walkGroup(pat, mustExist, fn)
		case *Group:
			walkGroup(*pat, mustExist, fn)
		case NotExists:
			walkGroup(pat.Group, !mustExist, fn)
		case *NotExists:
			walkGroup(pat.Group, !mustExist, fn)
		}
	}
}

// Depth returns the deepest NOT EXISTS nesting level under g. Plain
// groups do not add a level.
func Depth(g Group) int {
	deepest := 0
	for _, p := range g.Patterns {
		var d int
		switch pat := p.(type) {
		case Group:
			d = Depth(pat)
		case *Group:
			d = Depth(*pat)
		case NotExists:
			d = 1 + Depth(pat.Group)
		case *NotExists:
			d = 1 + Depth(pat.Group)
		}
		deepest = max(deepest, d)
	}
	return deepest
}
