package sitecontent

// Direction is the way Move shifts an entry.
type Direction string

// Direction constants (typed).
const (
	Up   Direction = "up"
	Down Direction = "down"
)

// The helpers below implement the ordering algebra shared by block lists and
// FAQ question lists. Each takes a setter that writes the order field so the
// stored order always equals position in the returned slice.

func restamp[S ~[]E, E any](s S, setOrder func(*E, int)) S {
	for i := range s {
		setOrder(&s[i], i)
	}
	return s
}

func appendOrdered[S ~[]E, E any](s S, v E, clone func(S) S, setOrder func(*E, int)) S {
	out := append(clone(s), v)
	return restamp(out, setOrder)
}

func removeOrdered[S ~[]E, E any](op string, s S, index int, clone func(S) S, setOrder func(*E, int)) (S, error) {
	if err := checkIndex(op, index, len(s)); err != nil {
		return nil, err
	}
	out := clone(s)
	out = append(out[:index], out[index+1:]...)
	return restamp(out, setOrder), nil
}

func moveOrdered[S ~[]E, E any](op string, s S, index int, dir Direction, clone func(S) S, setOrder func(*E, int)) (S, error) {
	if err := checkIndex(op, index, len(s)); err != nil {
		return nil, err
	}
	var target int
	switch dir {
	case Up:
		target = index - 1
	case Down:
		target = index + 1
	default:
		return nil, invariant(op, "unknown direction %q", dir)
	}
	out := clone(s)
	if target < 0 || target >= len(out) {
		return out, nil
	}
	out[index], out[target] = out[target], out[index]
	return restamp(out, setOrder), nil
}
