package ast

// Str returns the series matching vs in order.
func Str[T any](vs ...T) Node[T] {
	items := make([]Node[T], len(vs))
	for i, v := range vs {
		items[i] = Const[T]{Value: v}
	}
	return Series[T]{Items: items}
}

// Seq returns the series of the given nodes.
func Seq[T any](items ...Node[T]) Node[T] {
	return Series[T]{Items: items}
}

// Or returns the alternation of the given nodes.
func Or[T any](items ...Node[T]) Node[T] {
	return Parallels[T]{Items: items}
}

// Between returns a greedy repetition of n.
func Between[T any](n Node[T], min, max int) Node[T] {
	return Repeat[T]{Inner: n, Min: min, Max: max}
}

// Optional matches n zero or one time.
func Optional[T any](n Node[T]) Node[T] {
	return Repeat[T]{Inner: n, Min: 0, Max: 1}
}

// Star matches n any number of times.
func Star[T any](n Node[T]) Node[T] {
	return Repeat[T]{Inner: n, Min: 0, Max: Unbounded}
}

// Plus matches n at least once.
func Plus[T any](n Node[T]) Node[T] {
	return Repeat[T]{Inner: n, Min: 1, Max: Unbounded}
}

// Capture returns an anonymous capturing group around n.
func Capture[T any](n Node[T]) Node[T] {
	return Group[T]{Inner: n, Captive: true}
}

// Named returns a named capturing group around n.
func Named[T any](name string, n Node[T]) Node[T] {
	return Group[T]{Inner: n, Name: name, Captive: true}
}

// Span returns the inclusive range node [min, max].
func Span[T any](min, max T) Node[T] {
	return Range[T]{Min: min, Max: max, CanTakeMin: true, CanTakeMax: true}
}

// Walk calls fn for n and every node below it in pre-order. Returning false
// from fn skips the children of that node.
func Walk[T any](n Node[T], fn func(Node[T]) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case Series[T]:
		for _, it := range n.Items {
			Walk(it, fn)
		}
	case Parallels[T]:
		for _, it := range n.Items {
			Walk(it, fn)
		}
	case Repeat[T]:
		Walk(n.Inner, fn)
	case Group[T]:
		Walk(n.Inner, fn)
	case Look[T]:
		Walk(n.Inner, fn)
	case Balance[T]:
		Walk(n.Inner, fn)
	}
}
