package dfa

// Minimize returns the minimal DFA for the same language using
// Brzozowski's algorithm: determinizing the reversal twice. The result has
// no dead state; missing transitions reject.
func (d *DFA[T]) Minimize(cfg Config) (*DFA[T], error) {
	rev, err := d.Reverse()
	if err != nil {
		return nil, err
	}
	back, err := Determinize(rev, cfg)
	if err != nil {
		return nil, err
	}
	rev, err = back.Reverse()
	if err != nil {
		return nil, err
	}
	return Determinize(rev, cfg)
}
