package feed

import "context"

// Mapper converts an entry, returning false skips it.
type Mapper[T any] func(entry Entry) (T, bool, error)

// Seq is a lazy typed view over a Traversal.
type Seq[T any] struct {
	traversal *Traversal
	fn        Mapper[T]
	value     T
	err       error
}

// Map adapts t into a sequence of T. A nil traversal is an empty sequence.
func Map[T any](t *Traversal, fn Mapper[T]) *Seq[T] {
	return &Seq[T]{traversal: t, fn: fn}
}

func (s *Seq[T]) Next(ctx context.Context) bool {
	if s.traversal == nil || s.err != nil {
		return false
	}
	for s.traversal.Next(ctx) {
		value, ok, err := s.fn(s.traversal.Entry())
		if err != nil {
			s.err = err
			return false
		}
		if !ok {
			continue
		}
		s.value = value
		return true
	}
	s.err = s.traversal.Err()
	return false
}

func (s *Seq[T]) Value() T {
	return s.value
}

// Err returns the mapper's error or the traversal's.
func (s *Seq[T]) Err() error {
	return s.err
}

// Collect drains s.
func Collect[T any](ctx context.Context, s *Seq[T]) ([]T, error) {
	out := []T{}
	for s.Next(ctx) {
		out = append(out, s.Value())
	}
	return out, s.Err()
}
