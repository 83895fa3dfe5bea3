// Package objstore implements an arena of objects addressed by stable
// numeric handles.
package objstore

type Store[T any] struct {
	objects map[uint32]T
	nextID  uint32
}

func New[T any](start uint32) *Store[T] {
	return &Store[T]{
		objects: make(map[uint32]T),
		nextID:  start,
	}
}

// Add stores obj under a fresh ID and returns that ID. IDs are never
// reused.
func (s *Store[T]) Add(obj T) uint32 {
	id := s.nextID
	s.nextID++

	s.objects[id] = obj
	return id
}

func (s *Store[T]) Get(id uint32) (obj T, ok bool) {
	obj, ok = s.objects[id]
	return obj, ok
}

func (s *Store[T]) Delete(id uint32) {
	delete(s.objects, id)
}

func (s *Store[T]) Len() int {
	return len(s.objects)
}

// Range calls f for every object in the store in no particular order.
// f may delete objects from the store.
func (s *Store[T]) Range(f func(id uint32, obj T)) {
	for id, obj := range s.objects {
		f(id, obj)
	}
}
