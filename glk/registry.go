package glk

// registry is an id-keyed slot store with stable uint32 handles and
// creation-ordered iteration. It replaces the manually linked object lists
// of the legacy implementation: insert and remove are O(1) map operations
// and a freed object's id is never reused, so a stale handle can only miss.
type registry[T any] struct {
	slots  map[uint32]T
	order  []uint32
	nextID uint32
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{slots: make(map[uint32]T), nextID: 1}
}

// add stores v and returns its new id.
func (r *registry[T]) add(v T) uint32 {
	id := r.nextID
	r.nextID++
	r.slots[id] = v
	r.order = append(r.order, id)
	return id
}

// get returns the object for id, or the zero value and false.
func (r *registry[T]) get(id uint32) (T, bool) {
	v, ok := r.slots[id]
	return v, ok
}

// remove deletes id from the store.
func (r *registry[T]) remove(id uint32) {
	if _, ok := r.slots[id]; !ok {
		return
	}
	delete(r.slots, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// first returns the oldest live object, for legacy iterate calls.
func (r *registry[T]) first() (T, bool) {
	var zero T
	if len(r.order) == 0 {
		return zero, false
	}
	return r.slots[r.order[0]], true
}

// after returns the object created soonest after id.
func (r *registry[T]) after(id uint32) (T, bool) {
	var zero T
	for i, oid := range r.order {
		if oid == id {
			if i+1 < len(r.order) {
				return r.slots[r.order[i+1]], true
			}
			return zero, false
		}
	}
	return zero, false
}

// restore inserts v under an explicit id, bumping nextID past it. Used
// when rebuilding a store from a snapshot.
func (r *registry[T]) restore(id uint32, v T) {
	if _, ok := r.slots[id]; ok {
		return
	}
	r.slots[id] = v
	r.order = append(r.order, id)
	if id >= r.nextID {
		r.nextID = id + 1
	}
}

// each calls fn for every live object in creation order.
func (r *registry[T]) each(fn func(T)) {
	for _, id := range r.order {
		fn(r.slots[id])
	}
}

// len reports the number of live objects.
func (r *registry[T]) len() int {
	return len(r.order)
}
