package store

import "github.com/noah-isme/course-admin-store/internal/models"

// table is the insertion-ordered collection of one entity kind. It is not
// safe for concurrent use; the owning Store serializes access.
//
// Rows go in and out through clone, which deep-copies pointer fields, so no
// caller ever holds memory shared with the live state or a snapshot in flight.
// A nil clone means the row type has no pointer fields.
type table[T any] struct {
	kind   models.EntityKind
	rows   []T
	index  map[int64]int
	lastID int64
	idOf   func(*T) int64
	setID  func(*T, int64)
	clone  func(T) T
}

func newTable[T any](kind models.EntityKind, idOf func(*T) int64, setID func(*T, int64), clone func(T) T) *table[T] {
	return &table[T]{kind: kind, index: make(map[int64]int), idOf: idOf, setID: setID, clone: clone}
}

// copyOf returns a detached copy of row.
func (t *table[T]) copyOf(row *T) T {
	if t.clone == nil {
		return *row
	}
	return t.clone(*row)
}

// insert assigns the next identity, appends a copy of row and returns
// another one.
func (t *table[T]) insert(row T) T {
	t.lastID++
	t.setID(&row, t.lastID)
	t.index[t.lastID] = len(t.rows)
	t.rows = append(t.rows, t.copyOf(&row))
	return t.copyOf(&row)
}

// put overwrites the live row with a copy of row.
func (t *table[T]) put(dst *T, row T) {
	*dst = t.copyOf(&row)
}

// get returns the live row for id. The pointer is only valid until the next
// insert or remove.
func (t *table[T]) get(id int64) (*T, bool) {
	pos, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return &t.rows[pos], true
}

func (t *table[T]) find(id int64) (*T, bool) {
	row, ok := t.get(id)
	if !ok {
		return nil, false
	}
	out := t.copyOf(row)
	return &out, true
}

func (t *table[T]) first(pred func(*T) bool) (*T, bool) {
	for i := range t.rows {
		if pred(&t.rows[i]) {
			return &t.rows[i], true
		}
	}
	return nil, false
}

func (t *table[T]) where(pred func(T) bool) []T {
	out := make([]T, 0)
	for i := range t.rows {
		row := t.copyOf(&t.rows[i])
		if pred == nil || pred(row) {
			out = append(out, row)
		}
	}
	return out
}

func (t *table[T]) exists(pred func(*T) bool) bool {
	_, ok := t.first(pred)
	return ok
}

func (t *table[T]) remove(id int64) bool {
	pos, ok := t.index[id]
	if !ok {
		return false
	}
	t.rows = append(t.rows[:pos], t.rows[pos+1:]...)
	delete(t.index, id)
	for i := pos; i < len(t.rows); i++ {
		t.index[t.idOf(&t.rows[i])] = i
	}
	return true
}

// removeWhere deletes every row matching pred and returns how many went.
func (t *table[T]) removeWhere(pred func(*T) bool) int {
	kept := t.rows[:0]
	removed := 0
	for i := range t.rows {
		if pred(&t.rows[i]) {
			removed++
			continue
		}
		kept = append(kept, t.rows[i])
	}
	t.rows = kept
	t.reindex()
	return removed
}

func (t *table[T]) reindex() {
	t.index = make(map[int64]int, len(t.rows))
	for i := range t.rows {
		t.index[t.idOf(&t.rows[i])] = i
	}
}

func (t *table[T]) snapshot() []T {
	out := make([]T, len(t.rows))
	for i := range t.rows {
		out[i] = t.copyOf(&t.rows[i])
	}
	return out
}

// load replaces the content with rows. The identity counter never moves
// backwards, even when lastID is lower than an id present in rows.
func (t *table[T]) load(rows []T, lastID int64) {
	t.rows = make([]T, len(rows))
	for i := range rows {
		t.rows[i] = t.copyOf(&rows[i])
	}
	t.reindex()
	t.lastID = lastID
	for i := range t.rows {
		if id := t.idOf(&t.rows[i]); id > t.lastID {
			t.lastID = id
		}
	}
}
