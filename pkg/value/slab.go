package value

import "github.com/vinicius-lino-figueiredo/mongory/pkg/arena"

const (
	slabKey      = "mongory/value"
	slabChunkLen = 64
)

// slab is the arena-attached storage for Value nodes. Chunks are
// GC-visible so payload references stay reachable; Reset rewinds and
// clears them so a reused scratch arena retains nothing.
type slab struct {
	chunks [][]Value
	cur    int
	used   int
}

func newValue(a *arena.Arena) *Value {
	s, _ := a.Slab(slabKey).(*slab)
	if s == nil {
		s = &slab{}
		a.Attach(slabKey, s)
	}
	v := s.alloc()
	v.a = a
	return v
}

func (s *slab) alloc() *Value {
	if len(s.chunks) == 0 {
		s.chunks = append(s.chunks, make([]Value, slabChunkLen))
	}
	if s.used == len(s.chunks[s.cur]) {
		s.cur++
		if s.cur == len(s.chunks) {
			s.chunks = append(s.chunks, make([]Value, slabChunkLen))
		}
		s.used = 0
	}
	v := &s.chunks[s.cur][s.used]
	s.used++
	*v = Value{}
	return v
}

// Reset implements [arena.Slab].
func (s *slab) Reset() {
	for i := range s.chunks {
		clear(s.chunks[i])
	}
	s.cur = 0
	s.used = 0
}

// Release implements [arena.Slab].
func (s *slab) Release() {
	s.chunks = nil
	s.cur = 0
	s.used = 0
}
