package zone

// Handle addresses a zone record in an Arena. The zero value is NoHandle.
type Handle uint32

// NoHandle never refers to a zone.
const NoHandle Handle = 0

type record struct {
	zone  *Zone
	alive bool
}

// Arena owns zone records. Handles stay stable for the arena's lifetime and
// slots of destroyed zones are never reused.
type Arena struct {
	records []record
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Add stores z and returns its handle.
func (a *Arena) Add(z *Zone) Handle {
	a.records = append(a.records, record{zone: z, alive: z != nil})
	return Handle(len(a.records))
}

// Get returns the zone behind h if it is still alive.
func (a *Arena) Get(h Handle) (*Zone, bool) {
	r, ok := a.lookup(h)
	if !ok || !r.alive {
		return nil, false
	}
	return r.zone, true
}

// Alive reports whether h refers to a live zone.
func (a *Arena) Alive(h Handle) bool {
	_, ok := a.Get(h)
	return ok
}

// Destroy marks the zone behind h as gone. Destroying twice is a no-op.
// It returns false for handles the arena never issued.
func (a *Arena) Destroy(h Handle) bool {
	if _, ok := a.lookup(h); !ok {
		return false
	}
	a.records[h-1].alive = false
	return true
}

// Len returns the number of issued handles, including destroyed ones.
func (a *Arena) Len() int {
	return len(a.records)
}

// Handles returns every live handle in insertion order.
func (a *Arena) Handles() []Handle {
	out := make([]Handle, 0, len(a.records))
	for i, r := range a.records {
		if r.alive {
			out = append(out, Handle(i+1))
		}
	}
	return out
}

func (a *Arena) lookup(h Handle) (record, bool) {
	if h == NoHandle || int(h) > len(a.records) {
		return record{}, false
	}
	return a.records[h-1], true
}
