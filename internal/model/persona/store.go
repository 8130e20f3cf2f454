package persona

// Store exposes persona retrieval for routing and HTTP handlers.
type Store interface {
	List() []Persona
	FindByID(id ID) (Persona, bool)
	Default() Persona
}

// MemoryStore implements Store with the in-memory seed list. Personas are
// fixed at process start, so a slice copy on read is all the isolation needed.
type MemoryStore struct {
	items []Persona
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied personas.
func NewMemoryStore(items []Persona) *MemoryStore {
	return &MemoryStore{items: append([]Persona(nil), items...)}
}

// List returns the predefined persona list in seed order.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id ID) (Persona, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Persona{}, false
}

// Default returns the persona that wins routing ties.
func (s *MemoryStore) Default() Persona {
	if p, ok := s.FindByID(DefaultID); ok {
		return p
	}
	// Seed always contains the default; an empty store is a programming error.
	return Persona{ID: DefaultID}
}
