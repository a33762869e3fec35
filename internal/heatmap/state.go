package heatmap

import "github.com/patrickmn/go-cache"

// identity is the transient per-aircraft tuple written by identity
// records and attached to later positions for the same aircraft.
type identity struct {
	flight *string
	squawk *string
}

// aircraftState maps an aircraft's hex identifier to the identity most
// recently seen for it. Entries live for the duration of one file:
// they are written as identity records arrive and carry across frame
// boundaries within the file. A later identity fully replaces the
// earlier tuple.
type aircraftState struct {
	seen *cache.Cache
}

func newAircraftState() *aircraftState {
	return &aircraftState{seen: cache.New(cache.NoExpiration, 0)}
}

func (s *aircraftState) set(hex string, flight, squawk *string) {
	s.seen.Set(hex, identity{flight: flight, squawk: squawk}, cache.NoExpiration)
}

// lookup returns the identity for hex, or nils for an aircraft no
// identity record has named yet.
func (s *aircraftState) lookup(hex string) (flight, squawk *string) {
	v, ok := s.seen.Get(hex)
	if !ok {
		return nil, nil
	}
	id := v.(identity)
	return id.flight, id.squawk
}
