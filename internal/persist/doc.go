// Package persist binds in-memory state to a durable record.
//
// A Store rehydrates from storage when it is created, applies mutations in
// memory, and writes the whole state back through a debounce so a burst of
// mutations costs one write:
//
//	s := persist.New("app-settings", defaultSettings, adapter)
//	s.Update(func(st *Settings) { st.Theme = "dark" })
//	defer s.Close()
//
// Storage failures never surface to callers. Memory stays authoritative and
// the next successful write catches storage up.
package persist
