// Package store implements the local persistence layer: one JSON blob per
// logical key, kept as plain files inside a profile directory.
//
// # Opening
//
// Open never fails. If the directory cannot be created the store degrades to
// session-only memory and Available reports false:
//
//	st := store.Open("/home/user/.local/share/confwatch/store")
//	if !st.Available() {
//	    // persistence is off for this session; reads and writes still work
//	}
//
// # Reading and writing
//
// Values are replaced wholesale on every write; there are no partial updates:
//
//	var saved []model.SavedConference
//	if st.Get("saved-conferences", &saved) {
//	    // key existed and decoded
//	}
//	err := st.Set("saved-conferences", saved)
//
// Unreadable or corrupt blobs behave exactly like absent keys. Writes go
// through a temporary file plus rename, so a crash never leaves a torn blob.
package store
