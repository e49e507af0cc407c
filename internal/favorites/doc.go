// Package favorites tracks the conferences a user has saved.
//
// # Manager
//
// Manager owns the saved-conferences record set. Every mutation persists
// through the store before returning, then notifies count observers:
//
//	fav := favorites.NewManager(st)
//	fav.OnChange(func(count int) { badge.SetCount(count) })
//
//	fav.Add(conf)          // idempotent by conference ID
//	fav.Remove(conf.ID)    // no-op when absent
//	fav.IsSaved(conf.ID)   // false now
//
// Saving is snapshot semantics: the record keeps the conference fields as
// they were at save time, and re-adding refreshes them without resetting
// the SavedAt stamp.
package favorites
