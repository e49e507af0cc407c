// Package model holds the conference data structures every other confwatch
// package works in terms of.
//
// # Conference
//
// Conference represents one listing from the conference directory, with its
// call-for-papers deadline already resolved to a concrete instant:
//
//	conf := model.Conference{
//	    ID:   "gophercon-2026",
//	    Name: "GopherCon",
//	    CFP:  deadline, // a countdown.Deadline
//	}
//	fmt.Println(conf.Year()) // year of the conference, or of its CFP
//
// # Saved conferences
//
// SavedConference is a Conference the user has favorited, stamped with the
// time it was saved:
//
//	saved := model.NewSavedConference(conf, time.Now())
//	fmt.Println(saved.SavedAt)
//
// # Identity
//
// Every conference is identified by an opaque ID, unique within any loaded
// or tracked collection. Records that arrive without one get a derived ID:
//
//	model.DeriveID("Strange Loop", 2026) // "strange-loop-2026"
package model
