// Package directory loads conference records from the directory site's
// YAML data files.
//
// Records arrive from an external pipeline and are treated as untrusted:
// every field except the name is optional, dates come in several shapes,
// deadlines may be missing, misspelled or carry unloadable timezones. The
// loader coerces what it can, keeps degraded records in an explicit error
// state, and reports everything it had to work around:
//
//	result, err := directory.Load(ctx, "/data/conferences")
//	if err != nil {
//	    // the path itself was unusable
//	}
//	for _, w := range result.Warnings {
//	    fmt.Println("warning:", w)
//	}
//	board.SetConferences(result.Conferences)
//
// A directory loads every *.yml and *.yaml file directly inside it,
// concurrently, merging in file-name order. Duplicate conference IDs keep
// the first record seen.
package directory
