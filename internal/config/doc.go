// Package config loads intercept.cue, the optional CLI configuration file.
//
// The file is plain CUE. It is unified with an embedded schema that closes
// the set of fields, constrains their values and supplies defaults, then
// decoded into Config. A missing file means every default applies.
//
//	log_level:   "debug"
//	format:      "json"
//	db:          "runs.db"
//	golden_dir:  "golden"
//	parallel:    4
//	fatal_codes: ["INVOKED_MORE_THAN_ONCE"]
package config
