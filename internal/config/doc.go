// Package config loads the wikilog site configuration.
//
// The configuration is a CUE document checked against an embedded schema
// (schema.cue). Files are read through an afero.Fs so tests can use an
// in-memory filesystem. NewViper resolves the config file and database
// locations from flags, WIKILOG_* environment variables and .env files.
//
//	enable_tags: true
//	namespaces: {Blog: 100}
//	database: "/var/lib/wikilog/wiki.db"
package config
