// Package event keeps the in-memory event catalog shown by the dashboard and
// event pages.
//
// A Catalog starts from the built-in mock events or from a YAML seed file
// (Config.SeedFile) and publishes the full list after every change through a
// replay-latest subject. Nothing is persisted: a restart returns to the seed.
package event
