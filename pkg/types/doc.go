// Package types defines the Store interface, the entity types of the show
// catalog (shows, seasons, episodes, lists, list items, movies, activity and
// jobs), the column and table names shared by every layer, and the sentinel
// errors callers match with errors.Is.
//
// Paths name resources the way a content URI does: "shows", "shows/42",
// "episodes/ofseason/7/withshow". The sqlite backend resolves them to tables
// and joins; callers never see SQL table names beyond the column constants
// declared here.
package types
