// Package store provides the shared remote store for sheets: three
// SQLite collections (cells, columns, archived_rows) scoped by sheet ID,
// plus the per-sheet change-notification hub that delivers every
// committed write to subscribed sync coordinators.
//
// The store implements last-write-wins at the row level: upserts
// overwrite unconditionally and whichever write lands last is what every
// client converges to. There is no locking and no merge.
package store
