// Package grid defines the core data model for the collaborative grid:
// cells addressed as ColumnID+RowNumber, typed columns, the aggregate
// sheet state, and the action vocabulary consumed by the state reducer.
//
// All types here are plain data. Behavior (reduction, evaluation,
// persistence, sync) lives in the packages that consume them.
package grid
