// Package table computes the visible slice of a searchable, sortable,
// paginated table.
//
// Nothing here renders or owns state beyond the values passed in: a view
// keeps a State per table, mutates it through the State methods as the user
// types, clicks or pages, and calls Compute on every render. Compute filters
// by the search term, sorts by the active column and cuts out the current
// page.
//
// Values missing from a row never match a search and always sort last,
// whichever direction is active.
package table
