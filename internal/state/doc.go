// Package state provides thread-safe state shared between the background
// poller and the UI.
//
// # Overview
//
// The poller writes one Data value per successful poll; the UI reads
// Snapshots on its own tick. The Store sits between them:
//
//	poller: client.Me / AllAssets / ListLoans / AllUsers
//	          ↓
//	        store.Update(data, err)      (write lock)
//	          ↓
//	UI:     store.Snapshot()             (read lock, defensive copy)
//
// # Update Semantics
//
// A failed poll keeps the previous data and records the error, so the UI
// keeps showing the last good collections while flagging the failure:
//
//	store.Update(state.Data{}, err)
//	→ data unchanged, LastError = err, ConsecutiveFailures++
//
// Two consecutive failures mark the snapshot offline.
//
// A failed reauthentication is different: MarkSessionExpired drops every
// collection and sets SessionExpired, which sends the UI to the login view.
// MarkLoggedOut does the same without the expiry flag.
//
// # Derived Views
//
// Snapshot carries small helpers the views share: Dashboard for the
// headline counts and the five most recently requested loans, AssetNames
// and Usernames for resolving ids in the loans table, and AssetCounts for
// the asset stat cards.
//
// The zero Store is ready to use.
package state
