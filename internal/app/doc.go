// Package app is the composition root for assetdesk.
//
// # Overview
//
// Setup loads configuration, opens the log file and the session database,
// and builds the API client. Run then starts the background poller and the
// TUI. The one-shot subcommands (login, logout, whoami, check-overdue) use
// Setup directly and talk to the client without a poller or UI.
//
//	Run()
//	  ├─> config.Load()        file + ASSETDESK_* env
//	  ├─> logging.Open()       <data_dir>/assetdesk.log
//	  ├─> session.Open()       <data_dir>/session.db
//	  ├─> api.NewClient()
//	  ├─> refresh()            fill the store before the first frame
//	  ├─> StartPoller()
//	  └─> ui.Run()             blocks until quit
//
// # Polling Behavior
//
// Each poll fetches the current user, every asset, the loans visible to the
// user and (for admins) every user, in parallel. A 403 on users only marks
// the snapshot so the Users view can say so. Other failures keep the
// previous data and back off: the wait doubles per consecutive failure up
// to 30 seconds.
//
// Without a stored session the poller does nothing. When reauthentication
// fails the store is marked session-expired and stays that way until the
// user logs in again. The UI can call Trigger after a mutation or login to
// poll immediately.
package app
