// Package config loads assetdesk's runtime configuration.
//
// # Resolution Order
//
// Each setting is taken from the first source that provides it:
//
//  1. ASSETDESK_* environment variables
//  2. the TOML file (explicit path, else ~/.config/assetdesk/config.toml)
//  3. built-in defaults
//
// A missing config file is not an error, so the console runs out of the box
// against a local API.
//
// # TOML Format
//
//	api_url = "http://localhost:8000/api/v1"
//	data_dir = "~/.local/share/assetdesk"
//	log_level = "info"
//	request_timeout = 10   # seconds
//	poll_interval = 5      # seconds
//	page_size = 10         # 5, 10, 25, 50 or 100
//
// # Environment Variables
//
//   - ASSETDESK_API_URL
//   - ASSETDESK_DATA_DIR
//   - ASSETDESK_LOG_LEVEL
//   - ASSETDESK_REQUEST_TIMEOUT
//   - ASSETDESK_POLL_INTERVAL
//   - ASSETDESK_PAGE_SIZE
//
// # Derived Paths
//
// The session database lives at <data_dir>/session.db and the log file at
// <data_dir>/assetdesk.log. Tilde paths are expanded and relative paths made
// absolute.
package config
