// Package config defines configuration for the modular CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (MODULAR_ prefix)
//   - YAML configuration file (default ~/.config/modular/config.yaml)
//
// Credentials such as the NexusMods API key live here and are threaded
// explicitly into the clients that build authenticated requests; nothing in
// the repository reads them from ambient global state.
package config
