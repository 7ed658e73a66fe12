// Package config provides preset management for the FreeCell server.
//
// The config package handles:
//   - Loading presets from JSON or TOML files
//   - Preset validation and caching
//   - Default preset selection
//   - Hot reload when preset files change on disk
//
// Preset Format:
//
// A preset names a deal and tunes the session around it:
//
//	{
//	  "name": "Classic",
//	  "description": "Random deal, ten undo steps",
//	  "seed": 0,
//	  "history_limit": 10,
//	  "messages": {"welcome": "...", "victory": "You won in %d moves!"}
//	}
//
// A seed of 0 deals a random game each time; any other seed always deals
// the same layout. The same fields are accepted in TOML with a [messages]
// table. When both name.json and name.toml exist the JSON file is used.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("relaxed")
//
//	// Keep the cache in sync with the directory
//	go manager.Watch(ctx)
//
// The default preset is classic when present, otherwise the first valid
// preset in the directory, otherwise engine.DefaultGameConfig.
package config
