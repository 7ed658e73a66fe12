// Package engine provides the FreeCell rule engine.
//
// The engine package owns the authoritative game state and implements:
//   - The 52-card deck, seeded Fisher–Yates shuffle, and the 7/7/7/7/6/6/6/6 deal
//   - Run detection within a tableau column
//   - Single-card and sequence move legality, including free-cell capacity
//   - Move execution with a bounded undo history
//   - Win detection and a one-step foundation hint
//   - Preset loading and validation (JSON or TOML)
//
// Core Types:
//
// The Engine interface defines the contract for game operations, implemented
// by GameEngine. A Board holds the tableau, free cells, and foundations and can
// only be mutated by the engine. GameState is a read-only copy used by the
// service, API, and transports to render a game.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("configs", "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sel, ok := gameEngine.SelectRun(engine.Tableau(0), 6)
//	if ok {
//		outcome := gameEngine.AttemptMove(sel, engine.FreeCell(0))
//		fmt.Println(outcome.Accepted, outcome.Reason)
//	}
//
// Game Rules:
//
// Cards are built down the tableau in alternating colors and up the
// foundations by suit from Ace to King. A run of several cards may move
// between columns when it fits within (1 + empty free cells) * 2^(empty
// columns). The game is won when all 52 cards reach the foundations.
package engine
