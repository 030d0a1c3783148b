// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on the domain, the ports and the pure Go
// tokenizer, extractor and ziparchive packages. The import service owns
// the single worker goroutine every import and re-extraction runs on.
package services
