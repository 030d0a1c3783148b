// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - ArchiveStore: Archive catalog and extraction persistence
//   - SearchIndex: Full-text matching over blocks, fields, attachments and annotations
//   - IndexMaintainer: Index consistency checks and rebuilds
//   - AnnotationStore: Annotation persistence
//   - BlobStore: Stored archive bytes
//   - Segmenter: Word segmentation for the tokenizer
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
