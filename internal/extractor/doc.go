// Package extractor reads an instruction document (.docx) into numbered
// paragraph blocks and pulls the labelled fields out of them: instruction
// number, title, issue date and body content, with the block IDs each
// value came from.
package extractor
