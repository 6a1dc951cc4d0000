// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: optional TOML settings file
//   - PromptStore: persona instructions, editable on disk
//   - PromptWatcher: reloads personas when their files change
package file
