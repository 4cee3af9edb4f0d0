// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the insight home directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable answer prompts
//   - LoadEnv: .env loading for API keys and overrides
package file
