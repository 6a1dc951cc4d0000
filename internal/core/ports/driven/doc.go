// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - RecordSource: Lists rows of a table (Airtable)
//   - EmbeddingService: Turns text into fixed-length vectors (Bedrock, OpenAI, Ollama)
//   - VectorStore / VectorIndex: Index administration and similarity search (Pinecone, SQLite, memory)
//   - LLMService: Single-shot generation (Anthropic, OpenAI, Ollama)
//   - PromptStore: Persona instructions
//   - ConfigStore: Optional configuration file
//
// All of them are required for ask; search does not need an LLMService and
// index administration only needs a VectorStore.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
