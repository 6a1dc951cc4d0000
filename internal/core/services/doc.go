// Package services implements the driving ports on top of the driven ports.
//
// The retrieval and grounded-answer pipeline is split into small pieces that
// are composed by SearchService and AskService:
//
//	query -> Retriever -> []Match -> Render -> (context, []TaggedMatch) -> Answerer -> answer
//
// IngestService runs the batch side: RecordSource -> Normalize -> chunker ->
// EmbeddingService -> VectorIndex.
package services
