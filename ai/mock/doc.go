// Package mock provides deterministic test doubles for the ai service
// interfaces. The mock embedder derives stable pseudo-random vectors from
// text hashes, the mock reranker scores by token overlap, and all doubles
// count their invocations so tests can assert cache behavior.
package mock
