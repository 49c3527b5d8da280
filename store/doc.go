// Package store provides the transactional key-value layer the registration
// engine runs on.
//
// The contract is a narrow slice of DynamoDB: items addressed by a composite
// partition/sort key, single-item conditional writes, atomic multi-item
// transactions, and ordered prefix queries. Two implementations exist:
//
//   - [Dynamo] backed by a real DynamoDB table (single-table layout with one
//     global secondary index)
//   - [Memory] an in-process implementation with the same conditional-write
//     and transaction semantics, used by tests and local development
//
// Conditions are tagged values ([IfNotExists], [IfExists], [IfVersion])
// rather than raw expression strings, so both implementations can evaluate
// them natively. A failed transaction surfaces a [*TransactionCanceledError]
// whose per-item cancellation reasons mirror DynamoDB's, letting callers
// attribute the failure to a specific write.
package store
