/*
Package ports defines the driven ports (interfaces) for the rigmate engine.

These interfaces decouple the orchestrator from external implementations,
allowing it to work with different checkpoint backends, model providers, and
lock managers.

# Key Interfaces

  - CheckpointStore: persists per-thread conversation checkpoints.
  - ChatModel: the synchronous model-binding runnable invoked by assistant nodes.
  - DistributedLocker: coordinates thread access across replicas.
  - UserInfoSource: supplies profile data for the fetch_user_info node.
*/
package ports
