/*
Package ports defines the driven ports (interfaces) used around the observation engine.

These interfaces decouple change tracking from its storage, so the same recorder can write
to memory or to Redis.

# Key Interfaces

  - Journal: Append-only log of committed writes, replayable onto an object.
*/
package ports
