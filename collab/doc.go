// Package collab provides the outbound call policy shared by all collaborator
// invocations plus in-memory collaborator implementations.
//
// The real REST adapters that translate collaborator calls into specific
// telecom API formats live outside this repository; the implementations here
// are volatile process-local stand-ins suited for development, examples and
// tests. The Caller wraps any collaborator call with the mesh-wide resilience
// policy: a bounded per-attempt timeout and fixed-delay retries applied only
// to transient failures.
package collab
