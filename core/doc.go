// Package core provides the foundational domain types, interfaces and execution
// contexts used by QoSMesh. It defines the core abstractions for:
//
//   - Agents (prioritized policy units evaluating subject telemetry)
//   - Telemetry snapshots (point-in-time location / device / connectivity / QoS data)
//   - Execution contexts (per-batch scope shared across an agent batch)
//   - Outcomes and action proposals (immutable per-agent results)
//   - Emergency contexts (tracked critical situations with their own lifecycle)
//   - Collaborator contracts (trust validation, network assessment, orchestration,
//     monitoring) implemented elsewhere
//
// The package intentionally keeps implementation concerns (dispatching, rule
// evaluation, concrete agents, collaborator backends) out of scope, exposing
// small interfaces to enable custom backends and extensions.
package core
