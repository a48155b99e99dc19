// Package agent contains the concrete policy units of QoSMesh and the shared
// plumbing they embed. The package focuses on three concerns:
//
//  1. Base identity + failure-isolation plumbing (BaseAgent, Guard)
//  2. Routine telemetry agents (QoS optimization, location verification,
//     device swap, healthcare, smart city, transportation)
//  3. Emergency-facing agents (public safety detection, emergency
//     connectivity delegation to the lifecycle pipeline)
//
// Design principles:
//   - No hidden shared base state: identity lives in an immutable descriptor,
//     the enabled flag lives in the orchestrator's registry
//   - Failures stay local: Execute never lets an error or panic escape; the
//     Guard helper converts both into a failed outcome
//   - Observe-then-return: every side-effecting collaborator call is awaited
//     and its proposal driven to a terminal status before the outcome is
//     assembled, so a returned outcome is never mutated afterwards
package agent
