// Package emergency implements the stateful lifecycle pipeline that takes a
// detected emergency through trust validation, network assessment, decision,
// guaranteed-connectivity orchestration and continuous monitoring with
// rollback.
//
// The Manager owns emergency contexts: it creates them on detection and
// applies the one-directional status transitions (ACTIVE to RESOLVED or
// CANCELLED, operator action only). The Pipeline advances one ACTIVE
// emergency per tick:
//
//  1. Trust validation (re-run every tick, never cached)
//  2. Network-state assessment at the emergency location
//  3. Decision scoring with both the binary orchestration gate and the
//     three-way advisory classification
//  4. Orchestration of guaranteed connectivity when eligible
//  5. Monitoring with threshold-driven remediation and rollback
//
// A collaborator failure halts only the current tick's stage; the emergency
// stays ACTIVE and is retried on the next tick. No partial state survives a
// failed stage.
package emergency
