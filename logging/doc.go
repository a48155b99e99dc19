// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer MeshLogger with contextual
// helpers (component, subject, emergency) and domain specific logging helpers
// for agent runs, collaborator calls and emergency lifecycle transitions.
package logging
