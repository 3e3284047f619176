// Package kraken is a small, embeddable task-orchestration kernel: a
// tree of Projects holding Tasks wired together through typed
// Properties, and a Context that resolves a selection of tasks into a
// dependency graph and runs it.
//
// kraken has no opinion about build scripts, configuration languages or
// per-language task libraries; it is the part that stays the same
// underneath all of those. A host program builds a Project/Task tree by
// calling into this package directly (or generates one from whatever
// script format it wants), then calls Context.Finalize and
// Context.Execute.
package kraken
