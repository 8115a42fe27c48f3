// Package proctree terminates an entire child process tree, including
// grandchildren spawned by a shell wrapper, on both Unix and Windows.
package proctree

import "os/exec"

// Killer terminates a process tree rooted at a *exec.Cmd that has already
// been started with the SysProcAttr this package's Prepare function
// installed. Construction never fails outright: a platform that cannot set
// up tree-kill primitives (Job Object creation failed, etc.) returns a
// Killer that falls back to killing the direct child only, and the caller
// should log that degradation.
type Killer interface {
	// Terminate kills the process tree. Safe to call multiple times.
	Terminate()
	// Close releases any OS resources held by the killer (e.g. a Windows
	// Job Object handle). Safe to call multiple times.
	Close()
}

// Prepare configures cmd so that, once started, New can build a Killer for
// its process tree. Call before cmd.Start().
func Prepare(cmd *exec.Cmd) {
	prepareOS(cmd)
}

// New returns a Killer for the already-started cmd. strong reports whether
// a true process-tree kill primitive (process group signal or Windows Job
// Object) was established; when false, Terminate only reaches the direct
// child and callers should log a warning.
func New(cmd *exec.Cmd) (k Killer, strong bool) {
	return newOS(cmd)
}
