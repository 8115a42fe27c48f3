//go:build !windows

package proctree

import (
	"os/exec"
	"syscall"
	"time"
)

func prepareOS(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

type unixKiller struct {
	pgid int
}

func newOS(cmd *exec.Cmd) (Killer, bool) {
	if cmd.Process == nil {
		return &unixKiller{pgid: 0}, false
	}
	return &unixKiller{pgid: cmd.Process.Pid}, true
}

func (k *unixKiller) Terminate() {
	if k.pgid <= 0 {
		return
	}
	_ = syscall.Kill(-k.pgid, syscall.SIGTERM)
	time.Sleep(800 * time.Millisecond)
	_ = syscall.Kill(-k.pgid, syscall.SIGKILL)
}

func (k *unixKiller) Close() {}
