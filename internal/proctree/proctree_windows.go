//go:build windows

package proctree

import (
	"os/exec"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

func prepareOS(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}

// processJob is a Win32 Job Object configured with KILL_ON_JOB_CLOSE so the
// entire process tree (including grandchildren spawned by cmd.exe/ComSpec)
// dies when the job handle is closed or Terminate is called, ported from the
// original Rust FFI wrapper of the same name.
type processJob struct {
	handle windows.Handle
}

func assignProcessJob(pid int) (*processJob, bool) {
	job, err := windows.CreateJobObject(nil, nil)
	if err != nil || job == 0 {
		return nil, false
	}

	info := windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION{
		BasicLimitInformation: windows.JOBOBJECT_BASIC_LIMIT_INFORMATION{
			LimitFlags: windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE,
		},
	}
	_, err = windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	)
	if err != nil {
		windows.CloseHandle(job)
		return nil, false
	}

	proc, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil || proc == 0 {
		windows.CloseHandle(job)
		return nil, false
	}
	defer windows.CloseHandle(proc)

	if err := windows.AssignProcessToJobObject(job, proc); err != nil {
		windows.CloseHandle(job)
		return nil, false
	}

	return &processJob{handle: job}, true
}

func (j *processJob) terminate() {
	_ = windows.TerminateJobObject(j.handle, 1)
}

func (j *processJob) close() {
	if j.handle != 0 {
		_ = windows.CloseHandle(j.handle)
		j.handle = 0
	}
}

type windowsKiller struct {
	job *processJob
	cmd *exec.Cmd
}

func newOS(cmd *exec.Cmd) (Killer, bool) {
	if cmd.Process == nil {
		return &windowsKiller{cmd: cmd}, false
	}
	job, ok := assignProcessJob(cmd.Process.Pid)
	if !ok {
		return &windowsKiller{cmd: cmd}, false
	}
	return &windowsKiller{job: job, cmd: cmd}, true
}

func (k *windowsKiller) Terminate() {
	if k.job != nil {
		k.job.terminate()
		return
	}
	if k.cmd != nil && k.cmd.Process != nil {
		_ = k.cmd.Process.Kill()
	}
}

func (k *windowsKiller) Close() {
	if k.job != nil {
		k.job.close()
	}
}
