//go:build !windows

package shell

import "syscall"

// the shell leads its own session with the pty as controlling terminal,
// which job control needs
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true, Setctty: true}
}
