//go:build !windows

// Package stderr captures output that C audio libraries (ALSA, oto) write
// directly to file descriptor 2, bypassing os.Stderr, and forwards it to
// the log so it cannot corrupt the TUI.
package stderr

import (
	"os"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"
)

var (
	mu         sync.Mutex
	origStderr = -1
	pipeRead   *os.File
	pipeWrite  *os.File
	forwarding sync.WaitGroup
)

// Start redirects fd 2 into log. It must run before the audio backend is
// initialized. On error the program can continue with stderr untouched.
func Start(log logrus.FieldLogger) error {
	mu.Lock()
	defer mu.Unlock()
	if origStderr >= 0 {
		return nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}
	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return err
	}

	origStderr = orig
	pipeRead, pipeWrite = r, w
	forwarding.Add(1)
	go func() {
		defer forwarding.Done()
		forward(r, log)
	}()
	return nil
}

// WriteOriginal writes directly to the original stderr, bypassing capture.
func WriteOriginal(msg string) {
	mu.Lock()
	fd := origStderr
	mu.Unlock()
	if fd < 0 {
		_, _ = os.Stderr.WriteString(msg)
		return
	}
	_, _ = syscall.Write(fd, []byte(msg))
}

// Stop restores the original stderr and drains what was captured.
func Stop() {
	mu.Lock()
	defer mu.Unlock()
	if origStderr < 0 {
		return
	}

	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = syscall.Close(origStderr)
	origStderr = -1

	// fd 2 no longer refers to the pipe, so closing the write end ends the
	// forwarder once it has read the remaining lines.
	pipeWrite.Close()
	forwarding.Wait()
	pipeRead.Close()
}
