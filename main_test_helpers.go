package main

import (
	"bytes"
	"testing"
)

// cliOutput 保存一次 CLI 执行期间写入 stdOut/stdErr 的内容。
type cliOutput struct {
	out *bytes.Buffer
	err *bytes.Buffer
}

// useBufferWriters 在测试期间把 stdOut/stdErr 换成内存缓冲，结束时恢复。
func useBufferWriters(t *testing.T) cliOutput {
	t.Helper()

	captured := cliOutput{out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	prevOut, prevErr := stdOut, stdErr
	stdOut, stdErr = captured.out, captured.err

	t.Cleanup(func() {
		stdOut, stdErr = prevOut, prevErr
	})
	return captured
}

// runCLI 以全新缓冲执行一次 songcache 命令，返回退出码与 stdout。
func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	captured := useBufferWriters(t)
	code := execute(args)
	if code != exitOK {
		t.Logf("songcache %v exited %d: %s", args, code, captured.err.String())
	}
	return code, captured.out.String()
}

// stdOutBuffer returns the in-use stdout buffer when useBufferWriters is active.
func stdOutBuffer() *bytes.Buffer {
	buf, _ := stdOut.(*bytes.Buffer)
	return buf
}

// stdErrBuffer returns the in-use stderr buffer when useBufferWriters is active.
func stdErrBuffer() *bytes.Buffer {
	buf, _ := stdErr.(*bytes.Buffer)
	return buf
}
