// Package cmdrun 封裝外部指令的執行，方便測試時替換。
package cmdrun

import (
	"bytes"
	"context"
	"os/exec"
)

// Runner 執行外部指令並回傳 stdout/stderr
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// ExecRunner 以 os/exec 執行指令
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
