package cmdrun

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("需要 sh")
	}
	out, errOut, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo bonjour; echo oups 1>&2")
	require.NoError(t, err)
	assert.Equal(t, "bonjour\n", string(out))
	assert.Equal(t, "oups\n", string(errOut))

	_, _, err = ExecRunner{}.Run(context.Background(), "sh", "-c", "exit 3")
	assert.Error(t, err)
}
