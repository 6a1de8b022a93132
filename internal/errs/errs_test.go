package errs

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	should := require.New(t)
	should.Equal(ExitOK, ExitCode(nil))
	should.Equal(ExitCancelled, ExitCode(errors.Wrap(context.Canceled, "search")))
	should.Equal(ExitAbnormal, ExitCode(ErrNoInput))
	should.Equal(ExitAbnormal, ExitCode(errors.Wrap(&CollisionError{Path: "out.fq"}, "search")))
	should.Equal(ExitFatal, ExitCode(Config("--repeat-threshold must be > 0")))
	should.Equal(ExitFatal, ExitCode(&ToolError{Cmd: []string{"bwt-search"}, ExitCode: 3}))
	should.Equal(ExitFatal, ExitCode(Integrity("short read")))
}

func TestClassifiersSeeThroughWrapping(t *testing.T) {
	should := require.New(t)
	should.True(IsIntegrity(errors.Wrap(Integrity("x"), "extract")))
	should.True(IsConfig(errors.Wrapf(Config("x"), "mode %s", "search")))
	should.True(IsTool(errors.Wrap(&ToolError{Cmd: []string{"a"}}, "extend")))
	should.True(IsLayout(errors.Wrap(&LayoutError{Record: 3}, "resolve")))
	should.False(IsTool(Integrity("x")))
}

func TestToolErrorMessage(t *testing.T) {
	e := &ToolError{Cmd: []string{"bwt-extend", "idx", "hits.txt"}, ExitCode: 2, Stderr: "  boom\n"}
	require.Equal(t, "external tool failed: bwt-extend idx hits.txt (exit 2): boom", e.Error())
}
