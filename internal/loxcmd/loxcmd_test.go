package loxcmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/loxvm/internal/loxcmd"
	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func runMain(t *testing.T, args []string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	c := loxcmd.Cmd{}
	stdio := mainer.Stdio{Stdin: bytes.NewReader(nil), Stdout: &out, Stderr: &errOut}
	ec := c.Main(append([]string{"lox"}, args...), stdio)
	return out.String(), errOut.String(), int(ec)
}

func TestRunFileOK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.lox")
	require.NoError(t, os.WriteFile(path, []byte("print 1 + 2 * 3;"), 0o600))

	out, _, code := runMain(t, []string{path})
	require.Equal(t, 0, code)
	require.Equal(t, "7\n", out)
}

func TestRunFileRuntimeError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "err.lox")
	require.NoError(t, os.WriteFile(path, []byte("var x; print x + 1;"), 0o600))

	_, errOut, code := runMain(t, []string{path})
	require.Equal(t, 70, code)
	require.Contains(t, errOut, "Operands must be numbers.")
}

func TestRunFileCompileError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.lox")
	require.NoError(t, os.WriteFile(path, []byte("var ;"), 0o600))

	_, _, code := runMain(t, []string{path})
	require.Equal(t, 65, code)
}

func TestRunFileMissing(t *testing.T) {
	_, _, code := runMain(t, []string{filepath.Join(t.TempDir(), "missing.lox")})
	require.Equal(t, 74, code)
}

func TestUsageError(t *testing.T) {
	_, stderr, code := runMain(t, []string{"a.lox", "b.lox"})
	require.Equal(t, 64, code)
	require.Contains(t, stderr, "Usage:")
}
