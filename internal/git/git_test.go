package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiff(t *testing.T) {
	diff := `diff --git a/a.go b/a.go
index 1111111..2222222 100644
--- a/a.go
+++ b/a.go
@@ -3 +3,2 @@ func f() {
-	x := 1
+	x := 2
+	y := x
@@ -10,2 +11,0 @@ func g() {
-	a()
-	b()
diff --git a/gone.go b/gone.go
deleted file mode 100644
index 3333333..0000000
--- a/gone.go
+++ /dev/null
@@ -1,3 +0,0 @@
-package gone
-
-var v = 1
diff --git a/dir/new.go b/dir/new.go
new file mode 100644
index 0000000..4444444
--- /dev/null
+++ b/dir/new.go
@@ -0,0 +1 @@
+package dir
`
	changes, err := parseDiff([]byte(diff))
	require.NoError(t, err)
	assert.Equal(t, []ChangedFile{
		{Path: "a.go", ChangedLines: []int{3, 4}},
		{Path: "dir/new.go", ChangedLines: []int{1}},
	}, changes)
}

func TestParseDiff_Malformed(t *testing.T) {
	_, err := parseDiff([]byte("diff --git a/a.go b/a.go\n--- a/a.go\n+++ b/a.go\n@@ -x +y @@\n+z\n"))
	assert.ErrorContains(t, err, "failed to parse diff")
}

func TestChangedFiles(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(), "GIT_AUTHOR_NAME=t", "GIT_AUTHOR_EMAIL=t@x", "GIT_COMMITTER_NAME=t", "GIT_COMMITTER_EMAIL=t@x")
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	write := func(name, body string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	run("init", "-q")
	write("a.go", "package a\n\nvar x = 1\n")
	write("b.go", "package a\n")
	run("add", ".")
	run("commit", "-q", "-m", "init")

	write("a.go", "package a\n\nvar x = 2\n")

	ctx := context.Background()
	changes, err := ChangedFiles(ctx, dir, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []ChangedFile{{Path: "a.go", ChangedLines: []int{3}}}, changes)

	top, err := TopLevel(ctx, dir)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, top)

	_, err = ChangedFiles(ctx, dir, "no-such-ref")
	assert.Error(t, err)
}
