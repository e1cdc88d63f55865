package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

type ChangedFile struct {
	Path         string
	ChangedLines []int
}

// ChangedFiles runs git diff against baseRef inside dir and returns the
// changed files with their added or modified line numbers. Paths are
// relative to the repository root.
func ChangedFiles(ctx context.Context, dir, baseRef string) ([]ChangedFile, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "diff", "-U0", "--no-color", "--no-ext-diff", baseRef)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return parseDiff(output)
}

// TopLevel returns the root of the repository containing dir.
func TopLevel(ctx context.Context, dir string) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func parseDiff(output []byte) ([]ChangedFile, error) {
	fileDiffs, err := diff.ParseMultiFileDiff(output)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	changes := make([]ChangedFile, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		// A deleted file has no new-side path.
		if fd.NewName == "/dev/null" {
			continue
		}
		file := ChangedFile{Path: strings.TrimPrefix(fd.NewName, "b/"), ChangedLines: []int{}}
		for _, hunk := range fd.Hunks {
			// NewLines 0 is a pure deletion; the file still counts as changed.
			for i := int32(0); i < hunk.NewLines; i++ {
				file.ChangedLines = append(file.ChangedLines, int(hunk.NewStartLine+i))
			}
		}
		changes = append(changes, file)
	}
	return changes, nil
}
