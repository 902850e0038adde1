package migrate

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultHookTimeout bounds a single post-copy hook invocation
const DefaultHookTimeout = 10 * time.Second

// PostCopyTransform post-processes the descriptor file of a freshly copied
// skill directory. It is only invoked when the descriptor exists.
type PostCopyTransform func(ctx context.Context, descriptorPath string) error

// NoopTransform leaves the copied descriptor untouched.
func NoopTransform(context.Context, string) error {
	return nil
}

// HookTransform runs the executable at path with the descriptor path as its
// only argument. A non-zero exit or a timeout is reported as an error.
func HookTransform(path string, timeout time.Duration) PostCopyTransform {
	if timeout <= 0 {
		timeout = DefaultHookTimeout
	}

	return func(ctx context.Context, descriptorPath string) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, path, descriptorPath)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		cmd.WaitDelay = time.Second

		if err := cmd.Run(); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return errors.Errorf("post-copy hook %s timed out after %s", path, timeout)
			}
			return errors.Wrapf(err, "post-copy hook %s failed: %s", path, strings.TrimSpace(stderr.String()))
		}
		return nil
	}
}
