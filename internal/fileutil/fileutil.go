package fileutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockPollInterval = 50 * time.Millisecond

// WriteAtomic streams r into a temporary file beside path and renames it into
// place. On any failure the temporary file is removed and path is untouched.
func WriteAtomic(path string, r io.Reader, perm os.FileMode) (int64, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("rename temp file: %w", err)
	}
	return written, nil
}

// LockPath acquires an exclusive advisory lock guarding target. Lock files
// live in lockDir, named by a digest of target, and are left in place after
// release so waiters never race on a recreated inode. The returned function
// releases the lock.
func LockPath(ctx context.Context, lockDir, target string) (func(), error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(target)))
	lock := flock.New(filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock"))

	locked, err := lock.TryLockContext(ctx, lockPollInterval)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", target, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: not acquired", target)
	}
	return func() { _ = lock.Unlock() }, nil
}
