package migrate

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// copyFunc copies the directory tree at src to dst. dst must not exist.
type copyFunc func(src, dst string) error

// dirMode is a copied directory whose mode is restored once its contents exist
type dirMode struct {
	path string
	mode fs.FileMode
}

// copyTree recreates the tree rooted at src under dst, keeping directory
// and file modes. Symlinks inside the tree are recreated, not followed.
func copyTree(src, dst string) error {
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return errors.Wrap(err, "failed to resolve source directory")
	}

	var dirs []dirMode
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(dst, relPath)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			// writable until the contents are copied
			if err := os.Mkdir(destPath, info.Mode().Perm()|0o700); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", relPath)
			}
			dirs = append(dirs, dirMode{path: destPath, mode: info.Mode().Perm()})
			return nil
		case info.Mode()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return errors.Wrapf(err, "failed to read symlink %s", relPath)
			}
			return errors.Wrapf(os.Symlink(link, destPath), "failed to create symlink %s", relPath)
		case info.Mode().IsRegular():
			return errors.Wrapf(copyFile(path, destPath, info.Mode().Perm()), "failed to copy %s", relPath)
		default:
			return errors.Errorf("unsupported file type %s at %s", info.Mode().Type(), relPath)
		}
	})
	if err != nil {
		return err
	}

	// deepest first, so a read-only parent is locked last
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Chmod(dirs[i].path, dirs[i].mode); err != nil {
			return errors.Wrapf(err, "failed to set mode of %s", dirs[i].path)
		}
	}
	return nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
