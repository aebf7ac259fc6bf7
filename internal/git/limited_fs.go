package git

import (
	"errors"
	"os"
	"sync/atomic"

	"github.com/go-git/go-billy/v5"
)

var (
	// ErrTooManyFiles is returned when a clone tries to create more files
	// than the filesystem quota allows.
	ErrTooManyFiles = errors.New("too many files in repository")

	// ErrRepositoryTooLarge is returned when a clone exceeds the total
	// size quota of the filesystem.
	ErrRepositoryTooLarge = errors.New("repository too large")
)

// LimitedFs wraps a billy.Filesystem and enforces quotas on the number of
// files and the total bytes written. Cloning untrusted remotes into memory
// needs a bound on how much they can allocate.
type LimitedFs struct {
	Fs            billy.Filesystem
	MaxFiles      int64
	TotalFileSize int64

	fileCount int64
	totalSize int64
}

var _ billy.Filesystem = (*LimitedFs)(nil)

func (f *LimitedFs) newFile() error {
	if atomic.AddInt64(&f.fileCount, 1) > f.MaxFiles {
		return ErrTooManyFiles
	}
	return nil
}

func (f *LimitedFs) grow(n int64) error {
	if atomic.AddInt64(&f.totalSize, n) > f.TotalFileSize {
		return ErrRepositoryTooLarge
	}
	return nil
}

// Create implements billy.Basic.
func (f *LimitedFs) Create(filename string) (billy.File, error) {
	if err := f.newFile(); err != nil {
		return nil, err
	}
	file, err := f.Fs.Create(filename)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: file, fs: f}, nil
}

// Open implements billy.Basic.
func (f *LimitedFs) Open(filename string) (billy.File, error) {
	file, err := f.Fs.Open(filename)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: file, fs: f}, nil
}

// OpenFile implements billy.Basic.
func (f *LimitedFs) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&os.O_CREATE != 0 {
		if err := f.newFile(); err != nil {
			return nil, err
		}
	}
	file, err := f.Fs.OpenFile(filename, flag, perm)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: file, fs: f}, nil
}

// Stat implements billy.Basic.
func (f *LimitedFs) Stat(filename string) (os.FileInfo, error) { return f.Fs.Stat(filename) }

// Rename implements billy.Basic.
func (f *LimitedFs) Rename(oldpath, newpath string) error { return f.Fs.Rename(oldpath, newpath) }

// Remove implements billy.Basic.
func (f *LimitedFs) Remove(filename string) error { return f.Fs.Remove(filename) }

// Join implements billy.Basic.
func (f *LimitedFs) Join(elem ...string) string { return f.Fs.Join(elem...) }

// TempFile implements billy.TempFile.
func (f *LimitedFs) TempFile(dir, prefix string) (billy.File, error) {
	if err := f.newFile(); err != nil {
		return nil, err
	}
	file, err := f.Fs.TempFile(dir, prefix)
	if err != nil {
		return nil, err
	}
	return &limitedFile{File: file, fs: f}, nil
}

// ReadDir implements billy.Dir.
func (f *LimitedFs) ReadDir(path string) ([]os.FileInfo, error) { return f.Fs.ReadDir(path) }

// MkdirAll implements billy.Dir.
func (f *LimitedFs) MkdirAll(filename string, perm os.FileMode) error {
	// Directory entries count towards the file quota too.
	if err := f.newFile(); err != nil {
		return err
	}
	return f.Fs.MkdirAll(filename, perm)
}

// Lstat implements billy.Symlink.
func (f *LimitedFs) Lstat(filename string) (os.FileInfo, error) { return f.Fs.Lstat(filename) }

// Symlink implements billy.Symlink.
func (f *LimitedFs) Symlink(target, link string) error {
	if err := f.newFile(); err != nil {
		return err
	}
	return f.Fs.Symlink(target, link)
}

// Readlink implements billy.Symlink.
func (f *LimitedFs) Readlink(link string) (string, error) { return f.Fs.Readlink(link) }

// Chroot implements billy.Chroot. The chrooted filesystem shares quotas
// with its parent.
func (f *LimitedFs) Chroot(path string) (billy.Filesystem, error) {
	fs, err := f.Fs.Chroot(path)
	if err != nil {
		return nil, err
	}
	return &LimitedFs{Fs: fs, MaxFiles: f.MaxFiles, TotalFileSize: f.TotalFileSize}, nil
}

// Root implements billy.Chroot.
func (f *LimitedFs) Root() string { return f.Fs.Root() }

// limitedFile counts written bytes against the owning filesystem's quota.
type limitedFile struct {
	billy.File
	fs *LimitedFs
}

func (f *limitedFile) Write(p []byte) (int, error) {
	if err := f.fs.grow(int64(len(p))); err != nil {
		return 0, err
	}
	return f.File.Write(p)
}
