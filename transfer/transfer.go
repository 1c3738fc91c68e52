// Package transfer moves the hand-over workbook between the document store and
// the local working directory.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
)

const (
	DefaultInterval = 1 * time.Second
	DefaultTimeout  = 60 * time.Second
)

// Logger receives the upload confirmation in addition to the process log.
type Logger interface {
	LogInfo(ctx context.Context, message string) error
}

// Synchronizer downloads and uploads single files. Downloads are not trusted
// to be visible when the store call returns, so the local file is polled for
// until it exists or the timeout elapses.
type Synchronizer struct {
	dir      string
	mirror   string
	interval time.Duration
	timeout  time.Duration
	clock    Clock
	exists   func(string) bool
	logger   Logger
}

type Option func(*Synchronizer)

// WithDir sets the local directory for transient files. Defaults to the
// current working directory.
func WithDir(dir string) Option {
	return func(s *Synchronizer) {
		s.dir = dir
	}
}

// WithMirror sets the root of the local library mirror. Defaults to the user
// documents directory.
func WithMirror(dir string) Option {
	return func(s *Synchronizer) {
		s.mirror = dir
	}
}

func WithInterval(interval time.Duration) Option {
	return func(s *Synchronizer) {
		s.interval = interval
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *Synchronizer) {
		s.timeout = timeout
	}
}

func WithClock(clock Clock) Option {
	return func(s *Synchronizer) {
		s.clock = clock
	}
}

// WithExists replaces the local file existence check.
func WithExists(exists func(string) bool) Option {
	return func(s *Synchronizer) {
		s.exists = exists
	}
}

func WithLogger(logger Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

func NewSynchronizer(opts ...Option) *Synchronizer {
	s := Synchronizer{
		dir:      ".",
		mirror:   xdg.UserDirs.Documents,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		clock:    SystemClock,
		exists:   exists,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return &s
}

// Download fetches the remote file into the local directory under its own
// base name and returns the local path once the file is visible.
func (s *Synchronizer) Download(ctx context.Context, session store.Session, remotePath string) (string, error) {
	path, err := store.Resolve(remotePath)
	if err != nil {
		return "", err
	}

	if err := s.ensureMirror(path); err != nil {
		return "", err
	}

	local := filepath.Join(s.dir, path.File)
	if err := s.fetch(ctx, session, path, local); err != nil {
		Remove(local)
		return "", err
	}

	if ok, waited := WaitUntil(func() bool { return s.exists(local) }, s.interval, s.timeout, s.clock); !ok {
		Remove(local)
		return "", &TimeoutError{Path: local, Waited: waited}
	}

	logging.Infof("[Ok] file has been downloaded into: %s", local)

	return local, nil
}

// Upload stores the local file in the remote folder under its base name,
// after verifying the folder exists.
func (s *Synchronizer) Upload(ctx context.Context, session store.Session, remoteFolder string, localFile string) (*store.File, error) {
	name := filepath.Base(localFile)
	fail := func(err error) error {
		return &UploadError{Folder: remoteFolder, File: name, Err: err}
	}

	path, err := store.ResolveFolder(remoteFolder)
	if err != nil {
		return nil, fail(err)
	}

	folder, err := session.Folder(ctx, path.Library, path.Folder)
	if err != nil {
		return nil, fail(err)
	}

	f, err := os.Open(localFile)
	if err != nil {
		return nil, fail(err)
	}

	defer f.Close()

	file, err := session.Upload(ctx, folder, name, f)
	if err != nil {
		return nil, fail(err)
	}

	msg := fmt.Sprintf("[Ok] file has been uploaded to: %s", file.ServerRelativeURL)

	logging.Infof("%s", msg)
	if s.logger != nil {
		if err := s.logger.LogInfo(ctx, msg); err != nil {
			logging.Warnf("%v", err)
		}
	}

	return file, nil
}

func (s *Synchronizer) fetch(ctx context.Context, session store.Session, path store.RemotePath, local string) error {
	f, err := os.Create(local)
	if err != nil {
		return err
	}

	if err := session.Download(ctx, path, f); err != nil {
		f.Close()
		return fmt.Errorf("error downloading %v (%w)", path, err)
	}

	return f.Close()
}

// ensureMirror creates the local mirror directory for the remote folder (or
// the library, for files in the library root).
func (s *Synchronizer) ensureMirror(path store.RemotePath) error {
	if s.mirror == "" {
		return nil
	}

	dir := filepath.Join(s.mirror, filepath.FromSlash(path.Library))
	if path.Folder != "" {
		dir = filepath.Join(s.mirror, filepath.FromSlash(path.Folder))
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create mirror directory %s (%w)", dir, err)
	}

	return nil
}

// Remove deletes a transient file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warnf("unable to remove %s (%v)", path, err)
		return err
	}

	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
