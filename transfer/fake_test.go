package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

type fakeSession struct {
	files   map[string][]byte
	folders map[string]bool
	err     error
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		files:   map[string][]byte{},
		folders: map[string]bool{},
	}
}

func (s *fakeSession) Site(ctx context.Context) (*store.Site, error) {
	return &store.Site{Title: "fake"}, nil
}

func (s *fakeSession) Download(ctx context.Context, path store.RemotePath, w io.Writer) error {
	if s.err != nil {
		return s.err
	}

	b, ok := s.files[path.String()]
	if !ok {
		return fmt.Errorf("file not found")
	}

	_, err := io.Copy(w, bytes.NewReader(b))

	return err
}

func (s *fakeSession) Folder(ctx context.Context, library, folder string) (*store.Folder, error) {
	p := store.RemotePath{Library: library, Folder: folder}
	if !s.folders[p.Dir()] {
		return nil, fmt.Errorf("folder '%v' not found", p.Dir())
	}

	return &store.Folder{Name: folder, ServerRelativeURL: "/sites/team/" + p.Dir()}, nil
}

func (s *fakeSession) Upload(ctx context.Context, folder *store.Folder, name string, r io.Reader) (*store.File, error) {
	if s.err != nil {
		return nil, s.err
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s.files[folder.ServerRelativeURL+"/"+name] = b

	return &store.File{Name: name, ServerRelativeURL: folder.ServerRelativeURL + "/" + name, Length: int64(len(b))}, nil
}

type fakeLogger struct {
	messages []string
}

func (l *fakeLogger) LogInfo(ctx context.Context, message string) error {
	l.messages = append(l.messages, message)
	return nil
}
