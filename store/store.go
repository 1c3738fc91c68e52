// Package store defines the remote document store used to fetch and replace
// the hand-over workbook, and the slash-delimited paths that address it.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrInvalidPath = errors.New("invalid remote path")

// Credentials for a document store user account.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) String() string {
	return fmt.Sprintf("%s:********", c.Username)
}

// Session is an authenticated connection to a document store site. A session
// is created once per run and passed to every transfer.
type Session interface {
	// Site fetches the site metadata.
	Site(ctx context.Context) (*Site, error)

	// Download writes the content of the remote file to w.
	Download(ctx context.Context, path RemotePath, w io.Writer) error

	// Folder loads the folder metadata, failing if the folder does not exist.
	Folder(ctx context.Context, library, folder string) (*Folder, error)

	// Upload writes the content of r to the folder as 'name', replacing any
	// existing file with the same name.
	Upload(ctx context.Context, folder *Folder, name string, r io.Reader) (*File, error)
}

type Site struct {
	Title string
	URL   string
}

type Folder struct {
	Name              string
	ServerRelativeURL string
	ID                string
}

type File struct {
	Name              string
	ServerRelativeURL string
	Length            int64
}

// RemotePath is a resolved '{library}/{folder...}/{file}' path. Folder is empty
// for files in the library root.
type RemotePath struct {
	Library string
	Folder  string
	File    string
}

// Resolve splits a file path into library, folder and file name. The first
// segment is always the library and the last segment always the file name.
func Resolve(path string) (RemotePath, error) {
	segments, err := split(path)
	if err != nil {
		return RemotePath{}, err
	}

	if len(segments) < 2 {
		return RemotePath{}, fmt.Errorf("%w: '%s' - expected something like 'Library/Folder/File.xlsx'", ErrInvalidPath, path)
	}

	return RemotePath{
		Library: segments[0],
		Folder:  strings.Join(segments[1:len(segments)-1], "/"),
		File:    segments[len(segments)-1],
	}, nil
}

// ResolveFolder splits a folder path into library and folder. A path with a
// single segment is the library root. Trailing '/' separators are ignored.
func ResolveFolder(path string) (RemotePath, error) {
	segments, err := split(strings.TrimRight(path, "/"))
	if err != nil {
		return RemotePath{}, err
	}

	return RemotePath{
		Library: segments[0],
		Folder:  strings.Join(segments[1:], "/"),
	}, nil
}

// Dir returns the library and folder joined by '/'.
func (p RemotePath) Dir() string {
	if p.Folder == "" {
		return p.Library
	}

	return p.Library + "/" + p.Folder
}

func (p RemotePath) String() string {
	if p.File == "" {
		return p.Dir()
	}

	return p.Dir() + "/" + p.File
}

func split(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}

	segments := strings.Split(path, "/")
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: '%s' contains an empty segment", ErrInvalidPath, path)
		}
	}

	return segments, nil
}
