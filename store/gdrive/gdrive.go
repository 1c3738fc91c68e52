// Package gdrive implements the document store session for Google Drive. The
// library is a folder in the drive root and folders are resolved by name.
package gdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
)

const folderMimeType = "application/vnd.google-apps.folder"

type Session struct {
	drive *drive.Service
}

// Connect creates a Drive session from a credentials file. If tokens is not
// empty the credentials file is an OAuth2 client configuration and tokens is
// the file holding the previously authorised user token, otherwise the
// credentials file is a service account key. The session is verified by
// fetching the 'about' resource.
func Connect(ctx context.Context, credentials, tokens string) (*Session, error) {
	fail := func(err error) error {
		return &store.AuthenticationError{Site: "Google Drive", User: credentials, Err: err}
	}

	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, fail(err)
	}

	var opt option.ClientOption
	if tokens != "" {
		config, err := google.ConfigFromJSON(b, drive.DriveScope)
		if err != nil {
			return nil, fail(err)
		}

		token, err := tokenFromFile(tokens)
		if err != nil {
			return nil, fail(err)
		}

		opt = option.WithHTTPClient(config.Client(ctx, token))
	} else {
		creds, err := google.CredentialsFromJSON(ctx, b, drive.DriveScope)
		if err != nil {
			return nil, fail(err)
		}

		opt = option.WithCredentials(creds)
	}

	service, err := drive.NewService(ctx, opt)
	if err != nil {
		return nil, fail(err)
	}

	session := Session{
		drive: service,
	}

	site, err := session.Site(ctx)
	if err != nil {
		return nil, fail(err)
	}

	logging.Infof("Authenticated successfully. Drive user: %s", site.Title)

	return &session, nil
}

func (s *Session) Site(ctx context.Context) (*store.Site, error) {
	about, err := s.drive.About.Get().Fields("user").Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	title := ""
	if about.User != nil {
		title = about.User.DisplayName
	}

	return &store.Site{
		Title: title,
		URL:   "https://drive.google.com",
	}, nil
}

func (s *Session) Download(ctx context.Context, path store.RemotePath, w io.Writer) error {
	folder, err := s.Folder(ctx, path.Library, path.Folder)
	if err != nil {
		return err
	}

	file, err := s.find(ctx, folder.ID, path.File, false)
	if err != nil {
		return err
	} else if file == nil {
		return fmt.Errorf("file '%v' not found", path)
	}

	response, err := s.drive.Files.Get(file.Id).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return err
	}

	defer response.Body.Close()

	if _, err := io.Copy(w, response.Body); err != nil {
		return fmt.Errorf("error reading %v (%w)", path, err)
	}

	return nil
}

// Folder walks the folder chain from the drive root, one name at a time.
func (s *Session) Folder(ctx context.Context, library, folder string) (*store.Folder, error) {
	p := store.RemotePath{Library: library, Folder: folder}
	names := []string{library}
	if folder != "" {
		names = append(names, strings.Split(folder, "/")...)
	}

	parent := "root"
	name := ""
	for _, n := range names {
		f, err := s.find(ctx, parent, n, true)
		if err != nil {
			return nil, err
		} else if f == nil {
			return nil, fmt.Errorf("folder '%v' not found", p.Dir())
		}

		parent = f.Id
		name = f.Name
	}

	return &store.Folder{
		Name:              name,
		ServerRelativeURL: p.Dir(),
		ID:                parent,
	}, nil
}

// Upload replaces the content of an existing file with the same name or
// creates a new file in the folder.
func (s *Session) Upload(ctx context.Context, folder *store.Folder, name string, r io.Reader) (*store.File, error) {
	existing, err := s.find(ctx, folder.ID, name, false)
	if err != nil {
		return nil, err
	}

	var file *drive.File
	if existing != nil {
		file, err = s.drive.Files.Update(existing.Id, &drive.File{}).
			Media(r).
			Fields("id", "name", "size").
			SupportsAllDrives(true).
			Context(ctx).
			Do()
	} else {
		file, err = s.drive.Files.Create(&drive.File{Name: name, Parents: []string{folder.ID}}).
			Media(r).
			Fields("id", "name", "size").
			SupportsAllDrives(true).
			Context(ctx).
			Do()
	}

	if err != nil {
		return nil, err
	}

	return &store.File{
		Name:              file.Name,
		ServerRelativeURL: folder.ServerRelativeURL + "/" + file.Name,
		Length:            file.Size,
	}, nil
}

func (s *Session) find(ctx context.Context, parent, name string, folder bool) (*drive.File, error) {
	list, err := s.drive.Files.List().
		Q(query(parent, name, folder)).
		Fields("files(id, name, mimeType, size)").
		PageSize(2).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	if len(list.Files) == 0 {
		return nil, nil
	}

	return list.Files[0], nil
}

func query(parent, name string, folder bool) string {
	q := fmt.Sprintf("'%s' in parents and name = '%s' and trashed = false", escape(parent), escape(name))
	if folder {
		q += fmt.Sprintf(" and mimeType = '%s'", folderMimeType)
	} else {
		q += fmt.Sprintf(" and mimeType != '%s'", folderMimeType)
	}

	return q
}

func escape(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := oauth2.Token{}
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

// Config returns the OAuth2 client configuration held in a credentials file,
// for authorising a user token.
func Config(credentials string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	return google.ConfigFromJSON(b, drive.DriveScope)
}

// SaveToken writes the token to a temporary file alongside file and renames it
// into place.
func SaveToken(file string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(file), ".token-*")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(token); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), file)
}
