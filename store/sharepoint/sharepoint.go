// Package sharepoint implements the document store session for SharePoint
// Online sites using the SharePoint REST API.
package sharepoint

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/logging"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
)

// Session is an authenticated SharePoint site connection.
type Session struct {
	site   *url.URL
	client *http.Client
}

// Connect authenticates against the site and verifies the session by fetching
// the site metadata before returning it. Any failure is returned as a
// *store.AuthenticationError.
func Connect(ctx context.Context, credentials store.Credentials, siteURL string, opts ...Option) (*Session, error) {
	fail := func(err error) error {
		return &store.AuthenticationError{Site: siteURL, User: credentials.Username, Err: err}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	site, err := url.Parse(strings.TrimSuffix(strings.TrimSpace(siteURL), "/"))
	if err != nil {
		return nil, fail(err)
	} else if site.Scheme == "" || site.Host == "" {
		return nil, fail(fmt.Errorf("invalid site URL - expected something like 'https://tenant.sharepoint.com/Teams/site'"))
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fail(err)
	}

	base := o.client
	if base == nil {
		base = &http.Client{Timeout: o.timeout}
	}

	endpoint := microsoft.AzureADEndpoint(o.tenant)
	if o.tokenURL != "" {
		endpoint.TokenURL = o.tokenURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	config := oauth2.Config{
		ClientID: o.clientID,
		Endpoint: endpoint,
		Scopes:   []string{fmt.Sprintf("%s://%s/.default", site.Scheme, site.Host)},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)

	token, err := config.PasswordCredentialsToken(ctx, credentials.Username, credentials.Password)
	if err != nil {
		return nil, fail(err)
	}

	client := config.Client(ctx, token)
	client.Jar = jar
	client.Timeout = base.Timeout

	session := Session{
		site:   site,
		client: client,
	}

	info, err := session.Site(ctx)
	if err != nil {
		return nil, fail(err)
	}

	logging.Infof("Authenticated successfully. Site Title: %s", info.Title)

	return &session, nil
}

func (s *Session) Site(ctx context.Context) (*store.Site, error) {
	var reply struct {
		Title string `json:"Title"`
		URL   string `json:"Url"`
	}

	if err := s.getJSON(ctx, "_api/web?$select=Title,Url", &reply); err != nil {
		return nil, err
	}

	return &store.Site{
		Title: reply.Title,
		URL:   reply.URL,
	}, nil
}

func (s *Session) Download(ctx context.Context, path store.RemotePath, w io.Writer) error {
	endpoint := fmt.Sprintf("_api/web/GetFileByServerRelativePath(decodedurl=%s)/$value", literal(s.serverRelative(path.String())))

	response, err := s.do(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return err
	}

	defer response.Body.Close()

	if _, err := io.Copy(w, response.Body); err != nil {
		return fmt.Errorf("error reading %v (%w)", path, err)
	}

	return nil
}

func (s *Session) Folder(ctx context.Context, library, folder string) (*store.Folder, error) {
	p := store.RemotePath{Library: library, Folder: folder}
	endpoint := fmt.Sprintf("_api/web/GetFolderByServerRelativePath(decodedurl=%s)?$select=Exists,Name,ServerRelativeUrl,UniqueId", literal(s.serverRelative(p.Dir())))

	var reply struct {
		Exists            bool   `json:"Exists"`
		Name              string `json:"Name"`
		ServerRelativeURL string `json:"ServerRelativeUrl"`
		UniqueID          string `json:"UniqueId"`
	}

	if err := s.getJSON(ctx, endpoint, &reply); err != nil {
		return nil, err
	}

	if !reply.Exists {
		return nil, &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("folder '%v' does not exist", p.Dir())}
	}

	return &store.Folder{
		Name:              reply.Name,
		ServerRelativeURL: reply.ServerRelativeURL,
		ID:                reply.UniqueID,
	}, nil
}

func (s *Session) Upload(ctx context.Context, folder *store.Folder, name string, r io.Reader) (*store.File, error) {
	endpoint := fmt.Sprintf("_api/web/GetFolderByServerRelativePath(decodedurl=%s)/Files/AddUsingPath(decodedurl=%s,overwrite=true)",
		literal(folder.ServerRelativeURL),
		literal(name))

	response, err := s.do(ctx, http.MethodPost, endpoint, "application/octet-stream", r)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	var reply struct {
		Name              string `json:"Name"`
		ServerRelativeURL string `json:"ServerRelativeUrl"`
		Length            string `json:"Length"`
	}

	if err := decode(response, &reply); err != nil {
		return nil, err
	}

	length, _ := strconv.ParseInt(reply.Length, 10, 64)

	return &store.File{
		Name:              reply.Name,
		ServerRelativeURL: reply.ServerRelativeURL,
		Length:            length,
	}, nil
}

func (s *Session) serverRelative(path string) string {
	return strings.TrimSuffix(s.site.Path, "/") + "/" + path
}
