package sharepoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
)

const accept = "application/json;odata=nometadata"

// Error is a non-2xx reply from the SharePoint REST API.
type Error struct {
	Status  int
	Code    string
	Message string
	URL     string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("sharepoint: %d %s (%s)", e.Status, e.Message, e.Code)
	}

	return fmt.Sprintf("sharepoint: %d %s", e.Status, e.Message)
}

// IsNotFound returns true if err is a SharePoint 404 reply.
func IsNotFound(err error) bool {
	var e *Error

	return errors.As(err, &e) && e.Status == http.StatusNotFound
}

func (s *Session) getJSON(ctx context.Context, endpoint string, reply any) error {
	response, err := s.do(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return err
	}

	defer response.Body.Close()

	return decode(response, reply)
}

func (s *Session) do(ctx context.Context, method, endpoint, contentType string, body io.Reader) (*http.Response, error) {
	uri := strings.TrimSuffix(s.site.String(), "/") + "/" + endpoint

	rq, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, err
	}

	// http.NewRequest only sizes in-memory bodies, so files would otherwise be
	// sent chunked.
	if f, ok := body.(interface{ Stat() (fs.FileInfo, error) }); ok {
		if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
			rq.ContentLength = info.Size()
			if info.Size() == 0 {
				rq.Body = http.NoBody
			}
		}
	}

	rq.Header.Set("Accept", accept)
	if contentType != "" {
		rq.Header.Set("Content-Type", contentType)
	}

	response, err := s.client.Do(rq)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		defer response.Body.Close()

		return nil, replyError(response)
	}

	return response, nil
}

func decode(response *http.Response, reply any) error {
	if err := json.NewDecoder(response.Body).Decode(reply); err != nil {
		return fmt.Errorf("invalid reply from %v (%w)", response.Request.URL.Path, err)
	}

	return nil
}

func replyError(response *http.Response) error {
	type odata struct {
		Code    string `json:"code"`
		Message struct {
			Value string `json:"value"`
		} `json:"message"`
	}

	var reply struct {
		OData   *odata `json:"odata.error"`
		Verbose *odata `json:"error"`
	}

	e := Error{
		Status:  response.StatusCode,
		Message: http.StatusText(response.StatusCode),
	}

	if response.Request != nil {
		e.URL = response.Request.URL.String()
	}

	b, _ := io.ReadAll(io.LimitReader(response.Body, 64*1024))
	if err := json.Unmarshal(b, &reply); err == nil {
		for _, v := range []*odata{reply.OData, reply.Verbose} {
			if v != nil {
				e.Code = v.Code
				if v.Message.Value != "" {
					e.Message = v.Message.Value
				}
				break
			}
		}
	}

	return &e
}

// literal formats a server relative path as a quoted OData string literal,
// percent-encoding each path segment.
func literal(path string) string {
	segments := strings.Split(strings.ReplaceAll(path, "'", "''"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return "'" + strings.Join(segments, "/") + "'"
}
