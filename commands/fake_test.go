package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/handover"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/store"
	"github.com/opgaveflyt/opgaveflyt-dispatcher/workbook"
)

// site is an in-memory document library keyed by '{library}/{folder}'.
type site struct {
	folders map[string]map[string][]byte
}

func newSite(folders ...string) *site {
	s := site{
		folders: map[string]map[string][]byte{},
	}

	for _, f := range folders {
		s.folders[f] = map[string][]byte{}
	}

	return &s
}

func (s *site) Site(ctx context.Context) (*store.Site, error) {
	return &store.Site{Title: "tea-teamsite10149", URL: "https://example.sharepoint.com/Teams/tea-teamsite10149"}, nil
}

func (s *site) Download(ctx context.Context, path store.RemotePath, w io.Writer) error {
	if files, ok := s.folders[path.Dir()]; ok {
		if b, ok := files[path.File]; ok {
			_, err := w.Write(b)
			return err
		}
	}

	return fmt.Errorf("404 file not found: %v", path)
}

func (s *site) Folder(ctx context.Context, library, folder string) (*store.Folder, error) {
	key := library
	if folder != "" {
		key = library + "/" + folder
	}

	if _, ok := s.folders[key]; !ok {
		return nil, fmt.Errorf("404 folder not found: %v", key)
	}

	return &store.Folder{Name: key, ServerRelativeURL: "/Teams/tea-teamsite10149/" + key}, nil
}

func (s *site) Upload(ctx context.Context, folder *store.Folder, name string, r io.Reader) (*store.File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	s.folders[folder.Name][name] = b

	return &store.File{
		Name:              name,
		ServerRelativeURL: folder.ServerRelativeURL + "/" + name,
		Length:            int64(len(b)),
	}, nil
}

// handovers builds a hand-over workbook with the given data rows.
func handovers(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", workbook.Sheet); err != nil {
		t.Fatalf("%v", err)
	}

	header := []any{}
	for _, c := range handover.Columns {
		header = append(header, c)
	}

	if err := f.SetSheetRow(workbook.Sheet, "A1", &header); err != nil {
		t.Fatalf("%v", err)
	}

	for i, row := range rows {
		if err := f.SetSheetRow(workbook.Sheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			t.Fatalf("%v", err)
		}
	}

	var b bytes.Buffer
	if _, err := f.WriteTo(&b); err != nil {
		t.Fatalf("%v", err)
	}

	return b.Bytes()
}
