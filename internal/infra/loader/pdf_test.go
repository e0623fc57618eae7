package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ai-summarizer/pkg/errors"
)

func TestPDFLoaderExtractsPages(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "doc.pdf", buildPDF([]string{"Quarterly revenue grew", "Costs were flat"}))
	text, err := newTestLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Contains(t, text, "Quarterly revenue grew")
	require.Contains(t, text, "Costs were flat")
	require.Less(t, bytes.Index([]byte(text), []byte("Quarterly")), bytes.Index([]byte(text), []byte("Costs")))
}

func TestPDFLoaderFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		path    func(t *testing.T) string
		wantMsg string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.pdf") },
			wantMsg: "failed to open pdf",
		},
		{
			name:    "not a pdf",
			path:    func(t *testing.T) string { return writeFile(t, "notes.pdf", []byte("just some text")) },
			wantMsg: "pdf",
		},
		{
			name:    "no text",
			path:    func(t *testing.T) string { return writeFile(t, "blank.pdf", buildPDF([]string{""})) },
			wantMsg: "no extractable text",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := newTestLoader().Load(context.Background(), tc.path(t))
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, apperrors.CodeLoaderError))
			require.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func newTestLoader() *PDFLoader {
	return NewPDFLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// buildPDF writes an uncompressed PDF with one Helvetica text line per page.
func buildPDF(pages []string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	kids := ""
	for _, line := range pages {
		pageID := len(objects) + 1
		contentID := pageID + 1
		kids += fmt.Sprintf("%d 0 R ", pageID)
		stream := ""
		if line != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", line)
		}
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentID),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}
