package ingest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	pdflib "github.com/ledongthuc/pdf"

	"policy-chat/config"
	"policy-chat/pkg/logger"
	s3client "policy-chat/pkg/s3"
)

// FetchToLocalTemp materializes an s3:// or local stored path into a
// temporary file and returns it with a cleanup function. PDF parsing needs a
// seekable file, so even local paths are copied.
func FetchToLocalTemp(ctx context.Context, filePath string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "ingest-*.pdf")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	var src io.ReadCloser
	if strings.HasPrefix(filePath, "s3://") {
		u, err := url.Parse(filePath)
		if err != nil {
			tmp.Close()
			cleanup()
			return "", func() {}, err
		}
		cli, err := s3client.GetClient()
		if err != nil {
			tmp.Close()
			cleanup()
			return "", func() {}, err
		}
		out, err := cli.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(u.Host),
			Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
		})
		if err != nil {
			tmp.Close()
			cleanup()
			return "", func() {}, err
		}
		src = out.Body
	} else {
		abs := filePath
		if !filepath.IsAbs(abs) {
			cwd, _ := os.Getwd()
			abs = filepath.Join(cwd, filePath)
		}
		f, err := os.Open(abs)
		if err != nil {
			tmp.Close()
			cleanup()
			return "", func() {}, err
		}
		src = f
	}
	defer src.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", func() {}, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return tmp.Name(), cleanup, nil
}

// ExtractPDFTextPages returns one string per PDF page. Pages that fail to
// decode are kept as empty strings so downstream page numbers stay aligned
// with the source document.
func ExtractPDFTextPages(localPath string) ([]string, error) {
	f, reader, err := pdflib.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	nonEmpty := 0
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"page":  i,
				"error": err,
			}).Warnf("%v: page text extraction failed", config.ModuleIngest)
			pages = append(pages, "")
			continue
		}
		text = sanitizePageText(text)
		if strings.TrimSpace(text) != "" {
			nonEmpty++
		}
		pages = append(pages, text)
	}
	if nonEmpty == 0 {
		return nil, fmt.Errorf("no extractable text in %d pages", numPages)
	}
	return pages, nil
}

// sanitizePageText strips the BOM and non-printable runes while keeping the
// newlines and tabs that paragraph detection relies on.
func sanitizePageText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\uFEFF' || r == unicode.ReplacementChar {
			continue
		}
		if r == '\n' || r == '\t' || r == '\r' {
			b.WriteRune(r)
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
