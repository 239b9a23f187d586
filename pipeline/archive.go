package pipeline

import (
	"archive/zip"
	"bytes"
	"sort"
	"time"
)

// FileNames returns the artifact names in lexical order.
func (r *BytesResult) FileNames() []string {
	names := make([]string, 0, len(r.Files))
	for name := range r.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Zip packs the summary, manifest and cohort notes into one archive. Entries
// carry a fixed timestamp so identical runs produce identical bytes.
func (r *BytesResult) Zip() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	epoch := time.Unix(0, 0).UTC()

	for _, name := range r.FileNames() {
		h := &zip.FileHeader{Name: name, Method: zip.Deflate}
		h.SetModTime(epoch)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(r.Files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
