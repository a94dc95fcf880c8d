// Package snapshot stores a dataset as zstd compressed JSON: one header
// line followed by the dataset document.
package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"fdv.tools/internal/catalogs"
)

const (
	Format  = "fdv.dataset"
	Version = 1
	// Ext is the file suffix recognised by dataset loaders.
	Ext = ".json.zst"
)

type Header struct {
	Format    string `json:"format"`
	Version   int    `json:"version"`
	Variant   string `json:"variant"`
	Digest    string `json:"digest"`
	CreatedAt string `json:"created_at"`
}

// IsSnapshotPath reports whether path names a snapshot file.
func IsSnapshotPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), Ext)
}

func WriteDataset(path string, ds *catalogs.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Encode(f, ds); err != nil {
		return err
	}
	return f.Close()
}

func Encode(w io.Writer, ds *catalogs.Dataset) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)

	hb, err := json.Marshal(Header{
		Format:    Format,
		Version:   Version,
		Variant:   ds.Variant(),
		Digest:    ds.Digest(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(ds.Spec()); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

func ReadDataset(path string) (*catalogs.Dataset, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer f.Close()
	ds, h, err := Decode(f)
	if err != nil {
		return nil, h, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return ds, h, nil
}

// Decode validates the dataset and checks it against the header digest.
func Decode(r io.Reader) (*catalogs.Dataset, Header, error) {
	var h Header
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, h, err
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, h, fmt.Errorf("header: %w", err)
	}
	if h.Format != Format || h.Version != Version {
		return nil, h, fmt.Errorf("unsupported snapshot %s v%d", h.Format, h.Version)
	}

	var spec catalogs.Spec
	if err := json.NewDecoder(br).Decode(&spec); err != nil {
		return nil, h, fmt.Errorf("json decode: %w", err)
	}
	ds, err := catalogs.New(spec)
	if err != nil {
		return nil, h, err
	}
	if ds.Digest() != h.Digest {
		return nil, h, fmt.Errorf("digest mismatch: header %s, content %s", h.Digest, ds.Digest())
	}
	return ds, h, nil
}
