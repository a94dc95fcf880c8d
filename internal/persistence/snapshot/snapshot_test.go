package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fdv.tools/internal/catalogs"
)

func TestWriteReadDataset(t *testing.T) {
	ds, err := catalogs.Load("v0.5")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "v0.5"+Ext)
	require.True(t, IsSnapshotPath(path))
	require.NoError(t, WriteDataset(path, ds))

	got, h, err := ReadDataset(path)
	require.NoError(t, err)
	assert.Equal(t, "v0.5", h.Variant)
	assert.Equal(t, ds.Digest(), h.Digest)
	assert.Equal(t, ds.Digest(), got.Digest())
	if diff := cmp.Diff(ds.Spec(), got.Spec()); diff != "" {
		t.Fatalf("spec mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_RejectsTampering(t *testing.T) {
	ds, err := catalogs.Load(catalogs.DefaultVariant)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, ds))

	// Re-encode with a modified level but the original header.
	dec, err := zstd.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	plain, err := dec.DecodeAll(buf.Bytes(), nil)
	dec.Close()
	require.NoError(t, err)

	nl := bytes.IndexByte(plain, '\n')
	require.Positive(t, nl)
	var spec catalogs.Spec
	require.NoError(t, json.Unmarshal(plain[nl+1:], &spec))
	spec.Races[0].Levels[17][0]++
	body, err := json.Marshal(spec)
	require.NoError(t, err)

	var tampered bytes.Buffer
	enc, err := zstd.NewWriter(&tampered)
	require.NoError(t, err)
	_, err = enc.Write(append(plain[:nl+1:nl+1], body...))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	_, _, err = Decode(&tampered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")
}

func TestReadDataset_NotZstd(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad"+Ext)
	require.NoError(t, os.WriteFile(p, []byte("plain text"), 0o644))
	_, _, err := ReadDataset(p)
	assert.Error(t, err)
}
