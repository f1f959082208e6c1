package vectorio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xtaci/ecavail/blob"
	"github.com/xtaci/ecavail/cantor"
	"github.com/xtaci/ecavail/field"
)

func newTestCodec(t *testing.T) *blob.Codec {
	t.Helper()
	tables := field.NewTables()
	idx, err := cantor.NewIndex()
	if err != nil {
		t.Fatalf("cantor.NewIndex: %v", err)
	}
	c, err := blob.NewCodec(2, 1023, tables, idx)
	if err != nil {
		t.Fatalf("blob.NewCodec: %v", err)
	}
	return c
}

func TestSaveLoadRoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	data := []byte{0x61, 0x5D, 0x17}
	chunks, _, _, err := codec.EncodeBlob(data)
	if err != nil {
		t.Fatalf("EncodeBlob: %v", err)
	}
	v := Vector{Data: data, Shards: chunks}

	dir := t.TempDir()
	path := filepath.Join(dir, "ec-tiny.json")
	if err := Save(path, v); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Data) != len(v.Data) {
		t.Fatalf("loaded data length %d, want %d", len(loaded.Data), len(v.Data))
	}
	if err := loaded.Verify(codec); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyDetectsMismatch(t *testing.T) {
	codec := newTestCodec(t)
	data := []byte{0x01, 0x02, 0x03}
	chunks, _, _, err := codec.EncodeBlob(data)
	if err != nil {
		t.Fatalf("EncodeBlob: %v", err)
	}
	tampered := make([][]byte, len(chunks))
	copy(tampered, chunks)
	tampered[2] = []byte{0xFF, 0xFF}

	v := Vector{Data: data, Shards: tampered}
	if err := v.Verify(codec); err == nil {
		t.Fatal("expected Verify to detect tampered shard")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(os.TempDir(), "does-not-exist-ec.json")); err == nil {
		t.Fatal("expected error loading missing file")
	}
}
