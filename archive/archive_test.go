package archive

import (
	"bytes"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	chunks := [][]byte{
		{0x61, 0x5D},
		{0x17, 0x00},
		{},
		{0xFF, 0xFF, 0xAB, 0xCD},
	}
	var buf bytes.Buffer
	if err := Write(&buf, chunks, 2, 3); err != nil {
		t.Fatalf("Write: %v", err)
	}

	gotChunks, kPieces, originalLength, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if kPieces != 2 {
		t.Fatalf("kPieces = %d, want 2", kPieces)
	}
	if originalLength != 3 {
		t.Fatalf("originalLength = %d, want 3", originalLength)
	}
	if len(gotChunks) != len(chunks) {
		t.Fatalf("got %d chunks, want %d", len(gotChunks), len(chunks))
	}
	for i := range chunks {
		if !bytes.Equal(gotChunks[i], chunks[i]) {
			t.Fatalf("chunk %d = %x, want %x", i, gotChunks[i], chunks[i])
		}
	}
}

func TestReadTruncatedHeader(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x01, 0x02})
	if _, _, _, err := Read(buf); err == nil {
		t.Fatal("expected error on truncated header")
	}
}

func TestEmptyChunkSet(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, 0, 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	chunks, kPieces, originalLength, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(chunks) != 0 || kPieces != 0 || originalLength != 0 {
		t.Fatalf("unexpected result: %v %d %d", chunks, kPieces, originalLength)
	}
}
