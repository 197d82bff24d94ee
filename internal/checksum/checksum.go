// Package checksum computes the BLAKE3 digests recorded for build artefacts.
package checksum

import (
	"encoding/hex"
	"io"
	"os"

	"lukechampine.com/blake3"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
)

// Size is the digest length in bytes.
const Size = 32

// Bytes returns the hex digest of b.
func Bytes(b []byte) string {
	h := blake3.New(Size, nil)
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil))
}

// Reader returns the hex digest of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := blake3.New(Size, nil)
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File returns the hex digest of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", apkerr.IO("checksum", path, err)
	}
	defer f.Close()

	sum, err := Reader(f)
	if err != nil {
		return "", apkerr.IO("checksum", path, err)
	}
	return sum, nil
}
