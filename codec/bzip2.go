package codec

import (
	"bytes"
	"fmt"

	"github.com/dsnet/compress/bzip2"
)

// bzip2Level is fixed at 1 so every stream starts with "BZh1".
const bzip2Level = 1

type bzip2Codec struct{}

// Bzip2 returns the default archive codec: bzip2 with 100k blocks.
func Bzip2() Codec {
	return bzip2Codec{}
}

func (bzip2Codec) Name() string {
	return "bzip2"
}

func (bzip2Codec) Magic() [MagicSize]byte {
	return [MagicSize]byte{'B', 'Z', 'h', '0' + bzip2Level}
}

func (c bzip2Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2Level})
	if err != nil {
		return nil, fmt.Errorf("create bzip2 writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, fmt.Errorf("bzip2 compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("bzip2 compress: %w", err)
	}
	return stripMagic(c.Name(), c.Magic(), buf.Bytes())
}

func (c bzip2Codec) Decompress(body []byte, size int) ([]byte, error) {
	zr, err := bzip2.NewReader(withMagic(c.Magic(), body), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer zr.Close()
	return readExact(zr, size)
}
