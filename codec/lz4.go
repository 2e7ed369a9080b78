package codec

import (
	"bytes"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

type lz4Codec struct{}

// LZ4 returns a codec using the LZ4 frame format.
func LZ4() Codec {
	return lz4Codec{}
}

func (lz4Codec) Name() string {
	return "lz4"
}

func (lz4Codec) Magic() [MagicSize]byte {
	return [MagicSize]byte{0x04, 0x22, 0x4d, 0x18}
}

func (c lz4Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return stripMagic(c.Name(), c.Magic(), buf.Bytes())
}

func (c lz4Codec) Decompress(body []byte, size int) ([]byte, error) {
	return readExact(lz4.NewReader(withMagic(c.Magic(), body)), size)
}
