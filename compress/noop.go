package compress

// NoOpCodec implements UNCOMPRESSED: it passes data through unmodified.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

func (NoOpCodec) Compress(data []byte) ([]byte, error) { return data, nil }

func (NoOpCodec) Decompress(data []byte, _ int) ([]byte, error) { return data, nil }
