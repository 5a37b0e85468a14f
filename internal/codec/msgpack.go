package codec

import "github.com/vmihailenco/msgpack/v5"

func init() {
	Register(msgpackCodec{})
}

// msgpackCodec encodes with the msgpack struct tags and sends binary frames.
type msgpackCodec struct{}

func (msgpackCodec) Name() string { return "msgpack" }

func (msgpackCodec) Binary() bool { return true }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}
