package snapshot

import "github.com/vmihailenco/msgpack/v5"

// MsgpackCodec encodes/decodes snapshots as MessagePack.
type MsgpackCodec struct{}

func (c *MsgpackCodec) Encode(snap *Snapshot) ([]byte, error) {
	return msgpack.Marshal(snap)
}

func (c *MsgpackCodec) Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *MsgpackCodec) Name() string { return CodecNameMsgpack }
