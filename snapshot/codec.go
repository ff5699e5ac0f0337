package snapshot

// Codec defines the serialization contract for snapshots.
type Codec interface {
	// Encode serializes a snapshot to bytes.
	Encode(snap *Snapshot) ([]byte, error)

	// Decode deserializes bytes into a snapshot.
	Decode(data []byte) (*Snapshot, error)

	// Name returns the codec identifier (e.g., "json", "msgpack").
	Name() string
}

// CodecName constants for format negotiation.
const (
	CodecNameJSON    = "json"
	CodecNameMsgpack = "msgpack"
)

// GetCodec returns a codec by name. Defaults to JSON.
func GetCodec(name string) Codec {
	switch name {
	case CodecNameMsgpack:
		return &MsgpackCodec{}
	case CodecNameJSON, "":
		return &JSONCodec{}
	default:
		return &JSONCodec{}
	}
}
