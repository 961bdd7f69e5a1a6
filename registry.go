package pdu4go

// ParserFunc interprets a payload byte range as one protocol layer.
// Implementations must copy any bytes they retain: the buffer is
// borrowed for the duration of the call only.
type ParserFunc func(buffer []byte) (PDU, error)

var payloadParsers = map[ProtoTag]ParserFunc{}

// RegisterParser binds a payload interpreter to an IP protocol
// number. Transport layers (TCP, UDP, ICMP, ...) register themselves
// here so the IP layer can dispatch on its protocol field. Register
// during init; the table is not guarded for concurrent mutation.
func RegisterParser(tag ProtoTag, fn ParserFunc) {
	payloadParsers[tag] = fn
}

// parsePayload interprets buffer as a PDU of the given protocol tag.
// Nested IP payloads are handled in place; anything else without a
// registered interpreter falls back to an opaque RawPDU.
func parsePayload(tag ProtoTag, buffer []byte) (PDU, error) {
	if fn, exist := payloadParsers[tag]; exist {
		return fn(buffer)
	}

	if tag == TagIPIP {
		return IPFromBytes(buffer)
	}

	return NewRawPDUWithTag(tag, buffer), nil
}
