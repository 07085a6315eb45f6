// Package wirecodec is a schema-driven object codec: records, tagged unions
// and primitives mapped to and from self-describing encodings (JSON, YAML,
// CBOR, MessagePack, BSON) through one small cursor interface.
//
//   - Decoder / MapCursor / SeqCursor / VariantCursor are the capabilities every
//     format driver exposes (see source/...).
//   - Record and UnionCodec hold the per-type logic generated bindings share.
//   - NewStrictDecoder wraps any Decoder so that unknown record fields are
//     rejected at every depth; lenient decoding uses the decoder as is.
//   - Errors are typed (MissingFieldError, UnknownFieldError, InvalidUnionError,
//     TypeMismatchError) and render to Issues with JSON Pointer paths.
//
// Design policy:
//   - Keep only public APIs in the root package; put detailed implementations under internal/.
//   - One package per wire format under source/, the schema model under schema/,
//     and the CLI under cmd/wirecodec.
//
// Typical usage:
//
//	var v MyRecord // implements Unmarshaler
//	err := wirecodec.Unmarshal(json.Format, data, wirecodec.DecodeOpt{Mode: wirecodec.Strict}, &v)
//	out, err := wirecodec.Marshal(cbor.Format, v)
package wirecodec
