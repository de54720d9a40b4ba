// Package codec decodes and encodes the flat JSON payloads exchanged on the
// alarm topics.
//
// Decoding favours availability over strictness. Decode never fails: a
// payload that is not a JSON object becomes a passthrough whose structured
// fields are all absent, and the Event and State accessors then return the
// raw payload text itself. Delay returns -1 when the field is absent or
// unusable. Only ParseStrict, DecodeCommand and ParseSensorKind report a
// DecodeError.
package codec
