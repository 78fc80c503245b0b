// -----------------------------------------------------------------------
// Length-delimited binary encoding of the schema messages
//
// Hand-maintained protobuf wire format (google.golang.org/protobuf/
// encoding/protowire). Field numbers in entities.go/deltas.go are the
// contract; unknown fields are skipped on decode so older replicas can
// read newer frames.
// -----------------------------------------------------------------------

package schemas

import (
	"fmt"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendOptString(b []byte, num protowire.Number, v *string) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendOptBool(b []byte, num protowire.Number, v *bool) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	var u uint64
	if *v {
		u = 1
	}
	return protowire.AppendVarint(b, u)
}

func appendInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(uint32(v)))
}

func appendOptInt32(b []byte, num protowire.Number, v *int32) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(uint32(*v)))
}

func appendUint32(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendFloat64(b []byte, num protowire.Number, v float64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendOptFloat64(b []byte, num protowire.Number, v *float64) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(*v))
}

func appendStrings(b []byte, num protowire.Number, vs []string) []byte {
	for _, v := range vs {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}
	return b
}

func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

// Map entries are encoded as {1: key, 2: value} submessages in sorted key
// order so equal maps produce byte-equal frames.

func appendStringMap(b []byte, num protowire.Number, m map[string]string) []byte {
	for _, k := range sortedKeys(m) {
		var entry []byte
		entry = appendString(entry, 1, k)
		entry = appendString(entry, 2, m[k])
		b = appendMessage(b, num, entry)
	}
	return b
}

func appendInt32Map(b []byte, num protowire.Number, m map[string]int32) []byte {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var entry []byte
		entry = appendString(entry, 1, k)
		// Zero values are significant: they clean up pruned counts.
		entry = protowire.AppendTag(entry, 2, protowire.VarintType)
		entry = protowire.AppendVarint(entry, uint64(uint32(m[k])))
		b = appendMessage(b, num, entry)
	}
	return b
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// decoder walks a wire-format buffer field by field.
type decoder struct {
	b   []byte
	err error
}

func (d *decoder) next() (protowire.Number, protowire.Type, bool) {
	if d.err != nil || len(d.b) == 0 {
		return 0, 0, false
	}
	num, typ, n := protowire.ConsumeTag(d.b)
	if n < 0 {
		d.err = fmt.Errorf("invalid field tag: %w", protowire.ParseError(n))
		return 0, 0, false
	}
	d.b = d.b[n:]
	return num, typ, true
}

func (d *decoder) skip(num protowire.Number, typ protowire.Type) {
	if d.err != nil {
		return
	}
	n := protowire.ConsumeFieldValue(num, typ, d.b)
	if n < 0 {
		d.err = fmt.Errorf("invalid field %d: %w", num, protowire.ParseError(n))
		return
	}
	d.b = d.b[n:]
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n := protowire.ConsumeString(d.b)
	if n < 0 {
		d.err = fmt.Errorf("invalid string field: %w", protowire.ParseError(n))
		return ""
	}
	d.b = d.b[n:]
	return v
}

func (d *decoder) bytes() []byte {
	if d.err != nil {
		return nil
	}
	v, n := protowire.ConsumeBytes(d.b)
	if n < 0 {
		d.err = fmt.Errorf("invalid bytes field: %w", protowire.ParseError(n))
		return nil
	}
	d.b = d.b[n:]
	return v
}

func (d *decoder) varint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := protowire.ConsumeVarint(d.b)
	if n < 0 {
		d.err = fmt.Errorf("invalid varint field: %w", protowire.ParseError(n))
		return 0
	}
	d.b = d.b[n:]
	return v
}

func (d *decoder) bool() bool     { return d.varint() != 0 }
func (d *decoder) int32() int32   { return int32(uint32(d.varint())) }
func (d *decoder) uint32() uint32 { return uint32(d.varint()) }

func (d *decoder) float64() float64 {
	if d.err != nil {
		return 0
	}
	v, n := protowire.ConsumeFixed64(d.b)
	if n < 0 {
		d.err = fmt.Errorf("invalid fixed64 field: %w", protowire.ParseError(n))
		return 0
	}
	d.b = d.b[n:]
	return math.Float64frombits(v)
}

// stringMapEntry decodes a {1: key, 2: value-string} map entry.
func stringMapEntry(body []byte) (string, string, error) {
	d := &decoder{b: body}
	var k, v string
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			k = d.string()
		case 2:
			v = d.string()
		default:
			d.skip(num, typ)
		}
	}
	return k, v, d.err
}

// int32MapEntry decodes a {1: key, 2: value-varint} map entry.
func int32MapEntry(body []byte) (string, int32, error) {
	d := &decoder{b: body}
	var k string
	var v int32
	for {
		num, typ, ok := d.next()
		if !ok {
			break
		}
		switch num {
		case 1:
			k = d.string()
		case 2:
			v = d.int32()
		default:
			d.skip(num, typ)
		}
	}
	return k, v, d.err
}
