package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/introspection"
)

// dump renders a message object as an indented field listing.
func dump(acc codec.Accessor[uint32], m *codec.CompiledMessage, addr uint32) (string, error) {
	var b strings.Builder
	if err := dumpMessage(&b, acc, m, addr, ""); err != nil {
		return "", err
	}
	return b.String(), nil
}

func dumpMessage(b *strings.Builder, acc codec.Accessor[uint32], m *codec.CompiledMessage, addr uint32, indent string) error {
	for i := range m.Fields {
		f := &m.Fields[i]
		p := acc.Field(addr, f.Offset)

		n, base := 1, p
		switch f.Shape.Kind {
		case introspection.ShapeFixedArray:
			n = int(f.Shape.N)
		case introspection.ShapeBoundedSequence, introspection.ShapeUnboundedSequence:
			size, err := acc.SequenceLen(p, f)
			if err != nil {
				return err
			}
			if base, err = acc.SequenceData(p, f); err != nil {
				return err
			}
			n = size
		}

		if f.Kind == codec.KindMessage {
			if f.Shape.Kind == introspection.ShapeScalar {
				fmt.Fprintf(b, "%s%s:\n", indent, f.Name)
				if err := dumpMessage(b, acc, f.Message, p, indent+"  "); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintf(b, "%s%s: %d elements\n", indent, f.Name, n)
			for j := 0; j < n; j++ {
				fmt.Fprintf(b, "%s%s[%d]:\n", indent, f.Name, j)
				if err := dumpMessage(b, acc, f.Message, acc.Index(base, j, f.ElemSize), indent+"  "); err != nil {
					return err
				}
			}
			continue
		}

		if f.Shape.Kind == introspection.ShapeScalar {
			v, err := formatValue(acc, f, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(b, "%s%s: %s\n", indent, f.Name, v)
			continue
		}

		values := make([]string, n)
		for j := range values {
			v, err := formatValue(acc, f, acc.Index(base, j, f.ElemSize))
			if err != nil {
				return err
			}
			values[j] = v
		}
		fmt.Fprintf(b, "%s%s: [%s]\n", indent, f.Name, strings.Join(values, ", "))
	}
	return nil
}

func formatValue(acc codec.Accessor[uint32], f *codec.CompiledField, p uint32) (string, error) {
	switch f.Kind {
	case codec.KindBool:
		v, err := acc.Load8(p)
		return strconv.FormatBool(v != 0), err
	case codec.KindChar:
		v, err := acc.Load8(p)
		return strconv.QuoteRuneToASCII(rune(v)), err
	case codec.KindByte, codec.KindUint8:
		v, err := acc.Load8(p)
		return strconv.FormatUint(uint64(v), 10), err
	case codec.KindInt8:
		v, err := acc.Load8(p)
		return strconv.FormatInt(int64(int8(v)), 10), err
	case codec.KindUint16:
		v, err := acc.Load16(p)
		return strconv.FormatUint(uint64(v), 10), err
	case codec.KindInt16:
		v, err := acc.Load16(p)
		return strconv.FormatInt(int64(int16(v)), 10), err
	case codec.KindUint32:
		v, err := acc.Load32(p)
		return strconv.FormatUint(uint64(v), 10), err
	case codec.KindInt32:
		v, err := acc.Load32(p)
		return strconv.FormatInt(int64(int32(v)), 10), err
	case codec.KindUint64:
		v, err := acc.Load64(p)
		return strconv.FormatUint(v, 10), err
	case codec.KindInt64:
		v, err := acc.Load64(p)
		return strconv.FormatInt(int64(v), 10), err
	case codec.KindFloat32:
		v, err := acc.Load32(p)
		return strconv.FormatFloat(float64(math.Float32frombits(v)), 'g', -1, 32), err
	case codec.KindFloat64:
		v, err := acc.Load64(p)
		return strconv.FormatFloat(math.Float64frombits(v), 'g', -1, 64), err
	case codec.KindString:
		v, err := acc.LoadString(p)
		return strconv.Quote(v), err
	default:
		return "", fmt.Errorf("%s: cannot format %s", f.Name, f.Kind)
	}
}
