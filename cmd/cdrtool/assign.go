package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/introspection"
)

// assign sets the field at a dotted path ("header.frame_id", "points[1].x")
// from its text form. Arrays take comma-separated values; a message
// sequence takes an element count and is filled with default elements.
func assign(acc codec.Accessor[uint32], m *codec.CompiledMessage, addr uint32, path, value string) error {
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		name, index, err := splitIndex(seg)
		if err != nil {
			return err
		}
		f := field(m, name)
		if f == nil {
			return fmt.Errorf("%s has no field %q", m.TypeName, name)
		}
		p := acc.Field(addr, f.Offset)
		last := i == len(segments)-1

		if index < 0 {
			if !last {
				if f.Kind != codec.KindMessage || f.Shape.Kind != introspection.ShapeScalar {
					return fmt.Errorf("%s is not a nested message", name)
				}
				m, addr = f.Message, p
				continue
			}
			return setField(acc, f, p, value)
		}

		elem, err := element(acc, f, p, index)
		if err != nil {
			return err
		}
		if last {
			if f.Kind == codec.KindMessage {
				return fmt.Errorf("%s[%d] is a message; assign its fields", name, index)
			}
			return setValue(acc, f, elem, value)
		}
		if f.Kind != codec.KindMessage {
			return fmt.Errorf("%s[%d] is not a nested message", name, index)
		}
		m, addr = f.Message, elem
	}
	return nil
}

func splitIndex(seg string) (string, int, error) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, -1, nil
	}
	if !strings.HasSuffix(seg, "]") {
		return "", 0, fmt.Errorf("bad index in %q", seg)
	}
	i, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil || i < 0 {
		return "", 0, fmt.Errorf("bad index in %q", seg)
	}
	return seg[:open], i, nil
}

func field(m *codec.CompiledMessage, name string) *codec.CompiledField {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i]
		}
	}
	return nil
}

func element(acc codec.Accessor[uint32], f *codec.CompiledField, p uint32, i int) (uint32, error) {
	switch f.Shape.Kind {
	case introspection.ShapeScalar:
		return 0, fmt.Errorf("%s is not an array", f.Name)
	case introspection.ShapeFixedArray:
		if i >= int(f.Shape.N) {
			return 0, fmt.Errorf("%s[%d] out of range (%d)", f.Name, i, f.Shape.N)
		}
		return acc.Index(p, i, f.ElemSize), nil
	default:
		n, err := acc.SequenceLen(p, f)
		if err != nil {
			return 0, err
		}
		if i >= n {
			return 0, fmt.Errorf("%s[%d] out of range (%d); set %s=<count> first", f.Name, i, n, f.Name)
		}
		data, err := acc.SequenceData(p, f)
		if err != nil {
			return 0, err
		}
		return acc.Index(data, i, f.ElemSize), nil
	}
}

func setField(acc codec.Accessor[uint32], f *codec.CompiledField, p uint32, value string) error {
	switch f.Shape.Kind {
	case introspection.ShapeScalar:
		if f.Kind == codec.KindMessage {
			return fmt.Errorf("%s is a message; assign its fields", f.Name)
		}
		return setValue(acc, f, p, value)

	case introspection.ShapeFixedArray:
		if f.Kind == codec.KindMessage {
			return fmt.Errorf("%s is an array of messages; assign %s[i].<field>", f.Name, f.Name)
		}
		values := splitList(value)
		if len(values) != int(f.Shape.N) {
			return fmt.Errorf("%s needs %d values, got %d", f.Name, f.Shape.N, len(values))
		}
		for i, v := range values {
			if err := setValue(acc, f, acc.Index(p, i, f.ElemSize), v); err != nil {
				return err
			}
		}
		return nil

	default:
		if f.Kind == codec.KindMessage {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return fmt.Errorf("%s takes an element count, got %q", f.Name, value)
			}
			data, err := acc.ResizeSequence(p, f, n)
			if err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				if err := acc.InitMessage(acc.Index(data, i, f.ElemSize), f.Message); err != nil {
					return err
				}
			}
			return nil
		}
		values := splitList(value)
		data, err := acc.ResizeSequence(p, f, len(values))
		if err != nil {
			return err
		}
		for i, v := range values {
			if err := setValue(acc, f, acc.Index(data, i, f.ElemSize), v); err != nil {
				return err
			}
		}
		return nil
	}
}

func splitList(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func setValue(acc codec.Accessor[uint32], f *codec.CompiledField, p uint32, value string) error {
	switch f.Kind {
	case codec.KindString:
		return acc.StoreString(p, value)
	case codec.KindBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		var b uint8
		if v {
			b = 1
		}
		return acc.Store8(p, b)
	case codec.KindChar:
		if r := []rune(value); len(r) == 1 && r[0] < 256 {
			return acc.Store8(p, uint8(r[0]))
		}
	case codec.KindFloat32:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		return acc.Store32(p, math.Float32bits(float32(v)))
	case codec.KindFloat64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		return acc.Store64(p, math.Float64bits(v))
	}

	bits, err := parseInt(f.Kind, value)
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	switch f.Kind.Size() {
	case 1:
		return acc.Store8(p, uint8(bits))
	case 2:
		return acc.Store16(p, uint16(bits))
	case 4:
		return acc.Store32(p, uint32(bits))
	default:
		return acc.Store64(p, bits)
	}
}

// parseInt parses an integer of the kind's width and signedness and returns
// its two's complement bits.
func parseInt(k codec.Kind, value string) (uint64, error) {
	bitSize := int(k.Size()) * 8
	switch k {
	case codec.KindInt8, codec.KindInt16, codec.KindInt32, codec.KindInt64:
		v, err := strconv.ParseInt(value, 0, bitSize)
		return uint64(v), err
	case codec.KindByte, codec.KindChar, codec.KindUint8, codec.KindUint16, codec.KindUint32, codec.KindUint64:
		return strconv.ParseUint(value, 0, bitSize)
	default:
		return 0, fmt.Errorf("cannot parse %s from %q", k, value)
	}
}
