package main

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/cstyle"
	"github.com/wippyai/rmw-cdr/internal/witmap"
	"github.com/wippyai/rmw-cdr/introspection"
	"github.com/wippyai/rmw-cdr/linmem"
	"github.com/wippyai/rmw-cdr/typesupport"
)

// session holds one compiled type and a linear memory its objects live in.
type session struct {
	ts     *typesupport.MessageTypeSupport[uint32]
	buf    *linmem.Buffer
	blocks *linmem.Tracker
	acc    *cstyle.Accessor
	schema *introspection.MessageMembers
	logger *zap.Logger
}

func newSession(mm *introspection.MessageMembers, opts typesupport.Options, logger *zap.Logger) (*session, error) {
	buf := linmem.NewBuffer(linmem.Config{MaxPages: 1024, Poison: true})
	blocks := linmem.Track(buf)
	acc := cstyle.NewAccessor(buf, blocks)
	ts, err := typesupport.NewMessageTypeSupport[uint32](mm, acc, opts)
	if err != nil {
		blocks.Release()
		return nil, err
	}
	return &session{ts: ts, buf: buf, blocks: blocks, acc: acc, schema: mm, logger: logger}, nil
}

func (s *session) plan() *codec.CompiledMessage {
	return s.ts.Plan()
}

// describe summarizes the type: names, sizes and the field list.
func (s *session) describe() string {
	p := s.plan()
	var b strings.Builder
	fmt.Fprintf(&b, "type:      %s\n", p.TypeName)
	fmt.Fprintf(&b, "schema:    %s\n", s.schema.FullName())
	if s.ts.IsBounded() {
		fmt.Fprintf(&b, "max size:  %d bytes\n", s.ts.ComputeTypeSize())
	} else {
		fmt.Fprintf(&b, "max size:  unbounded (bounded part %d bytes)\n", s.ts.ComputeTypeSize())
	}
	fmt.Fprintf(&b, "c layout:  size %d, align %d, stride %d\n", p.Size, p.Align, p.Stride)
	b.WriteString("fields:\n")
	for i := range s.schema.Members {
		m := &s.schema.Members[i]
		fmt.Fprintf(&b, "  %-24s %-32s @%d\n", m.Name, m.TypeString(), m.Offset)
	}
	return b.String()
}

// decode deserializes data into a fresh object and renders it.
func (s *session) decode(data []byte) (string, error) {
	addr, err := s.acc.New(s.plan())
	if err != nil {
		return "", err
	}
	defer s.destroy(addr)

	if err := s.ts.Deserialize(data, addr); err != nil {
		return "", err
	}
	return dump(s.acc, s.plan(), addr)
}

// encode builds an object from path=value assignments and serializes it.
func (s *session) encode(assignments []string) ([]byte, error) {
	addr, err := s.acc.New(s.plan())
	if err != nil {
		return nil, err
	}
	defer s.destroy(addr)

	for _, a := range assignments {
		path, value, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("assignment %q: want path=value", a)
		}
		if err := assign(s.acc, s.plan(), addr, strings.TrimSpace(path), value); err != nil {
			return nil, fmt.Errorf("assignment %q: %w", a, err)
		}
	}
	return s.ts.Serialize(addr)
}

func (s *session) wit() (string, error) {
	m := witmap.New()
	if _, err := m.Record(s.schema); err != nil {
		return "", err
	}
	return witmap.Render(m.Types()), nil
}

// destroy releases an object. A partial object that cannot be finalized
// is reclaimed block by block.
func (s *session) destroy(addr uint32) {
	if err := s.acc.Destroy(addr, s.plan()); err != nil {
		s.logger.Warn("destroy failed, freeing tracked blocks",
			zap.Error(err),
			zap.Int("blocks", s.blocks.Count()))
		s.blocks.FreeAll()
	}
	s.logger.Debug("object released",
		zap.String("type", s.plan().TypeName),
		zap.Int("live_allocations", s.buf.Live()),
		zap.Uint32("memory_bytes", s.buf.Size()))
}
