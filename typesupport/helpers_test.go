package typesupport_test

import (
	"testing"

	"github.com/wippyai/rmw-cdr/cdr"
	"github.com/wippyai/rmw-cdr/introspection"
)

func cdrWriter() *cdr.Writer {
	return cdr.NewWriter(cdr.Config{})
}

func cdrReader(t *testing.T, data []byte) *cdr.Reader {
	t.Helper()
	r, err := cdr.NewReader(data, cdr.Config{})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// cloneForC copies a Go-derived schema without offsets or container hooks.
func cloneForC(mm *introspection.MessageMembers) *introspection.MessageMembers {
	return clone(mm, map[*introspection.MessageMembers]*introspection.MessageMembers{})
}

func clone(mm *introspection.MessageMembers, done map[*introspection.MessageMembers]*introspection.MessageMembers) *introspection.MessageMembers {
	if c, ok := done[mm]; ok {
		return c
	}
	c := &introspection.MessageMembers{Namespace: mm.Namespace, Name: mm.Name}
	done[mm] = c
	c.Members = make([]introspection.Member, len(mm.Members))
	for i, m := range mm.Members {
		m.Offset = 0
		m.Container = nil
		if m.Members != nil {
			m.Members = clone(m.Members, done)
		}
		c.Members[i] = m
	}
	return c
}
