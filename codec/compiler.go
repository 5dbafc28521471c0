package codec

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/internal/layout"
	"github.com/wippyai/rmw-cdr/internal/types"
	"github.com/wippyai/rmw-cdr/introspection"
)

// Compiler turns introspection schemas into codec plans for one memory model
// and one set of limits. Plans are cached by schema pointer; schemas must not
// be mutated after their first compilation.
type Compiler struct {
	calc  *layout.Calculator
	cache sync.Map // *introspection.MessageMembers -> *CompiledMessage
}

func NewCompiler(model Model, limits Limits) *Compiler {
	return &Compiler{
		calc: layout.NewCalculator(model, limits),
	}
}

func (c *Compiler) Model() Model {
	return c.calc.Model()
}

func (c *Compiler) Limits() Limits {
	return c.calc.Limits()
}

// Compile validates mm and returns its plan. Unknown type tags fail here,
// before any object is touched.
func (c *Compiler) Compile(mm *introspection.MessageMembers) (*CompiledMessage, error) {
	if mm == nil {
		return nil, errors.NilPointer(errors.PhaseCompile, nil, "*introspection.MessageMembers")
	}
	if cached, ok := c.cache.Load(mm); ok {
		return cached.(*CompiledMessage), nil
	}

	if err := introspection.Validate(mm); err != nil {
		return nil, err
	}

	building := make(map[*introspection.MessageMembers]*CompiledMessage)
	cm, err := c.compile(mm, nil, building)
	if err != nil {
		return nil, err
	}
	for schema, plan := range building {
		c.cache.Store(schema, plan)
	}

	Logger().Debug("compiled message",
		zap.String("type", cm.TypeName),
		zap.String("model", c.calc.Model().Name),
		zap.Uint32("size", cm.Size),
		zap.Uint32("stride", cm.Stride),
		zap.Uint64("max_serialized_size", cm.MaxSize),
		zap.Bool("bounded", cm.Bounded))
	return cm, nil
}

func (c *Compiler) compile(mm *introspection.MessageMembers, path []string, building map[*introspection.MessageMembers]*CompiledMessage) (*CompiledMessage, error) {
	if cm, ok := building[mm]; ok {
		return cm, nil
	}
	if cached, ok := c.cache.Load(mm); ok {
		return cached.(*CompiledMessage), nil
	}

	cm := &CompiledMessage{
		Schema:   mm,
		TypeName: introspection.TypeName(mm),
		Size:     mm.SizeOf,
		Align:    c.calc.Alignment(mm),
		Stride:   c.calc.Stride(mm),
	}
	building[mm] = cm
	cm.MaxSize, cm.Bounded = c.calc.MaxSerializedSize(mm, 0)

	limits := c.calc.Limits()
	cm.Fields = make([]CompiledField, 0, len(mm.Members))
	for i := range mm.Members {
		m := &mm.Members[i]
		fieldPath := append(append([]string{}, path...), m.Name)

		kind, ok := types.FromTypeID(m.TypeID)
		if !ok {
			return nil, errors.UnknownType(errors.PhaseCompile, fieldPath, uint8(m.TypeID))
		}

		f := CompiledField{
			Member: m,
			Name:   m.Name,
			Shape:  m.Shape(),
			Offset: m.Offset,
			Kind:   kind,
		}
		f.ElemSize, f.ElemAlign = layout.ElementLayout(m, c.calc.Model())

		if kind == types.KindString {
			f.StringBound = m.StringUpperBound
			f.StringMax = limits.StringCapacityFor(m.StringUpperBound)
		}

		switch f.Shape.Kind {
		case introspection.ShapeFixedArray:
			f.SequenceMax = f.Shape.N
		case introspection.ShapeBoundedSequence:
			f.SequenceBound = f.Shape.N
			f.SequenceMax = f.Shape.N
		case introspection.ShapeUnboundedSequence:
			f.SequenceMax = limits.SequenceCapacityFor(cm.TypeName)
		}

		if kind == types.KindMessage {
			child, err := c.compile(m.Members, fieldPath, building)
			if err != nil {
				return nil, err
			}
			f.Message = child
			f.ElemSize = child.Stride
			f.ElemAlign = child.Align
			if f.Shape.Kind != introspection.ShapeScalar && f.ElemSize == 0 && len(child.Schema.Members) > 0 {
				return nil, errors.InvalidData(errors.PhaseCompile, fieldPath,
					"array of "+child.TypeName+" has zero element stride (schema SizeOf not set)")
			}
		}

		cm.Fields = append(cm.Fields, f)
	}

	return cm, nil
}
