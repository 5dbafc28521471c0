package typesupport

import (
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/rmw-cdr/cdr"
	"github.com/wippyai/rmw-cdr/codec"
	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/introspection"
)

// Options configures a type support. The zero value is usable.
type Options struct {
	// Config selects byte order, encapsulation and limits.
	Config codec.Config

	// Compiler shares compiled plans between type supports of one
	// representation. Nil builds a private compiler from Config.Limits.
	// With a compiler, Config.Limits must be zero or equal to its limits.
	Compiler *codec.Compiler

	// Metrics, when set, records per-type counters.
	Metrics *Metrics
}

// MessageTypeSupport is the call boundary for one message type in one
// object representation: size query, type name, serialize, deserialize.
// It is safe for concurrent use.
type MessageTypeSupport[P any] struct {
	plan    *codec.CompiledMessage
	ser     *codec.Serializer[P]
	de      *codec.Deserializer[P]
	metrics *Metrics
	writers sync.Pool
	cfg     codec.Config
}

// maxPooledWriter caps the size of writers kept for reuse.
const maxPooledWriter = 1 << 20

// NewMessageTypeSupport compiles mm for the accessor's representation.
// Unknown field types and malformed schemas fail here.
func NewMessageTypeSupport[P any](mm *introspection.MessageMembers, acc codec.Accessor[P], opts Options) (*MessageTypeSupport[P], error) {
	comp := opts.Compiler
	if comp == nil {
		comp = codec.NewCompiler(acc.Model(), opts.Config.Limits)
	} else if comp.Model().Name != acc.Model().Name {
		return nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
			Detail("compiler targets %s objects, accessor %s", comp.Model().Name, acc.Model().Name).
			Build()
	} else if !opts.Config.Limits.IsZero() && !opts.Config.Limits.Equal(comp.Limits()) {
		return nil, errors.New(errors.PhaseCompile, errors.KindTypeMismatch).
			Detail("Config.Limits differ from the limits of the supplied compiler").
			Build()
	}

	plan, err := comp.Compile(mm)
	if err != nil {
		return nil, err
	}

	ts := &MessageTypeSupport[P]{
		plan:    plan,
		ser:     codec.NewSerializer(acc),
		de:      codec.NewDeserializer(acc),
		metrics: opts.Metrics,
		cfg:     opts.Config,
	}
	stream := opts.Config.Stream()
	ts.writers.New = func() any {
		return cdr.NewWriter(stream)
	}

	ts.metrics.ObserveMaxSize(plan.TypeName, ts.ComputeTypeSize())
	if !plan.Bounded {
		Logger().Debug("type has no serialized size ceiling",
			zap.String("type", plan.TypeName),
			zap.Uint64("bounded_part", plan.MaxSize))
	}
	return ts, nil
}

// TypeName returns the DDS type name, e.g. "std_msgs::msg::dds_::String_".
func (ts *MessageTypeSupport[P]) TypeName() string {
	return ts.plan.TypeName
}

func (ts *MessageTypeSupport[P]) Schema() *introspection.MessageMembers {
	return ts.plan.Schema
}

func (ts *MessageTypeSupport[P]) Plan() *codec.CompiledMessage {
	return ts.plan
}

func (ts *MessageTypeSupport[P]) Config() codec.Config {
	return ts.cfg
}

// ComputeTypeSize returns the worst-case serialized size in bytes,
// including the encapsulation header when configured. For unbounded types
// it covers only the bounded part; see IsBounded.
func (ts *MessageTypeSupport[P]) ComputeTypeSize() uint64 {
	return ts.plan.MaxSize + uint64(ts.cfg.HeaderSize())
}

// IsBounded reports whether ComputeTypeSize is a true ceiling.
func (ts *MessageTypeSupport[P]) IsBounded() bool {
	return ts.plan.Bounded
}

// Serialize encodes obj into a new buffer. No buffer is returned on error.
func (ts *MessageTypeSupport[P]) Serialize(obj P) ([]byte, error) {
	start := time.Now()

	w := ts.writers.Get().(*cdr.Writer)
	w.Reset()
	if ts.plan.Bounded {
		w.Grow(int(min(ts.ComputeTypeSize(), maxPooledWriter)))
	}
	defer ts.putWriter(w)

	if err := ts.ser.Serialize(w, ts.plan, obj); err != nil {
		ts.metrics.RecordError(ts.plan.TypeName, OpSerialize, err)
		return nil, err
	}
	out := slices.Clone(w.Bytes())
	ts.metrics.RecordSuccess(ts.plan.TypeName, OpSerialize, len(out), start)
	return out, nil
}

// SerializeTo appends obj to w. On error w holds a partial message.
func (ts *MessageTypeSupport[P]) SerializeTo(w *cdr.Writer, obj P) error {
	start := time.Now()
	before := w.Len()
	if err := ts.ser.Serialize(w, ts.plan, obj); err != nil {
		ts.metrics.RecordError(ts.plan.TypeName, OpSerialize, err)
		return err
	}
	ts.metrics.RecordSuccess(ts.plan.TypeName, OpSerialize, w.Len()-before, start)
	return nil
}

// Deserialize decodes data into obj, which must be initialized. On error
// obj is partially populated.
func (ts *MessageTypeSupport[P]) Deserialize(data []byte, obj P) error {
	start := time.Now()
	if err := ts.de.Unmarshal(ts.cfg, ts.plan, data, obj); err != nil {
		ts.metrics.RecordError(ts.plan.TypeName, OpDeserialize, err)
		return err
	}
	ts.metrics.RecordSuccess(ts.plan.TypeName, OpDeserialize, len(data), start)
	return nil
}

// DeserializeFrom decodes the next message from r into obj.
func (ts *MessageTypeSupport[P]) DeserializeFrom(r *cdr.Reader, obj P) error {
	start := time.Now()
	before := r.Offset()
	if err := ts.de.Deserialize(r, ts.plan, obj); err != nil {
		ts.metrics.RecordError(ts.plan.TypeName, OpDeserialize, err)
		return err
	}
	ts.metrics.RecordSuccess(ts.plan.TypeName, OpDeserialize, r.Offset()-before, start)
	return nil
}

func (ts *MessageTypeSupport[P]) putWriter(w *cdr.Writer) {
	if w.Len() > maxPooledWriter {
		return
	}
	ts.writers.Put(w)
}
