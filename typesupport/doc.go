// Package typesupport is the call boundary the pub/sub glue uses: one
// MessageTypeSupport per message type and object representation.
//
//	ts, err := typesupport.NewMessageTypeSupport(schema, acc, typesupport.Options{})
//	size := ts.ComputeTypeSize()   // worst case, for buffer pre-sizing
//	name := ts.TypeName()          // "pkg::msg::dds_::Name_"
//	buf, err := ts.Serialize(obj)
//	err = ts.Deserialize(buf, obj)
//
// A Registry keys type supports by DDS type name and rejects a second
// registration whose wire format differs. Metrics exports per-type counters
// through Prometheus.
//
// Type supports hold no per-call state beyond pooled writers and are safe
// for concurrent use as long as each call works on a distinct object.
package typesupport
