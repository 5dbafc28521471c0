// Package introspection is the runtime schema model consumed by the codec.
//
// A MessageMembers lists the fields of one message type in declaration
// order. Each Member carries a TypeID, an optional string bound, the
// array-ness triple (IsArray, ArraySize, IsUpperBound) and, for nested
// messages, a pointer to the child schema. Schemas are plain data: they can
// be built by hand, derived from Go struct tags (package native) or parsed
// from .msg files (package msgspec).
//
//	point := &introspection.MessageMembers{
//		Namespace: "geometry_msgs__msg",
//		Name:      "Point",
//		Members: []introspection.Member{
//			{Name: "x", TypeID: introspection.TypeFloat64},
//			{Name: "y", TypeID: introspection.TypeFloat64, Offset: 8},
//			{Name: "z", TypeID: introspection.TypeFloat64, Offset: 16},
//		},
//		SizeOf: 24,
//	}
//	introspection.TypeName(point) // "geometry_msgs::msg::dds_::Point_"
package introspection
