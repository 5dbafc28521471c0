// Package msgspec parses ROS 2 .msg and .srv definitions into
// introspection schemas, so types can be serialized without generated code.
//
// Supported field forms:
//
//	int32 x                 primitive
//	string<=10 name         bounded string
//	float64[3] v            fixed array
//	uint8[] data            unbounded sequence
//	Point[<=4] pts          bounded sequence, same-package type
//	geometry_msgs/Pose pose nested type
//	Header header           std_msgs/Header
//	int32 MAX=10            constant
//
// Comments start with #. Default values after the field name are kept as
// text and otherwise ignored.
//
// A Loader finds definitions under package roots:
//
//	l := msgspec.NewLoader(msgspec.Config{Paths: msgspec.PathsFromEnv()})
//	mm, err := l.Message("std_msgs/String")
//
// Schemas are laid out for the 32-bit C representation unless another
// model is configured.
package msgspec
