// Package native serializes Go structs directly.
//
// A struct maps to a message: exported fields become members in
// declaration order, with names converted to snake_case unless a ros tag
// overrides them.
//
//	Go type          ROS type
//	bool             bool
//	uint8 / int8     uint8 / int8 (type=byte or type=char to override)
//	uintN / intN     uintN / intN for N in 16, 32, 64
//	float32/float64  float32/float64
//	string           string (bound=N for string<=N)
//	[N]T             T[N]
//	[]T              T[] (max=N for T[<=N])
//	struct           nested message (type=pkg/Name to name it)
//
// int, uint, pointers, maps and interfaces have no CDR mapping and are
// rejected. Sequences are decoded into freshly allocated slices; strings
// are copied out of the input buffer.
package native
