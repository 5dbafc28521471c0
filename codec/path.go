package codec

import (
	"strconv"

	"github.com/wippyai/rmw-cdr/errors"
)

func withPath(err error, segment string) error {
	return errors.WithPath(err, segment)
}

func indexed(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}
