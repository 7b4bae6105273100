package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored and
// nested groups are flattened.
//
// If no non-nil error is provided, nil is returned. If only one non-nil error
// is provided, it is returned as it is.
func Append(errs ...error) error {
	var res multiError
	for _, err := range errs {
		if isNilErr(err) {
			continue
		}
		if m, ok := err.(multiError); ok {
			res = append(res, m...)
		} else {
			res = append(res, err)
		}
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

type multiError []error

func (m multiError) Error() string {
	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(m), strings.Join(points, "\n\t"))
}

// Unpack returns all errors grouped by this instance.
func (m multiError) Unpack() []error {
	return m
}
