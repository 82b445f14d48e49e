package common

import "errors"

func AsError[T error](err error) (T, bool) {
	var target T
	return target, errors.As(err, &target)
}

// KeepFirst stores err into target if target does not already hold an error.
func KeepFirst(target *error, err error) {
	if err != nil && *target == nil {
		*target = err
	}
}
