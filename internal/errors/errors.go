package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
)

func New(msg string) error {
	return stdErrors.New(msg)
}

func Newf(msg string, a ...any) error {
	return fmt.Errorf(msg, a...)
}

func Wrap(err error, msg string) error {
	return fmt.Errorf("%s: %w", msg, err)
}

func Wrapf(err error, msg string, a ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(msg, a...), err)
}

type combined []error

func (errs combined) Error() string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (errs combined) Unwrap() []error {
	return errs
}

// Combine multiple errs into single one. If no errors are passed or all of them
// are nil, nil is returned. Combined error matches any of its parts with errors.Is.
func Combine(errs ...error) error {
	var list combined
	for _, err := range errs {
		if err != nil {
			list = append(list, err)
		}
	}

	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	default:
		return list
	}
}
