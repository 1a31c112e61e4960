package scene

import "go.uber.org/multierr"

func multierrs(err error) []error {
	return multierr.Errors(err)
}
