package aggregate

import "errors"

var ErrUnknownMetric = errors.New("unknown metric")
