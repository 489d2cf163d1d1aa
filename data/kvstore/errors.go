package kvstore

import "errors"

var ErrNotFound = errors.New("error key not found")
