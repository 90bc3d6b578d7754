package runstorage

import "github.com/cockroachdb/errors/domains"

var (
	RunNotFound      = domains.New("run_not_found")
	IDEmptyMark      = domains.New("run_id_empty")
	UnmarshalMark    = domains.New("run_unmarshal_fail")
	MarshalMark      = domains.New("run_marshal_fail")
	DefaultErrorMark = domains.New("default_error")
)
