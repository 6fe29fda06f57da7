package app

import (
	"io"

	"syl-mirror/internal/job"
	"syl-mirror/internal/rsync"
)

type Options struct {
	ConfigPath string
	Jobs       int
	RsyncPath  string
	FailFast   bool
	Quiet      bool
	Stdout     io.Writer
	Stderr     io.Writer
	Syncer     rsync.Syncer
}

type Failure struct {
	Label  string
	Reason string
}

type Result struct {
	Total        int
	SuccessCount int
	FailureCount int
	Failures     []Failure
	Results      []job.Result
	RsyncPath    string
	RsyncVer     string
}
