package job

import "time"

type Job struct {
	Label      string
	RemoteUser string
	RemoteHost string
	RemotePath string
	LocalPath  string
}

func (j Job) RemoteSpec() string {
	if j.RemoteUser == "" {
		return j.RemoteHost + ":" + j.RemotePath
	}
	return j.RemoteUser + "@" + j.RemoteHost + ":" + j.RemotePath
}

type Result struct {
	Job        Job
	ExitCode   int
	Duration   time.Duration
	StdoutTail []string
	Error      error
}
