package runner

import "syl-mirror/internal/job"

type Summary struct {
	Total        int
	SuccessCount int
	FailureCount int
	Results      []job.Result
}
