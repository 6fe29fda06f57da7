package cmd

import "errors"

var errMirrorFailed = errors.New("存在同步失败项")

func IsReportedError(err error) bool {
	return errors.Is(err, errMirrorFailed)
}
