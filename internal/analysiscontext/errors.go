package analysiscontext

import "github.com/jstall/jstall/internal/jstallerr"

func errInvalidOptions(detail string) error {
	return jstallerr.New(jstallerr.InvalidOptions, detail)
}
