// Package build хранит версию сборки, подставляемую через ldflags.
//
//	go build -ldflags "-X echotrace/cmd/echotrace/internal/build.Version=v1.0.0 \
//	  -X echotrace/cmd/echotrace/internal/build.Commit=$(git rev-parse --short HEAD)"
package build

import (
	"fmt"
	"runtime"
)

// Значения задаются при сборке через -ldflags
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String возвращает строку версии
func String() string {
	return fmt.Sprintf("echotrace %s (%s) built %s %s/%s",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
