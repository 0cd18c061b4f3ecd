package version

import (
	"fmt"
	"io"
	"runtime"

	xgbsys "github.com/contriboss/xgboost-sys-go"
)

var (
	Version string = "dev"
)

func Fprint(w io.Writer) {
	fmt.Fprintf(w, "xgbsys version %s\n", Version)
	fmt.Fprintf(w, "%s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "c++%s, link order %v\n", xgbsys.CXXStandard, xgbsys.LinkOrder)
}
