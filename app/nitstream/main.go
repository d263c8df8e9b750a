// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/nitstream
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/q191201771/naza/pkg/bininfo"
	"github.com/q191201771/naza/pkg/nazalog"
	"github.com/q191201771/nitstream/pkg/base"
	"github.com/q191201771/nitstream/pkg/conf"
	"github.com/q191201771/nitstream/pkg/logic"
)

func main() {
	defer nazalog.Sync()

	confFile := parseFlag()
	config, err := logic.LoadConfAndInitLog(confFile)
	if err != nil {
		nazalog.Errorf("load conf failed. file=%s, err=%+v", confFile, err)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		nazalog.Sync()
		base.OsExitAndWaitPressIfWindows(1)
	}

	if err = logic.Entry(context.Background(), config); err != nil {
		nazalog.Errorf("exit with error. err=%+v", err)
		nazalog.Sync()
		base.OsExitAndWaitPressIfWindows(1)
	}
	nazalog.Info("exit.")
}

func usage() {
	_, _ = fmt.Fprintf(os.Stderr, `Usage: %s CONFIG

OPTIONS:
    -v, --version       Version information
    -h, --help          Print this text
    -H                  Configuration file format

CONFIG:
    Path to configuration file. Format is selected by extension:
    .json, .yaml/.yml, everything else is ini

Example:
  %s ./conf/nitstream.conf.ini
`, os.Args[0], os.Args[0])
}

func parseFlag() string {
	flag.Usage = usage
	binInfoFlag := flag.Bool("v", false, "show version")
	versionFlag := flag.Bool("version", false, "show version")
	formatFlag := flag.Bool("H", false, "show configuration file format")
	flag.Parse()

	if *binInfoFlag || *versionFlag {
		_, _ = fmt.Fprintln(os.Stdout, base.NitStreamFullInfo)
		_, _ = fmt.Fprint(os.Stdout, bininfo.StringifyMultiLine())
		os.Exit(0)
	}
	if *formatFlag {
		_, _ = fmt.Fprintf(os.Stdout, "Configuration file format:\n\n%s", conf.Describe())
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		_, _ = fmt.Fprintln(os.Stderr, "Error: path to configuration file required")
		base.OsExitAndWaitPressIfWindows(1)
	}
	return flag.Arg(0)
}
