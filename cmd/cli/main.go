// logaroo - multi-line log tailer and telemetry shipper
//
// logaroo watches a folder of log4net style log files, reassembles
// multi-line records and forwards each one to a telemetry collector.
package main

import (
	"os"

	"github.com/ccollicutt/logaroo/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
