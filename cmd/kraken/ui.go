package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

// newUI returns the preconfigured cli.Ui used for every command's output,
// with Warn redirected to Output so warnings stay serialized onto stdout
// alongside everything else this process prints.
func newUI() cli.Ui {
	return &warnAsOutputUI{&cli.BasicUi{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Reader:      os.Stdin,
	}}
}

type warnAsOutputUI struct {
	cli.Ui
}

func (u *warnAsOutputUI) Warn(msg string) { u.Ui.Output(msg) }

func printStatusLine(ui cli.Ui, path string, status string) {
	ui.Output(fmt.Sprintf("%-40s %s", path, status))
}
