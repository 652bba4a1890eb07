package main

import (
	_ "time/tzdata"

	"hellchannel/cmd/hellchannel/commands"
	"hellchannel/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
