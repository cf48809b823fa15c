package main

import (
	"github.com/hiero-ledger/hiero-go-client/cmd/hiero/commands"
)

func main() {
	commands.Execute()
}
