package main

import "github.com/devicelab-dev/uiexplorer/pkg/cli"

func main() {
	cli.Execute()
}
