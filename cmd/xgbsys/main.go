package main

import "github.com/contriboss/xgboost-sys-go/cmd/xgbsys/internal/command"

func main() {
	command.Execute()
}
