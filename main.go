package main

import "github.com/Alijeyrad/oilcall_backend/cmd"

func main() {
	cmd.Execute()
}
