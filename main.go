package main

import "github.com/hibare/dbkeeper/cmd"

func main() {
	cmd.Execute()
}
