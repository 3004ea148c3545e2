package main

import "github.com/frahmantamala/workforce-portal/cmd"

func main() {
	cmd.Execute()
}
