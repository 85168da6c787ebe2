package main

import "github.com/shaharia-lab/mailcast/cmd"

func main() {
	cmd.Execute()
}
