package main

import "github.com/naka-gawa/octotrends/cmd"

func main() {
	cmd.Execute()
}
