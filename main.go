package main

import "example.com/backstage/services/events/cmd"

func main() {
	cmd.Execute()
}
