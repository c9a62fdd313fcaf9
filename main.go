package main

import "kpi-dashboard/cmd"

func main() {
	cmd.Execute()
}
