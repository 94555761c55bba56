// hiltest is the bench-side entry point for running hardware-in-the-loop
// mesh test suites.
package main

import (
	"github.com/openwpan/hiltest/cmd"

	// Registered suites.
	_ "github.com/openwpan/hiltest/suites/smoke"
)

func main() {
	cmd.Execute()
}
