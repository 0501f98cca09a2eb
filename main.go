// The main package for the harvester executable.
package main

import "github.com/Baccarat456/experience-harvester/cmd"

func main() {
	cmd.Execute()
}
