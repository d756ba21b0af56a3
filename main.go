// ./main.go
package main

import (
	"github.com/riku-sakamoto/manabo-cli/cmd"
)

func main() {
	cmd.Execute()
}
