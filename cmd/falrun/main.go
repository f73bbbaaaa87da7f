// Command falrun runs the models registered in falrun.Models. Programs that
// ship models build their own binary around pkg/falrun.
package main

import (
	"os"

	"github.com/fal-labs/falrun/pkg/falrun"
)

func main() {
	os.Exit(falrun.Main())
}
