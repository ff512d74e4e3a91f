package main

import (
	"fmt"
	"os"

	"github.com/df07/go-raytracer-accel/cmd"
)

func main() {
	if err := cmd.NewApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
