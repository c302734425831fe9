//go:build tinygo

package main

import (
	"context"

	"nanokernel/app"
)

func main() {
	sys := app.New()
	_ = sys.Run(context.Background())
}
