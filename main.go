// Copyright © 2025 The Macex authors

package main

import "github.com/luthersystems/macex/cmd"

func main() {
	cmd.Execute()
}
