// Copyright 2023-2025 Tangram Labs.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package main

import "github.com/tangramlabs/cassowary/cmd"

func main() {
	cmd.Execute()
}
