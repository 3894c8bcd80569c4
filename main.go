// SPDX-License-Identifier: MPL-2.0

package main

import cmd "nbstrap/cmd/nbstrap"

func main() {
	cmd.Execute()
}
