// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/procutil/cmd/procutil"

func main() {
	cmd.Execute()
}
