// backend/main.go
package main

import "github.com/gewnthar/presupuesto/backend/cmd"

func main() {
	cmd.Execute()
}
