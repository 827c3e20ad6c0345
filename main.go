/*
Copyright © 2025 tieubaoca
*/
package main

import (
	"github.com/joho/godotenv"
	"github.com/tieubaoca/docsum-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	godotenv.Load()
}
