/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/siliconv/cmd/siliconv/cmd"

func main() {
	cmd.Execute()
}
