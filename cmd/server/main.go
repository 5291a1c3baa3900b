package main

import "github.com/nguyentranbao-ct/price-extractor/cmd"

func main() {
	cmd.Execute()
}
