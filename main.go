package main

import "github.com/xiaot623/pdfchat/cmd"

func main() {
	cmd.Execute()
}
