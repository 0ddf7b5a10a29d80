package main

import "rentalhub-backend/cmd/rentalctl/commands"

func main() {
	commands.Execute()
}
