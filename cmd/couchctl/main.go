package main

import (
	"os"

	"github.com/sofa-go/couchdb/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
