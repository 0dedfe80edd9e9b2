// batchloadgen generates a named, typed wrapper around
// batchloader.BatchLoader so call sites do not spell out type arguments.
// It is meant to be driven by go:generate:
//
//	//go:generate go run github.com/fetchkit/batchloader/cmd/batchloadgen -name UserLoader -keyType string -valueType User -package example
package main

import (
	"flag"
	"log"
)

func main() {
	cfg := &config{}
	flag.StringVar(&cfg.Name, "name", "", "name of the generated loader type, e.g. UserLoader")
	flag.StringVar(&cfg.KeyType, "keyType", "", "key type, e.g. string")
	flag.StringVar(&cfg.ValueType, "valueType", "", "value type, e.g. User (the loader stores *User)")
	flag.StringVar(&cfg.Package, "package", "", "package name for the generated file")
	flag.StringVar(&cfg.FileName, "fileName", "", "output file name (default: snake case of -name plus _gen.go)")
	flag.Parse()

	if err := cfg.validate(); err != nil {
		log.Fatalf("batchloadgen: %v", err)
	}
	cfg.applyDefaults()

	if err := generate(cfg); err != nil {
		log.Fatalf("batchloadgen: %v", err)
	}
}
