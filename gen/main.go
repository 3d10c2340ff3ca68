package main

import (
	"fmt"
	"os"

	gen "github.com/whyrusleeping/cbor-gen"

	"github.com/zera-audit/zera-pipeline/storage/pipeline"
)

func main() {
	err := gen.WriteTupleEncodersToFile("./storage/pipeline/cbor_gen.go", "pipeline",
		pipeline.UploadSession{},
	)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
