// Command plantid classifies a plant image against a directory of trained
// artifacts and prints the ranked result as JSON.
//
// Usage: plantid [-models dir] [-top k] [-o output.json] <image>
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"mediplant/internal/classify"
)

func main() {
	modelsDir := flag.String("models", "models", "directory containing the trained artifacts")
	topK := flag.Int("top", classify.DefaultTopK, "number of ranked predictions to return")
	output := flag.String("o", "", "write the result JSON to a file instead of stdout")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-models dir] [-top k] [-o output.json] <image>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nClassifies a plant image using the artifacts in the models directory.\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	imagePath := flag.Arg(0)

	classifier := classify.Load(*modelsDir)
	if !classifier.Available() {
		fmt.Fprintf(os.Stderr, "Warning: artifacts not loaded: %v\n", classifier.Err())
	}

	result := classifier.Classify(imagePath, *topK)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, append(data, '\n'), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(string(data))
	}

	if !result.Success {
		os.Exit(1)
	}
}
