// import-vectors loads a GloVe/word2vec style text file into the SQLite
// word vector store used by PARLEY_VECTORS.
package main

import (
	"compress/gzip"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vthunder/parley/internal/embedding"
)

func main() {
	dbPath := flag.String("db", "vectors.db", "SQLite vector store path")
	file := flag.String("file", "", "Vector text file, one 'word v1 v2 ...' per line (.gz accepted)")
	limit := flag.Int("limit", 0, "Stop after this many words (0 = all)")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: import-vectors -db vectors.db -file glove.txt [-limit N]")
		os.Exit(2)
	}

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", *file, err)
		os.Exit(1)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(*file, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading gzip: %v\n", err)
			os.Exit(1)
		}
		defer gz.Close()
		r = gz
	}

	store, err := embedding.OpenVectorStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	start := time.Now()
	n, err := store.Import(context.Background(), r, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed after %d words: %v\n", n, err)
		os.Exit(1)
	}

	total, err := store.Count(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error counting words: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Imported %d words in %s (%d in store)\n", n, time.Since(start).Round(time.Millisecond), total)
}
